package businessflow

import (
	"sort"

	"github.com/amirphl/Kitsune/models"
)

// IdentityPool holds the sending numbers usable by one dispatch run. The pool
// is built once per run from the campaign's numbers: offline numbers and
// numbers at their daily limit are excluded, the rest ordered ascending by
// sent_today so the least-used number sends first. A number that reaches its
// limit mid-run is dropped from the pool but stays in storage.
type IdentityPool struct {
	numbers []*models.PhoneNumber
}

// NewIdentityPool filters and orders the campaign's numbers into a pool
func NewIdentityPool(numbers []*models.PhoneNumber) *IdentityPool {
	eligible := make([]*models.PhoneNumber, 0, len(numbers))
	for _, n := range numbers {
		if n.IsOnline() && n.HasCapacity() {
			eligible = append(eligible, n)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].SentToday < eligible[j].SentToday
	})

	return &IdentityPool{numbers: eligible}
}

// Available returns the numbers currently usable, least-used first
func (p *IdentityPool) Available() []*models.PhoneNumber {
	out := make([]*models.PhoneNumber, len(p.numbers))
	copy(out, p.numbers)
	return out
}

// Next returns the least-used usable number, or nil when the pool is exhausted
func (p *IdentityPool) Next() *models.PhoneNumber {
	if len(p.numbers) == 0 {
		return nil
	}
	return p.numbers[0]
}

// MarkSent counts one send against the number and drops it from the pool when
// it reaches its daily limit. Returns true if the number was dropped.
func (p *IdentityPool) MarkSent(number *models.PhoneNumber) bool {
	number.SentToday++
	if number.HasCapacity() {
		return false
	}
	for i, n := range p.numbers {
		if n == number {
			p.numbers = append(p.numbers[:i], p.numbers[i+1:]...)
			break
		}
	}
	return true
}

// Empty reports whether no usable number remains
func (p *IdentityPool) Empty() bool {
	return len(p.numbers) == 0
}
