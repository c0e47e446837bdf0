package businessflow

import (
	"testing"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	template := &models.MessageTemplate{
		Content:   "Hi {name}, we have news for {phone}!",
		Variables: []string{"name", "phone"},
	}

	t.Run("SubstitutesContactFields", func(t *testing.T) {
		contact := &models.Contact{Name: utils.ToPtr("Ana"), Phone: "+5511999990000"}
		text := RenderTemplate(template, contact, nil)
		assert.Equal(t, "Hi Ana, we have news for +5511999990000!", text)
	})

	t.Run("UnresolvedPlaceholderStaysVerbatim", func(t *testing.T) {
		contact := &models.Contact{Phone: "+5511999990000"}
		text := RenderTemplate(template, contact, nil)
		assert.Equal(t, "Hi {name}, we have news for +5511999990000!", text)
	})

	t.Run("UndeclaredVariableNotSubstituted", func(t *testing.T) {
		tpl := &models.MessageTemplate{
			Content:   "Hi {name}",
			Variables: nil,
		}
		contact := &models.Contact{Name: utils.ToPtr("Ana"), Phone: "+5511999990000"}
		text := RenderTemplate(tpl, contact, nil)
		assert.Equal(t, "Hi {name}", text)
	})

	t.Run("PreferencesBackCustomVariables", func(t *testing.T) {
		tpl := &models.MessageTemplate{
			Content:   "Your plan is {plan}",
			Variables: []string{"plan"},
		}
		contact := &models.Contact{
			Phone:       "+5511999990000",
			Preferences: models.PreferenceMap{"plan": "premium"},
		}
		text := RenderTemplate(tpl, contact, nil)
		assert.Equal(t, "Your plan is premium", text)
	})

	t.Run("CasualToneAppendsSuffix", func(t *testing.T) {
		contact := &models.Contact{Name: utils.ToPtr("Ana"), Phone: "+5511999990000"}
		personality := &models.Personality{Tone: models.ToneCasual}
		text := RenderTemplate(template, contact, personality)
		assert.Equal(t, "Hi Ana, we have news for +5511999990000!"+CasualSuffix, text)
	})

	t.Run("FormalToneLeavesTextUntouched", func(t *testing.T) {
		contact := &models.Contact{Name: utils.ToPtr("Ana"), Phone: "+5511999990000"}
		personality := &models.Personality{Tone: models.ToneFormal}
		text := RenderTemplate(template, contact, personality)
		assert.Equal(t, "Hi Ana, we have news for +5511999990000!", text)
	})

	t.Run("NilContactLeavesPlaceholders", func(t *testing.T) {
		text := RenderTemplate(template, nil, nil)
		assert.Equal(t, "Hi {name}, we have news for {phone}!", text)
	})
}
