package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allergyInput struct {
	Allergen string `json:"allergen" validate:"required,notblank,max=10"`
}

type answersInput struct {
	Answers map[string]interface{} `json:"answers" validate:"required,min=1"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(&allergyInput{Allergen: "Latex"}))
	})

	t.Run("JSON Field Names", func(t *testing.T) {
		err := v.Validate(&allergyInput{})
		require.Error(t, err)
		assert.Equal(t, map[string]string{"allergen": "allergen is required"}, v.FormatValidationErrors(err))
	})

	t.Run("Blank String", func(t *testing.T) {
		err := v.Validate(&allergyInput{Allergen: "   "})
		require.Error(t, err)
		assert.Equal(t, "allergen must not be blank", v.FormatValidationErrors(err)["allergen"])
	})

	t.Run("Too Long", func(t *testing.T) {
		err := v.Validate(&allergyInput{Allergen: "Amoxicillin clavulanate"})
		require.Error(t, err)
		assert.Equal(t, "allergen must be at most 10 characters", v.FormatValidationErrors(err)["allergen"])
	})

	t.Run("Empty Map", func(t *testing.T) {
		err := v.Validate(&answersInput{Answers: map[string]interface{}{}})
		require.Error(t, err)
		assert.Equal(t, "answers must contain at least 1 item(s)", v.FormatValidationErrors(err)["answers"])
	})

	t.Run("Non Validation Error", func(t *testing.T) {
		assert.Empty(t, v.FormatValidationErrors(assert.AnError))
	})
}
