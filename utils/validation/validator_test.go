package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Title   string  `json:"title" validate:"required"`
	DueDate *string `json:"due_date" validate:"omitempty,max=5"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(samplePayload{})
	require.Error(t, err)

	assert.Equal(t, map[string]string{"title": "Title is required"}, FormatValidationErrors(err))
}

func TestValidateStructHumanizesSnakeCase(t *testing.T) {
	v := NewValidator()
	due := "next tuesday"

	err := v.ValidateStruct(samplePayload{Title: "x", DueDate: &due})
	require.Error(t, err)

	assert.Equal(t, map[string]string{"due_date": "Due date must be at most 5 characters"}, FormatValidationErrors(err))
}

func TestValidateStructAcceptsValidPayload(t *testing.T) {
	assert.NoError(t, NewValidator().ValidateStruct(samplePayload{Title: "Buy milk"}))
}

func TestFormatValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, FormatValidationErrors(assert.AnError))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hel\x00lo \n"))
}
