package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
)

func TestValidate_Username(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"letters and digits", "brewer42", false},
		{"underscore", "pour_over", false},
		{"too short", "ab", true},
		{"space", "latte art", true},
		{"dash", "cold-brew", true},
		{"unicode", "café", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&models.UpdateProfileRequest{Username: tt.username})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ReportsJSONFieldAndRule(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&models.VoteRequest{RecipeID: "4f3c1f0a-9c1e-4a57-b1a0-3c8a9b7d6e21", VoteType: "sideways"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, FieldError{Field: "vote_type", Rule: "oneof"}, verr.Fields[0])
	assert.NotContains(t, verr.Error(), "sideways")
}

func TestValidate_SignupPasswordNotEchoed(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&models.SignupRequest{Email: "not-an-email", Password: "hunter2", Username: "barista"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "hunter2")
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}

func TestValidate_RecipeBounds(t *testing.T) {
	v := NewValidator()
	rating := 11.0
	err := v.Validate(&models.CreateRecipeRequest{
		RecipeName:   "V60",
		Description:  "bright",
		RecipeFields: models.RecipeFields{Rating: &rating},
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "rating", verr.Fields[0].Field)
	assert.Equal(t, "lte", verr.Fields[0].Rule)
}
