package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/backend/utils"
)

type sampleInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Level    string `validate:"omitempty,oneof=beginner intermediate advanced expert"`
}

func TestValidateStructValid(t *testing.T) {
	fields := utils.ValidateStruct(sampleInput{
		Email:    "ok@example.com",
		Password: "password123",
	})
	assert.Nil(t, fields)
}

func TestValidateStructMessages(t *testing.T) {
	fields := utils.ValidateStruct(sampleInput{
		Email:    "not-an-email",
		Password: "short",
		Level:    "wizard",
	})
	require.NotNil(t, fields)

	assert.Equal(t, "Must be a valid email address", fields["email"])
	assert.Equal(t, "Must be at least 8 characters", fields["password"])
	assert.Equal(t, "Must be one of: beginner intermediate advanced expert", fields["level"])
}

func TestValidateStructRequired(t *testing.T) {
	fields := utils.ValidateStruct(sampleInput{})
	require.NotNil(t, fields)
	assert.Equal(t, "This field is required", fields["email"])
	assert.Equal(t, "This field is required", fields["password"])
	// omitempty fields stay silent when blank
	assert.NotContains(t, fields, "level")
}
