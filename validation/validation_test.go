//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.Nil(t, ValidateEmail("alice@example.com"))
	assert.NotNil(t, ValidateEmail(""))
	assert.NotNil(t, ValidateEmail("not-an-email"))
	assert.NotNil(t, ValidateEmail(strings.Repeat("a", 255)+"@example.com"))
}

func TestValidatePhone(t *testing.T) {
	assert.Nil(t, ValidatePhone("+1 (555) 123-4567"))
	assert.NotNil(t, ValidatePhone(""))
	assert.NotNil(t, ValidatePhone("12"))
	assert.NotNil(t, ValidatePhone("call me maybe"))
}

func TestValidateName(t *testing.T) {
	assert.Nil(t, ValidateName("Mary O'Brien-Smith"))
	assert.NotNil(t, ValidateName(""))
	assert.NotNil(t, ValidateName("Bob3"))
	assert.NotNil(t, ValidateName(strings.Repeat("a", 101)))
}

func TestValidatePassword(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:        12,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
		RequireSpecial:   true,
	}

	assert.Nil(t, ValidatePassword("Str0ng!Passw0rd", policy))
	assert.NotNil(t, ValidatePassword("short1!A", policy))
	assert.NotNil(t, ValidatePassword("alllowercase123!", policy))
	assert.NotNil(t, ValidatePassword("ALLUPPERCASE123!", policy))
	assert.NotNil(t, ValidatePassword("NoDigitsHere!!", policy))
	assert.NotNil(t, ValidatePassword("NoSpecialChars123", policy))
}
