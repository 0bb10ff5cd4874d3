package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactInputValidate(t *testing.T) {
	valid := ContactInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, valid.Validate())

	missing := ContactInput{LastName: "Lovelace"}
	err := missing.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "first name is required")
	assert.Contains(t, err.Error(), "email is required")
	assert.NotContains(t, err.Error(), "last name is required")
}

func TestContactInputDecodesOptionalFields(t *testing.T) {
	var in ContactInput
	require.NoError(t, json.Unmarshal([]byte(`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","company":"Analytical Engines"}`), &in))

	require.NotNil(t, in.Company)
	assert.Equal(t, "Analytical Engines", *in.Company)
	assert.Nil(t, in.PhoneNumber)
	assert.Nil(t, in.JobTitle)
}

func TestContactUpdateValidate(t *testing.T) {
	empty := ""
	company := "Analytical Engines"

	require.NoError(t, ContactUpdate{}.Validate())
	require.NoError(t, ContactUpdate{Company: &company}.Validate())

	err := ContactUpdate{Email: &empty, Company: &company}.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email cannot be empty")
	assert.NotContains(t, err.Error(), "first name")
}

func TestContactUpdateDecodesPartialBody(t *testing.T) {
	var u ContactUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"company":"Babbage & Co","jobTitle":null}`), &u))

	require.NotNil(t, u.Company)
	assert.Equal(t, "Babbage & Co", *u.Company)
	assert.Nil(t, u.FirstName)
	assert.Nil(t, u.Email)
	assert.Nil(t, u.JobTitle)
}
