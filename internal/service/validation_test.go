package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
)

func TestValidatorIDCard(t *testing.T) {
	v := NewValidator()
	type payload struct {
		IDCard string `json:"id_card" validate:"idcard"`
	}
	cases := map[string]bool{
		"110101199001011234": true,
		"11010119900101123X": true,
		"11010119900101123x": true,
		"110101900101123":    true,
		"1101011990010112":   false,
		"1101011990X1011234": false,
		"":                   false,
	}
	for value, ok := range cases {
		err := v.Struct(payload{IDCard: value})
		assert.Equal(t, ok, err == nil, value)
	}
}

func TestValidatorISBN(t *testing.T) {
	v := NewValidator()
	type payload struct {
		ISBN string `json:"isbn" validate:"isbn"`
	}
	cases := map[string]bool{
		"978-7-111-12345-6": true,
		"0 306 40615 X":     true,
		"0306406152":        true,
		"97871111":          false,
		"97871112345X6":     false,
	}
	for value, ok := range cases {
		err := v.Struct(payload{ISBN: value})
		assert.Equal(t, ok, err == nil, value)
	}
}

func TestInvalidNamesJSONFields(t *testing.T) {
	v := NewValidator()
	err := v.Struct(CreateStudentRequest{Name: "张三"})
	require.Error(t, err)

	mapped := invalid(err, "student")
	appErr := appErrors.FromError(mapped)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "student_id is required")
	assert.Contains(t, appErr.Message, "age is required")
	assert.NotContains(t, appErr.Message, "name is required")
}
