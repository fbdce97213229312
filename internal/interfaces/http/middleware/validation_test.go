package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderForm struct {
	CustomerName string `json:"customer_name" binding:"required,max=5"`
	Quantity     int    `json:"quantity" binding:"omitempty,min=1"`
	Page         int    `form:"page" binding:"omitempty,max=10"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(&orderForm{Quantity: -1, Page: 11})
	require.Error(t, err)

	details := ValidationDetails(err)
	require.Len(t, details, 3)

	byField := map[string]string{}
	for _, d := range details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "customer_name is a required field", byField["customer_name"])
	assert.Equal(t, "quantity must be 1 or greater", byField["quantity"])
	assert.Equal(t, "page must be 10 or less", byField["page"])

	err = binding.Validator.ValidateStruct(&orderForm{CustomerName: "Maria Aparecida"})
	details = ValidationDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "customer_name must be a maximum of 5 characters in length", details[0].Message)
}

func TestSetupValidator_Idempotent(t *testing.T) {
	SetupValidator()
	SetupValidator()

	err := binding.Validator.ValidateStruct(&orderForm{CustomerName: "Ana"})
	assert.NoError(t, err)
}

func TestValidationDetails_NotValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("unexpected EOF")))
}
