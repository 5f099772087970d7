package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Catalog-shaped payload for exercising the validator
type testProductRequest struct {
	Name      string  `json:"name" validate:"required"`
	Barcode   string  `json:"barcode"`
	SalePrice float64 `json:"sale_price" validate:"gte=0"`
	Stock     int     `json:"stock" validate:"gte=0,lte=100000"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool) bool {
			reqMap := map[string]interface{}{
				"barcode":    "899123",
				"sale_price": 1500.0,
				"stock":      10,
			}
			if includeName {
				reqMap["name"] = "Instant Noodles"
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if includeName {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func() bool {
			reqMap := map[string]interface{}{
				"name":       "Instant Noodles",
				"sale_price": -5.0,
				"stock":      3,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if err == nil {
				return false
			}

			validationErrors := FormatValidationErrors(err)
			if len(validationErrors) == 0 {
				return false
			}

			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_StockRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stock outside the valid range is rejected", prop.ForAll(
		func(stock int) bool {
			reqMap := map[string]interface{}{
				"name":       "Instant Noodles",
				"sale_price": 1500.0,
				"stock":      stock,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			err := DecodeAndValidate(req, &testReq)

			if stock >= 0 && stock <= 100000 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-1000, 200000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_MalformedJSONRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("malformed request bodies are rejected", prop.ForAll(
		func(garbage string) bool {
			req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{"+garbage)))
			req.Header.Set("Content-Type", "application/json")

			var testReq testProductRequest
			return DecodeAndValidate(req, &testReq) != nil
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
