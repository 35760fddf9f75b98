package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

const (
	// decimal(12,2)
	moneyMaxDigits = 12
	moneyScale     = 2
	// decimal(5,2)
	percentMaxDigits = 5
	percentScale     = 2
)

var validate = validator.New()

func init() {
	// Register custom validation for UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	// Decimals are validated through their string form.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		return fitsColumn(fl.Field().String(), moneyMaxDigits, moneyScale)
	})
	validate.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
		return fitsColumn(fl.Field().String(), percentMaxDigits, percentScale)
	})
}

// fitsColumn reports whether s is a non-negative decimal that can be stored
// in a decimal(digits, scale) column without rounding.
func fitsColumn(s string, digits, scale int32) bool {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return false
	}
	if !d.Equal(d.Round(scale)) {
		return false
	}
	limit := decimal.New(1, digits-scale)
	return d.LessThan(limit)
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
