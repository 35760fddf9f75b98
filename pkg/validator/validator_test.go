package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type priced struct {
	ID    uuid.UUID        `validate:"uuid_required"`
	Price *decimal.Decimal `validate:"required,money"`
	Tax   *decimal.Decimal `validate:"omitempty,percent"`
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidateStructMoney(t *testing.T) {
	cases := []struct {
		price string
		ok    bool
	}{
		{"0", true},
		{"0.00", true},
		{"19.99", true},
		{"9999999999.99", true},
		{"10000000000", false},
		{"1.005", false},
		{"-0.01", false},
	}
	for _, tc := range cases {
		t.Run(tc.price, func(t *testing.T) {
			errs := ValidateStruct(&priced{ID: uuid.New(), Price: dec(tc.price)})
			if tc.ok {
				assert.Empty(t, errs)
			} else {
				if assert.Len(t, errs, 1) {
					assert.Equal(t, "money", errs[0].Tag)
				}
			}
		})
	}
}

func TestValidateStructPercent(t *testing.T) {
	assert.Empty(t, ValidateStruct(&priced{ID: uuid.New(), Price: dec("1"), Tax: dec("12.00")}))
	assert.Empty(t, ValidateStruct(&priced{ID: uuid.New(), Price: dec("1"), Tax: dec("999.99")}))

	errs := ValidateStruct(&priced{ID: uuid.New(), Price: dec("1"), Tax: dec("1000")})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "percent", errs[0].Tag)
	}
}

func TestValidateStructRequired(t *testing.T) {
	errs := ValidateStruct(&priced{})
	tags := map[string]string{}
	for _, e := range errs {
		tags[e.FailedField] = e.Tag
	}
	assert.Equal(t, "uuid_required", tags["priced.ID"])
	assert.Equal(t, "required", tags["priced.Price"])
}
