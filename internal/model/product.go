package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type Product struct {
	BaseModel
	SKU      string `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku"`
	Name     string `gorm:"type:varchar(255);not null;index" json:"name"`
	Quantity int    `gorm:"not null;default:0" json:"quantity"`
}

// CreateProductRequest is the payload for adding a product.
// A nil Quantity means the field was left blank and is stored as 0.
type CreateProductRequest struct {
	SKU      string `json:"sku" form:"sku" validate:"required,max=64"`
	Name     string `json:"name" form:"name" validate:"required,max=255"`
	Quantity *int   `json:"quantity" form:"quantity" validate:"omitempty,gte=0"`
}

// UnmarshalJSON treats a null or blank quantity like an omitted one. A
// quantity sent as a numeric string is accepted the way form input is.
func (r *CreateProductRequest) UnmarshalJSON(data []byte) error {
	type plain CreateProductRequest
	aux := struct {
		*plain
		Quantity json.RawMessage `json:"quantity"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Quantity = nil
	raw := bytes.TrimSpace(aux.Quantity)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var n int
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		n = v
	} else if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	r.Quantity = &n
	return nil
}

// UpdateProductRequest is the payload for a direct product edit.
type UpdateProductRequest struct {
	SKU      string `json:"sku" form:"sku" validate:"required,max=64"`
	Name     string `json:"name" form:"name" validate:"required,max=255"`
	Quantity int    `json:"quantity" form:"quantity" validate:"gte=0"`
}

// ToProduct builds the Product to insert, defaulting a blank quantity to 0.
func (r *CreateProductRequest) ToProduct() *Product {
	p := &Product{SKU: r.SKU, Name: r.Name}
	if r.Quantity != nil {
		p.Quantity = *r.Quantity
	}
	return p
}
