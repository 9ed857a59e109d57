package model

import (
	"strings"
	"unicode/utf8"
)

// MaxProductNameLength matches the width of the product_name column.
const MaxProductNameLength = 100

// Lot is one pharmaceutical production lot.
type Lot struct {
	LotID          int64  `db:"lot_id" json:"lot_id"`
	ProductName    string `db:"product_name" json:"product_name"`
	Quantity       int64  `db:"quantity" json:"quantity"`
	ProductionDate Date   `db:"production_date" json:"production_date"`
	ExpirationDate Date   `db:"expiration_date" json:"expiration_date"`
}

// IsCompliant reports whether the lot has not yet expired on asOf.
// A lot expiring on asOf itself is still compliant.
func (l Lot) IsCompliant(asOf Date) bool {
	return !l.ExpirationDate.Before(asOf)
}

// LotInput holds the validated business fields of a lot to be created.
type LotInput struct {
	ProductName    string
	Quantity       int64
	ProductionDate Date
	ExpirationDate Date
}

// ExpiresBeforeProduction flags inputs whose dates are out of order.
// Such lots are accepted but worth a warning.
func (in LotInput) ExpiresBeforeProduction() bool {
	return in.ExpirationDate.Before(in.ProductionDate)
}

// ComplianceCount is a consistent snapshot of how many lots exist and how
// many of them are compliant on one date.
type ComplianceCount struct {
	Total     int `db:"total"`
	Compliant int `db:"compliant"`
}

// LotRequest is the raw create payload. Pointer fields distinguish a
// missing field from a zero value.
type LotRequest struct {
	ProductName    *string `json:"product_name"`
	Quantity       *int64  `json:"quantity"`
	ProductionDate *string `json:"production_date"`
	ExpirationDate *string `json:"expiration_date"`
}

// Validate checks the request and converts it into a LotInput.
func (r LotRequest) Validate() (LotInput, error) {
	var in LotInput

	if r.ProductName == nil {
		return in, missingField("product_name")
	}
	name := *r.ProductName
	if strings.TrimSpace(name) == "" {
		return in, &ValidationError{Field: "product_name", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(name) > MaxProductNameLength {
		return in, &ValidationError{Field: "product_name", Message: "must be at most 100 characters"}
	}

	if r.Quantity == nil {
		return in, missingField("quantity")
	}
	if *r.Quantity < 0 {
		return in, &ValidationError{Field: "quantity", Message: "must not be negative"}
	}

	if r.ProductionDate == nil {
		return in, missingField("production_date")
	}
	prod, err := ParseDate(*r.ProductionDate)
	if err != nil {
		return in, &ValidationError{Field: "production_date", Message: err.Error()}
	}

	if r.ExpirationDate == nil {
		return in, missingField("expiration_date")
	}
	exp, err := ParseDate(*r.ExpirationDate)
	if err != nil {
		return in, &ValidationError{Field: "expiration_date", Message: err.Error()}
	}

	in.ProductName = name
	in.Quantity = *r.Quantity
	in.ProductionDate = prod
	in.ExpirationDate = exp
	return in, nil
}

// NewLotRequest builds a request with every field present.
func NewLotRequest(productName string, quantity int64, productionDate, expirationDate string) LotRequest {
	return LotRequest{
		ProductName:    &productName,
		Quantity:       &quantity,
		ProductionDate: &productionDate,
		ExpirationDate: &expirationDate,
	}
}
