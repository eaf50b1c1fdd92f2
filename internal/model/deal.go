package model

import (
	"errors"
	"fmt"
)

// ErrUnknownDealField is returned when a change names a field outside the DealField enum.
var ErrUnknownDealField = errors.New("unknown deal field")

// NotAvailable is the placeholder the model uses for deal fields it could not resolve.
const NotAvailable = "N/A"

// Deal represents a single sales opportunity extracted from the CRM export.
// RowID refers back to the originating row; it does not own it and may dangle.
type Deal struct {
	DealName    string `json:"dealName"`
	Amount      string `json:"amount"`
	Stage       string `json:"stage"`
	Insight     string `json:"insight"`
	Description string `json:"description"`
	RowID       int    `json:"rowId"`
}

// DealFields are the user-facing fields of a deal proposed for creation.
type DealFields struct {
	DealName    string `json:"dealName"`
	Amount      string `json:"amount"`
	Stage       string `json:"stage"`
	Description string `json:"description"`
}

// DealField names one mutable field of a Deal.
type DealField string

const (
	// FieldDealName is the deal's display name.
	FieldDealName DealField = "dealName"
	// FieldAmount is the currency-formatted amount.
	FieldAmount DealField = "amount"
	// FieldStage is the sales stage.
	FieldStage DealField = "stage"
	// FieldInsight is the one-sentence AI insight.
	FieldInsight DealField = "insight"
	// FieldDescription is the long-form description.
	FieldDescription DealField = "description"
)

// DealFieldNames lists every mutable field in declaration order.
var DealFieldNames = []DealField{FieldDealName, FieldAmount, FieldStage, FieldInsight, FieldDescription}

// Valid reports whether f is one of the mutable deal fields.
func (f DealField) Valid() bool {
	switch f {
	case FieldDealName, FieldAmount, FieldStage, FieldInsight, FieldDescription:
		return true
	}
	return false
}

// ParseDealField validates a raw field name.
func ParseDealField(name string) (DealField, error) {
	f := DealField(name)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDealField, name)
	}
	return f, nil
}

// Get returns the current value of field f.
func (d *Deal) Get(f DealField) string {
	switch f {
	case FieldDealName:
		return d.DealName
	case FieldAmount:
		return d.Amount
	case FieldStage:
		return d.Stage
	case FieldInsight:
		return d.Insight
	case FieldDescription:
		return d.Description
	}
	return ""
}

// Set overwrites field f with value.
func (d *Deal) Set(f DealField, value string) error {
	switch f {
	case FieldDealName:
		d.DealName = value
	case FieldAmount:
		d.Amount = value
	case FieldStage:
		d.Stage = value
	case FieldInsight:
		d.Insight = value
	case FieldDescription:
		d.Description = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDealField, string(f))
	}
	return nil
}

// FieldChange is a proposed replacement of one field value.
type FieldChange struct {
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// Changes maps mutable deal fields to their proposed values.
type Changes map[DealField]FieldChange

// Validate rejects any change naming a field outside the DealField enum.
func (c Changes) Validate() error {
	for f := range c {
		if !f.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownDealField, string(f))
		}
	}
	return nil
}

// Fields returns the changed fields in DealFieldNames order.
func (c Changes) Fields() []DealField {
	out := make([]DealField, 0, len(c))
	for _, f := range DealFieldNames {
		if _, ok := c[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
