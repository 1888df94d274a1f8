package models

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Stock          int     `json:"stock"`
	MRP            float64 `json:"mrp"`
	SellingPrice   float64 `json:"sellingPrice"`
	Brand          string  `json:"brand"`
	ReturnEligible YesNo   `json:"returnEligible"`
	IsPublished    bool    `json:"isPublished"`
}

// UnmarshalJSON reads stored records leniently: numeric fields may arrive as
// numbers, fractions or numeric strings, the way form inputs saved them.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             any   `json:"id"`
		Name           any   `json:"name"`
		Type           any   `json:"type"`
		Stock          any   `json:"stock"`
		MRP            any   `json:"mrp"`
		SellingPrice   any   `json:"sellingPrice"`
		Brand          any   `json:"brand"`
		ReturnEligible YesNo `json:"returnEligible"`
		IsPublished    any   `json:"isPublished"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product{
		ID:             ToInt64(raw.ID),
		Name:           cast.ToString(raw.Name),
		Type:           cast.ToString(raw.Type),
		Stock:          ToInt(raw.Stock),
		MRP:            ToFloat(raw.MRP),
		SellingPrice:   ToFloat(raw.SellingPrice),
		Brand:          cast.ToString(raw.Brand),
		ReturnEligible: raw.ReturnEligible,
		IsPublished:    cast.ToBool(raw.IsPublished),
	}
	return nil
}

// Draft is a product without the fields the catalog owns (id and the
// published flag).
type Draft struct {
	Name           string
	Type           string
	Stock          int
	MRP            float64
	SellingPrice   float64
	Brand          string
	ReturnEligible YesNo
}

// Patch lists the fields an edit may change. Nil fields are kept as they are.
type Patch struct {
	Name           *string
	Type           *string
	Stock          *int
	MRP            *float64
	SellingPrice   *float64
	Brand          *string
	ReturnEligible *YesNo
}

func (p Patch) ApplyTo(prod *Product) {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Type != nil {
		prod.Type = *p.Type
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.MRP != nil {
		prod.MRP = *p.MRP
	}
	if p.SellingPrice != nil {
		prod.SellingPrice = *p.SellingPrice
	}
	if p.Brand != nil {
		prod.Brand = *p.Brand
	}
	if p.ReturnEligible != nil {
		prod.ReturnEligible = *p.ReturnEligible
	}
}

// YesNo is a boolean stored as "Yes"/"No". Decoding also accepts JSON
// booleans and numbers (non-zero is Yes); anything else decodes to No.
type YesNo bool

const (
	Yes YesNo = true
	No  YesNo = false
)

func (v YesNo) String() string {
	if v {
		return "Yes"
	}
	return "No"
}

func (v YesNo) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *YesNo) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = ParseYesNo(x)
	case bool:
		*v = YesNo(x)
	case float64:
		*v = x != 0
	default:
		*v = No
	}
	return nil
}

func ParseYesNo(s string) YesNo {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return Yes
	default:
		return No
	}
}

type Tab string

const (
	TabPublished   Tab = "Published"
	TabUnpublished Tab = "Unpublished"
)

func ParseTab(s string) (Tab, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "published":
		return TabPublished, true
	case "unpublished":
		return TabUnpublished, true
	}
	return "", false
}

func (t Tab) Published() bool { return t == TabPublished }

func (t Tab) Matches(p Product) bool {
	return p.IsPublished == t.Published()
}
