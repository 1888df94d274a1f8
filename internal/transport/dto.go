package transport

import (
	"github.com/Skotchmaster/product_dashboard/internal/models"
)

// Numeric fields accept JSON numbers or numeric strings. Anything else
// coerces to zero.
type CreateProductRequest struct {
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	Stock          any          `json:"stock"`
	MRP            any          `json:"mrp"`
	SellingPrice   any          `json:"sellingPrice"`
	Brand          string       `json:"brand"`
	ReturnEligible models.YesNo `json:"returnEligible"`
}

func (r CreateProductRequest) Draft() models.Draft {
	return models.Draft{
		Name:           r.Name,
		Type:           r.Type,
		Stock:          models.ToInt(r.Stock),
		MRP:            models.ToFloat(r.MRP),
		SellingPrice:   models.ToFloat(r.SellingPrice),
		Brand:          r.Brand,
		ReturnEligible: r.ReturnEligible,
	}
}

// PatchProductRequest leaves absent (or null) fields untouched.
type PatchProductRequest struct {
	Name           *string       `json:"name"`
	Type           *string       `json:"type"`
	Stock          any           `json:"stock"`
	MRP            any           `json:"mrp"`
	SellingPrice   any           `json:"sellingPrice"`
	Brand          *string       `json:"brand"`
	ReturnEligible *models.YesNo `json:"returnEligible"`
}

func (r PatchProductRequest) Patch() models.Patch {
	p := models.Patch{
		Name:           r.Name,
		Type:           r.Type,
		Brand:          r.Brand,
		ReturnEligible: r.ReturnEligible,
	}
	if r.Stock != nil {
		v := models.ToInt(r.Stock)
		p.Stock = &v
	}
	if r.MRP != nil {
		v := models.ToFloat(r.MRP)
		p.MRP = &v
	}
	if r.SellingPrice != nil {
		v := models.ToFloat(r.SellingPrice)
		p.SellingPrice = &v
	}
	return p
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
}

type VerifyRequest struct {
	Code string `json:"code"`
}

type SelectTabRequest struct {
	Tab string `json:"tab"`
}
