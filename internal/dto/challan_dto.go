package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LineItemRequest uses pointers so that an absent field can be told apart
// from an empty description or a zero quantity.
type LineItemRequest struct {
	Description *string          `json:"description" validate:"required"`
	Quantity    *decimal.Decimal `json:"quantity"    validate:"required,min=0"`
	Price       *decimal.Decimal `json:"price"       validate:"omitempty,min=0"`
}

type CreateChallanRequest struct {
	CustomerName string            `json:"customerName" validate:"required,max=200"`
	ChallanNo    string            `json:"challanNo"    validate:"required,max=64"`
	Items        []LineItemRequest `json:"items"        validate:"required,min=1,dive"`
	// EmailTo is optional. When set, the email worker mails the PDF.
	EmailTo *string `json:"emailTo" validate:"omitempty,email"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

// ChallanFilter is bound from the query string of GET /api/list-challans.
type ChallanFilter struct {
	Search    string `form:"search"`
	Sort      string `form:"sort,default=created_at" validate:"oneof=created_at customer_name challan_no total_items total_price"`
	Order     string `form:"order,default=desc"      validate:"oneof=asc desc ASC DESC"`
	StartDate string `form:"start_date"              validate:"omitempty,datetime=2006-01-02"` // inclusive
	EndDate   string `form:"end_date"                validate:"omitempty,datetime=2006-01-02"` // inclusive
	Page      int    `form:"page,default=1"          validate:"min=1"`
	Limit     int    `form:"limit,default=50"        validate:"min=1,max=200"`
}

type ChallanSummary struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	ChallanNo    string          `json:"challan_no"`
	CreatedAt    string          `json:"created_at"`
	TotalItems   decimal.Decimal `json:"total_items"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type ChallanListResponse struct {
	Data  []ChallanSummary `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CreateChallanResponse struct {
	Message    string          `json:"message"`
	ChallanID  string          `json:"challanId"`
	ChallanNo  string          `json:"challanNo"`
	TotalItems decimal.Decimal `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type LineItemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

type ChallanResponse struct {
	ID           string             `json:"id"`
	CustomerName string             `json:"customer_name"`
	ChallanNo    string             `json:"challan_no"`
	CreatedAt    string             `json:"created_at"`
	Items        []LineItemResponse `json:"items"`
	TotalItems   decimal.Decimal    `json:"total_items"`
	TotalPrice   decimal.Decimal    `json:"total_price"`
	PDFUrl       string             `json:"pdf_url"`
}

type ShareResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// File is a generated download: a challan PDF or a spreadsheet export.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}
