package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is stored inside challans.items (JSONB), in the order submitted.
// Price is nil when the client omitted it.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// Challan is one delivery document. It is never updated after creation
// except for the soft-delete flag and a PDF backfill.
type Challan struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerName string          `gorm:"not null"`
	ChallanNo    string          `gorm:"uniqueIndex;not null"`
	PDFData      []byte          `gorm:"type:bytea;column:pdf_data"`
	Items        []LineItem      `gorm:"type:jsonb;serializer:json;not null"`
	TotalItems   decimal.Decimal `gorm:"type:numeric;not null"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	IsDeleted    bool            `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

func (Challan) TableName() string { return "challans" }
