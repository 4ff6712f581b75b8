package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ProductTypeLooseStone = "loose_stone"
	ProductTypeJewellery  = "jewellery"

	StatusActive  = "active"
	StatusArchive = "archive"
	StatusSold    = "sold"
	StatusHidden  = "hidden"

	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"

	CutFaceted  = "Faceted"
	CutCabochon = "Cabochon"

	CurrencyMMK = "MMK"
	CurrencyUSD = "USD"
	CurrencyKRW = "KRW"
)

// Product is a listing. Status (buyer facing availability) and
// ModerationStatus (admin review) are independent.
type Product struct {
	BaseModel
	Title             string            `json:"title"`
	SKU               string            `gorm:"column:sku;uniqueIndex" json:"sku"`
	Description       string            `json:"description"`
	Price             decimal.Decimal   `gorm:"type:numeric(14,2)" json:"price"`
	Currency          string            `gorm:"default:MMK" json:"currency"`
	ProductType       string            `gorm:"index" json:"product_type"`
	CategoryID        *uuid.UUID        `gorm:"type:uuid;index" json:"category_id"`
	Category          *Category         `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	SpeciesID         *uuid.UUID        `gorm:"type:uuid;index" json:"species_id"`
	Species           *Species          `gorm:"constraint:OnDelete:SET NULL" json:"species,omitempty"`
	StoneCut          string            `json:"stone_cut"`
	Metal             string            `json:"metal"`
	Weight            float64           `json:"weight"`
	Color             string            `json:"color"`
	Shape             string            `json:"shape"`
	Treatment         string            `json:"treatment"`
	OriginID          *uuid.UUID        `gorm:"type:uuid;index" json:"origin_id"`
	Origin            *Origin           `gorm:"constraint:OnDelete:SET NULL" json:"origin,omitempty"`
	LaboratoryID      *uuid.UUID        `gorm:"type:uuid;index" json:"laboratory_id"`
	Laboratory        *Laboratory       `gorm:"constraint:OnDelete:SET NULL" json:"laboratory,omitempty"`
	CertificateNumber string            `json:"certificate_number"`
	CertificateDate   *time.Time        `json:"certificate_date"`
	CertificateURL    string            `json:"certificate_url"`
	Status            string            `gorm:"default:active;index" json:"status"`
	ModerationStatus  string            `gorm:"default:pending;index" json:"moderation_status"`
	ModerationNote    string            `json:"moderation_note"`
	IsFeatured        bool              `json:"is_featured"`
	IsCollectorItem   bool              `json:"is_collector_item"`
	IsPrivilegeAssist bool              `json:"is_privilege_assist"`
	SellerID          uuid.UUID         `gorm:"type:uuid;index;not null" json:"seller_id"`
	Seller            *User             `json:"seller,omitempty"`
	Images            []ProductImage    `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Gemstones         []ProductGemstone `gorm:"constraint:OnDelete:CASCADE" json:"gemstones,omitempty"`
}

// ProductImage is one entry of a product's ordered gallery.
type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL       string    `json:"url"`
	SortOrder int       `json:"sort_order"`
}

// ProductGemstone describes a stone set in a jewellery piece.
type ProductGemstone struct {
	BaseModel
	ProductID  uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	SpeciesID  *uuid.UUID `gorm:"type:uuid;index" json:"species_id"`
	StoneCut   string     `json:"stone_cut"`
	Shape      string     `json:"shape"`
	Color      string     `json:"color"`
	Weight     float64    `json:"weight"`
	Count      int        `json:"count"`
	SortOrder  int        `json:"sort_order"`
}
