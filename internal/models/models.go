package models

import (
	"time"

	"gorm.io/gorm"
)

// User - The operator who logs in and processes sales
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// Category - Product grouping. Name uniqueness is checked in the handlers
// so the user gets a readable error instead of a raw constraint failure.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100" json:"name"`
}

// Product - The Inventory
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Barcode       string    `gorm:"uniqueIndex;size:50" json:"barcode"`
	Name          string    `gorm:"size:200" json:"name"`
	CategoryID    *uint     `json:"category_id"`
	Category      *Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Price         float64   `json:"price"`
	Cost          float64   `json:"cost"`
	StockQuantity int       `json:"stock_quantity"`
	GSTPercentage float64   `json:"gst_percentage"`
	ImageURL      string    `json:"image_url"`
}

// Sale - The Transaction Header. TransactionID is the human-readable
// "TRX-..." string printed on the invoice.
type Sale struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TransactionID string     `gorm:"uniqueIndex;size:100" json:"transaction_id"`
	CustomerName  string     `gorm:"size:100" json:"customer_name"`
	TotalAmount   float64    `json:"total_amount"`
	UserID        *uint      `json:"user_id"` // Who processed it; survives user removal
	Items         []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SaleItem - One product/quantity line within a sale
type SaleItem struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	SaleID      uint     `json:"sale_id"`
	ProductID   *uint    `json:"product_id"`
	Product     *Product `gorm:"constraint:OnDelete:SET NULL" json:"product,omitempty"`
	Quantity    int      `json:"quantity"`
	PriceAtSale float64  `json:"price_at_sale"` // Snapshot of price at time of sale
	Total       float64  `json:"total"`
}

// BeforeSave recomputes the line total so it never drifts from
// price x quantity, whichever code path persists the item.
func (item *SaleItem) BeforeSave(tx *gorm.DB) error {
	item.Total = item.PriceAtSale * float64(item.Quantity)
	return nil
}
