package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null"     json:"name"`
}

// Product.Stock is owned by the inventory ledger; nothing else writes it
// after creation.
type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name        string    `gorm:"not null"                   json:"name"`
	Description string    `gorm:"not null;default:''"        json:"description"`
	Price       int64     `gorm:"not null;check:price >= 0"  json:"price"`
	Stock       int       `gorm:"not null;check:stock >= 0"  json:"stock"`
	ImageURL    string    `gorm:"not null;default:''"        json:"image_url"`
	CategoryID  *uint     `gorm:"index"                      json:"category_id"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	Name         string    `gorm:"not null;default:''"      json:"name"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey"                            json:"id"`
	UserID    uint     `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"user_id"`
	ProductID uint     `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"product_id"`
	Quantity  int      `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE"            json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Order struct {
	ID              uint        `gorm:"primaryKey"                json:"id"`
	UserID          uint        `gorm:"index;not null"            json:"user_id"`
	Address         string      `gorm:"not null"                  json:"address"`
	Status          string      `gorm:"index;not null"            json:"status"`
	TotalPrice      int64       `gorm:"not null"                  json:"total_price"`
	PaymentIntentID *string     `gorm:"index"                     json:"payment_intent_id,omitempty"`
	Items           []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem.Price is the unit price at checkout and never follows the catalog.
type OrderItem struct {
	ID        uint  `gorm:"primaryKey"                       json:"id"`
	OrderID   uint  `gorm:"index;not null"                   json:"order_id"`
	// No foreign key: order history outlives product deletion, and restock
	// skips rows that are gone.
	ProductID uint  `gorm:"index;not null"                   json:"product_id"`
	Quantity  int   `gorm:"not null;check:quantity > 0"      json:"quantity"`
	Price     int64 `gorm:"not null"                         json:"price"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"                                  json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_review_user_product;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_review_user_product;not null" json:"product_id"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5"       json:"rating"`
	Comment   string    `gorm:"not null;default:''"                         json:"comment"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func All() []any {
	return []any{
		&Category{},
		&Product{},
		&User{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Review{},
	}
}
