package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string    `gorm:"unique;not null"           json:"username"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:user"     json:"role"`
	FirstName    string    `gorm:"size:255"                  json:"first_name"`
	Phone        string    `gorm:"size:50"                   json:"phone"`
	Email        string    `gorm:"size:255"                  json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DeliveryAddress struct {
	ID          uint      `gorm:"primaryKey"             json:"id"`
	UserID      uint      `gorm:"index;not null"         json:"user_id"`
	Label       string    `gorm:"size:100;not null"      json:"label"`
	FullAddress string    `gorm:"not null"               json:"full_address"`
	IsDefault   bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey"      json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	ParentID    *uint     `gorm:"index"           json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey"                  json:"id"`
	Name        string          `gorm:"size:255;not null"           json:"name"`
	Description string          `gorm:"not null"                    json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;check:stock >= 0"   json:"stock"`
	ImageURL    string          `gorm:"size:500"                    json:"image_url,omitempty"`
	CategoryID  uint            `gorm:"index;not null"              json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Cart is the per-user mutable selection. One cart per user; its lines are
// consumed when the cart is converted into an order.
type Cart struct {
	ID        uint       `gorm:"primaryKey"           json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                            json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order is immutable after placement except for Status. Contact and address
// fields are snapshots taken at checkout, decoupled from the user's live
// profile and address book.
type Order struct {
	ID             uint        `gorm:"primaryKey"                       json:"id"`
	OrderNumber    string      `gorm:"size:20;uniqueIndex;not null"     json:"order_number"`
	UserID         uint        `gorm:"index;not null"                   json:"user_id"`
	ContactName    string      `gorm:"size:255;not null"                json:"contact_name"`
	Phone          string      `gorm:"size:50;not null"                 json:"phone"`
	Address        string      `gorm:"not null"                         json:"address"`
	DeliveryMethod string      `gorm:"size:100;not null"                json:"delivery_method"`
	Status         OrderStatus `gorm:"size:20;not null;default:pending" json:"status"`
	User           *User       `json:"user,omitempty"`
	Items          []OrderItem `json:"items"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Total sums quantity * price-at-purchase over the order's items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Price.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity))))
	}
	return total
}

// OrderItem snapshots a cart line at the moment of purchase. Price is copied
// from the product, so later price edits never alter historical orders.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	OrderID   uint            `gorm:"index;not null"              json:"order_id"`
	ProductID uint            `gorm:"not null"                    json:"product_id"`
	Quantity  int             `gorm:"not null"                    json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Product   *Product        `json:"product,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
