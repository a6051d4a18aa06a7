package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OrderStatus enumerates the order lifecycle states
type OrderStatus = string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// ValidOrderStatus checks the status against the declared enum. Any of
// the four values is accepted from any current state; transition
// legality is deliberately not enforced.
func ValidOrderStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Delivery methods
const (
	DeliveryPickup  = "pickup"
	DeliveryCarrier = "nova-poshta"
)

// Payment methods
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// OrderCustomer is the customer snapshot embedded in an order
type OrderCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderDelivery holds the chosen delivery method plus optional carrier
// location references.
type OrderDelivery struct {
	Method     string `json:"method"`
	CityRef    string `json:"cityRef,omitempty"`
	CityName   string `json:"cityName,omitempty"`
	BranchRef  string `json:"branchRef,omitempty"`
	BranchName string `json:"branchName,omitempty"`
}

// OrderPayment holds the chosen payment method
type OrderPayment struct {
	Method string `json:"method"`
}

// OrderItem is a frozen snapshot of a catalog item at checkout time.
// Catalog changes never retroactively alter a placed order.
type OrderItem struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	Quantity         int      `json:"quantity"`
	Slug             string   `json:"slug,omitempty"`
	Images           []string `json:"images,omitempty"`
	Category         string   `json:"category,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	Brand            string   `json:"brand,omitempty"`
	Currency         string   `json:"currency,omitempty"`
}

// Order is immutable after creation except for its status. The external
// id is the only identifier clients ever see.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:ord"`

	ID        uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"-"`
	OrderID   string        `bun:"order_id,notnull,unique" json:"id"`
	Date      time.Time     `bun:"date,notnull" json:"date"`
	Customer  OrderCustomer `bun:"customer,type:jsonb" json:"customer"`
	Delivery  OrderDelivery `bun:"delivery,type:jsonb" json:"delivery"`
	Payment   OrderPayment  `bun:"payment,type:jsonb" json:"payment"`
	Items     []OrderItem   `bun:"items,type:jsonb" json:"items"`
	Total     float64       `bun:"total,notnull" json:"total"`
	Status    OrderStatus   `bun:"status,notnull" json:"status"`
	UserID    string        `bun:"user_id,nullzero" json:"userId,omitempty"`
	CreatedAt time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}
