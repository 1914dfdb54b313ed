package order

import "time"

type Order struct {
	ID             uint          `json:"id"`
	CustomerID     uint          `json:"customer_id"`
	AddressID      *uint         `json:"address_id,omitempty"`
	PaymentID      *string       `json:"payment_id,omitempty"`
	OrderStatus    OrderStatus   `json:"order_status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	TotalAmount    float64       `json:"total_amount"`
	DeliveryCharge float64       `json:"delivery_charge"`
	Discount       float64       `json:"discount"`
	PaymentMethod  string        `json:"payment_method"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Items          []OrderItem   `json:"items"`
}

// OrderItem price fields are a snapshot taken at purchase time; they are never
// recomputed from the live product price.
type OrderItem struct {
	ID           uint    `json:"id"`
	OrderID      uint    `json:"order_id"`
	ProductID    uint    `json:"product_id"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalPrice   float64 `json:"total_price"`
	ProductName  string  `json:"product_name,omitempty"`
	ProductImage *string `json:"product_image,omitempty"`
}

// Stats summarizes a retailer's slice of the order ledger. Revenue counts only
// the retailer's own line items and excludes cancelled orders.
type Stats struct {
	StatusCounts      map[OrderStatus]int `json:"status_counts"`
	OrderCount        int                 `json:"order_count"`
	TotalRevenue      float64             `json:"total_revenue"`
	AverageOrderValue float64             `json:"average_order_value"`
}
