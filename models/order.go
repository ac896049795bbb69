package models

import "time"

// OrderStatus represents the delivery state of a water order
type OrderStatus string

const (
	StatusPlanned    OrderStatus = "planned"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Fixed values written on every new order. Vehicle and route are
// placeholders until dispatch exists.
const (
	DefaultServiceTime   = 120
	DefaultVehicle       = "default_vehicle"
	DefaultRouteID       = "default_route"
	DefaultPriorityLevel = 0
	ChangeLogFieldStatus = "status"
)

// OrderRequest is a snapshot of what was ordered, copied from the product
// at creation time.
type OrderRequest struct {
	ProductID   string  `json:"product_id" bson:"product_id"`
	ProductName string  `json:"product_name" bson:"product_name"`
	Notes       string  `json:"notes" bson:"notes"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	Demand      float64 `json:"demand" bson:"demand"` // weight × quantity
}

// Location is copied from the customer's profile when the order is placed.
type Location struct {
	Address   string   `json:"address" bson:"address"`
	Latitude  *float64 `json:"latitude" bson:"latitude"`
	Longitude *float64 `json:"longitude" bson:"longitude"`
}

type Order struct {
	OrderID         string           `json:"order_id" gorm:"primaryKey" bson:"order_id"`
	TaskID          string           `json:"task_id" gorm:"not null" bson:"task_id"`
	CustomerID      string           `json:"customer_id" gorm:"index;not null" bson:"customer_id"`
	Request         OrderRequest     `json:"request" gorm:"embedded;embeddedPrefix:request_" bson:"request"`
	Location        Location         `json:"location" gorm:"embedded;embeddedPrefix:location_" bson:"location"`
	ReadyTime       string           `json:"ready_time" bson:"ready_time"`
	DueTime         string           `json:"due_time" bson:"due_time"`
	OrderDate       time.Time        `json:"order_date" bson:"order_date"`
	ServiceTime     int              `json:"service_time" bson:"service_time"`
	TotalPrice      float64          `json:"total_price" bson:"total_price"` // snapshot, never recomputed
	Status          OrderStatus      `json:"status" gorm:"not null;default:'planned'" bson:"status"`
	ChangeLog       []ChangeLogEntry `json:"change_log" gorm:"foreignKey:OrderID;references:OrderID" bson:"change_log"`
	PriorityLevel   int              `json:"priority_level" bson:"priority_level"`
	AssignedVehicle string           `json:"assigned_vehicle" bson:"assigned_vehicle"`
	AssignedRouteID string           `json:"assigned_route_id" bson:"assigned_route_id"`
	CreatedAt       time.Time        `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" bson:"updated_at"`
}

// ChangeLogEntry is one append-only audit record on an order.
type ChangeLogEntry struct {
	ID        uint      `json:"-" gorm:"primaryKey" bson:"-"`
	OrderID   string    `json:"-" gorm:"index;not null" bson:"-"`
	Field     string    `json:"field" gorm:"not null" bson:"field"`
	OldValue  string    `json:"old_value" bson:"old_value"`
	NewValue  string    `json:"new_value" bson:"new_value"`
	ChangedAt time.Time `json:"changed_at" bson:"changed_at"`
	ChangedBy string    `json:"changed_by" bson:"changed_by"` // user_id of the actor
}

func (ChangeLogEntry) TableName() string { return "order_changes" }
