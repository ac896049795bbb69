package models

import "time"

// Measure is a numeric value paired with its unit, e.g. {19, "kg"}.
type Measure struct {
	Value float64 `json:"value" bson:"value"`
	Unit  string  `json:"unit" bson:"unit"`
}

type Dimensions struct {
	Length Measure `json:"length" bson:"length"`
	Width  Measure `json:"width" bson:"width"`
	Height Measure `json:"height" bson:"height"`
}

// Product is a catalog entry. Stock is only ever decremented by order
// placement and never drops below zero.
type Product struct {
	ProductID   string     `json:"product_id" gorm:"primaryKey" bson:"product_id"`
	Name        string     `json:"name" gorm:"not null" bson:"name"`
	Description string     `json:"description" bson:"description"`
	Price       float64    `json:"price" gorm:"not null" bson:"price"`
	Stock       int        `json:"stock" gorm:"not null;check:stock >= 0" bson:"stock"`
	Weight      Measure    `json:"weight" gorm:"embedded;embeddedPrefix:weight_" bson:"weight"`
	Dimensions  Dimensions `json:"dimensions" gorm:"serializer:json" bson:"dimensions"`
	Category    string     `json:"category" bson:"category"`
	ImageURL    string     `json:"image_url" bson:"image_url"`
	ProductType string     `json:"product_type" bson:"product_type"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}
