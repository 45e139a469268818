package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product represents an item in the storefront catalog
type Product struct {
	ID            bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string        `json:"name" bson:"name" yaml:"name" validate:"required,min=2,max=200"`
	Description   string        `json:"description" bson:"description" yaml:"description" validate:"max=2000"`
	Price         float64       `json:"price" bson:"price" yaml:"price" validate:"gt=0"`
	OriginalPrice *float64      `json:"original_price,omitempty" bson:"original_price,omitempty" yaml:"original_price"`
	Category      string        `json:"category" bson:"category" yaml:"category" validate:"required,max=100"`
	Subcategory   string        `json:"subcategory,omitempty" bson:"subcategory,omitempty" yaml:"subcategory"`
	ImageURL      string        `json:"image_url" bson:"image_url" yaml:"image_url" validate:"required,url"`
	Images        []string      `json:"images,omitempty" bson:"images,omitempty" yaml:"images"`
	InStock       bool          `json:"in_stock" bson:"in_stock" yaml:"in_stock"`
	StockCount    int           `json:"stock_count" bson:"stock_count" yaml:"stock_count" validate:"gte=0"`
	Featured      *bool         `json:"featured,omitempty" bson:"featured,omitempty" yaml:"featured"`
	Tags          []string      `json:"tags,omitempty" bson:"tags,omitempty" yaml:"tags"`
	Rating        *float64      `json:"rating,omitempty" bson:"rating,omitempty" yaml:"rating"`
	ReviewCount   *int          `json:"review_count,omitempty" bson:"review_count,omitempty" yaml:"review_count"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at" yaml:"-"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at" yaml:"-"`
}

// ProductFilter selects a subset of the catalog. Category wins over Featured.
type ProductFilter struct {
	Category *string
	Featured *bool
}

// ProductUpdate is a partial update applied by admins. Nil fields are left alone.
type ProductUpdate struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	OriginalPrice *float64 `json:"original_price,omitempty" validate:"omitempty,gt=0"`
	ImageURL      *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	InStock       *bool    `json:"in_stock,omitempty"`
	StockCount    *int     `json:"stock_count,omitempty" validate:"omitempty,gte=0"`
	Featured      *bool    `json:"featured,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.OriginalPrice == nil &&
		u.ImageURL == nil && u.InStock == nil && u.StockCount == nil && u.Featured == nil
}

// Apply copies every non-nil field onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.OriginalPrice != nil {
		v := *u.OriginalPrice
		p.OriginalPrice = &v
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.InStock != nil {
		p.InStock = *u.InStock
	}
	if u.StockCount != nil {
		p.StockCount = *u.StockCount
	}
	if u.Featured != nil {
		v := *u.Featured
		p.Featured = &v
	}
	p.UpdatedAt = time.Now()
}

// Fields returns the update as a bson document for a $set.
func (u ProductUpdate) Fields() bson.D {
	set := bson.D{}
	if u.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *u.Name})
	}
	if u.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *u.Description})
	}
	if u.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *u.Price})
	}
	if u.OriginalPrice != nil {
		set = append(set, bson.E{Key: "original_price", Value: *u.OriginalPrice})
	}
	if u.ImageURL != nil {
		set = append(set, bson.E{Key: "image_url", Value: *u.ImageURL})
	}
	if u.InStock != nil {
		set = append(set, bson.E{Key: "in_stock", Value: *u.InStock})
	}
	if u.StockCount != nil {
		set = append(set, bson.E{Key: "stock_count", Value: *u.StockCount})
	}
	if u.Featured != nil {
		set = append(set, bson.E{Key: "featured", Value: *u.Featured})
	}
	return append(set, bson.E{Key: "updated_at", Value: time.Now()})
}

func (p *Product) IsFeatured() bool {
	return p.Featured != nil && *p.Featured
}

// IsAvailable is the check the order workflow applies before snapshotting.
func (p *Product) IsAvailable() bool {
	return p.InStock
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
