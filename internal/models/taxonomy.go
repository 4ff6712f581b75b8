package models

import "github.com/google/uuid"

// Category is a node of the listing tree. Root categories have no parent.
type Category struct {
	BaseModel
	Name        string     `json:"name"`
	Slug        string     `gorm:"uniqueIndex" json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Parent      *Category  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	SortOrder   int        `json:"sort_order"`
	Species     []Species  `gorm:"many2many:category_species;" json:"species,omitempty"`
	Children    []Category `gorm:"-" json:"children,omitempty"`
}

// Species is a gemstone species allowed under one or more categories.
type Species struct {
	BaseModel
	Name        string     `json:"name"`
	Slug        string     `gorm:"uniqueIndex" json:"slug"`
	Description string     `json:"description"`
	Categories  []Category `gorm:"many2many:category_species;" json:"categories,omitempty"`
}

// Laboratory issues gemological certificates.
type Laboratory struct {
	BaseModel
	Name        string `json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Website     string `json:"website"`
	Country     string `json:"country"`
	Description string `json:"description"`
}

// Origin is the mining locality of a stone.
type Origin struct {
	BaseModel
	Name        string `json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Country     string `json:"country"`
	Description string `json:"description"`
}
