package course

import (
	"educa/services/ordering"

	"gorm.io/gorm"
)

// ItemType discriminates which item table a Content points at.
type ItemType string

const (
	ItemText  ItemType = "text"
	ItemVideo ItemType = "video"
	ItemImage ItemType = "image"
	ItemFile  ItemType = "file"
)

// ItemTypes lists every item type in display order.
var ItemTypes = []ItemType{ItemText, ItemVideo, ItemImage, ItemFile}

// Content places exactly one item inside a module. ItemType never changes after creation.
type Content struct {
	gorm.Model
	ModuleID uint     `json:"module_id" gorm:"index;not null"`
	ItemType ItemType `json:"item_type" gorm:"size:16;not null"`
	ItemID   uint     `json:"item_id" gorm:"not null"`
	Order    *int     `json:"order" gorm:"column:sort_order;not null"`
}

// BeforeCreate assigns the next position in the module when none was given.
func (c *Content) BeforeCreate(tx *gorm.DB) error {
	return ordering.Assign(tx, &Content{}, ordering.Scope{Column: "module_id", Parent: c.ModuleID}, &c.Order)
}
