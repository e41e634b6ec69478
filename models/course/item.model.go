package course

import "gorm.io/gorm"

// ItemBase carries the fields shared by every content item.
type ItemBase struct {
	gorm.Model
	OwnerID uint   `json:"owner_id" gorm:"index;not null"`
	Title   string `json:"title" gorm:"size:250;not null"`
}

type Text struct {
	ItemBase
	Body string `json:"body" gorm:"type:text"`
}

type Video struct {
	ItemBase
	URL string `json:"url" gorm:"size:500;not null"`
}

// Image and File keep the storage key of the uploaded object.
type Image struct {
	ItemBase
	File string `json:"file" gorm:"size:500;not null"`
}

type File struct {
	ItemBase
	File string `json:"file" gorm:"size:500;not null"`
}
