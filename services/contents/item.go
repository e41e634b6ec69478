// Package contents manages the items placed inside modules.
//
// A Content row is a thin wrapper: a module, a position and a pointer (ItemType, ItemID) to one
// row in the texts, videos, images or files table. Item is the in-memory form of that pointer:
// the discriminant plus exactly one populated payload.
package contents

import (
	"errors"
	"fmt"
	"strings"

	"educa/models/course"

	"gorm.io/gorm"
)

var (
	ErrUnknownItemType = errors.New("unknown content item type")
	ErrInvalidItem     = errors.New("content item payload does not match its type")
	ErrTypeChange      = errors.New("content item type cannot change")
)

// ParseItemType maps a model name from a route ("text", "Video", ...) to its ItemType.
func ParseItemType(name string) (course.ItemType, error) {
	t := course.ItemType(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range course.ItemTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownItemType, name)
}

// Item is a tagged union over the four item models. Only the field matching Type is set.
type Item struct {
	Type  course.ItemType `json:"type"`
	Text  *course.Text    `json:"text,omitempty"`
	Video *course.Video   `json:"video,omitempty"`
	Image *course.Image   `json:"image,omitempty"`
	File  *course.File    `json:"file,omitempty"`
}

func NewText(ownerID uint, title, body string) Item {
	return Item{Type: course.ItemText, Text: &course.Text{ItemBase: course.ItemBase{OwnerID: ownerID, Title: title}, Body: body}}
}

func NewVideo(ownerID uint, title, url string) Item {
	return Item{Type: course.ItemVideo, Video: &course.Video{ItemBase: course.ItemBase{OwnerID: ownerID, Title: title}, URL: url}}
}

func NewImage(ownerID uint, title, key string) Item {
	return Item{Type: course.ItemImage, Image: &course.Image{ItemBase: course.ItemBase{OwnerID: ownerID, Title: title}, File: key}}
}

func NewFile(ownerID uint, title, key string) Item {
	return Item{Type: course.ItemFile, File: &course.File{ItemBase: course.ItemBase{OwnerID: ownerID, Title: title}, File: key}}
}

// Empty returns an Item of type t with a zero payload, ready to be loaded into.
func Empty(t course.ItemType) (Item, error) {
	switch t {
	case course.ItemText:
		return Item{Type: t, Text: &course.Text{}}, nil
	case course.ItemVideo:
		return Item{Type: t, Video: &course.Video{}}, nil
	case course.ItemImage:
		return Item{Type: t, Image: &course.Image{}}, nil
	case course.ItemFile:
		return Item{Type: t, File: &course.File{}}, nil
	default:
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownItemType, t)
	}
}

// Validate checks that exactly the payload named by Type is present.
func (i Item) Validate() error {
	set := 0
	for _, p := range []bool{i.Text != nil, i.Video != nil, i.Image != nil, i.File != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return ErrInvalidItem
	}
	if _, err := i.record(); err != nil {
		return err
	}
	return nil
}

// record returns the gorm model pointer for the active payload.
func (i Item) record() (interface{}, error) {
	switch i.Type {
	case course.ItemText:
		if i.Text != nil {
			return i.Text, nil
		}
	case course.ItemVideo:
		if i.Video != nil {
			return i.Video, nil
		}
	case course.ItemImage:
		if i.Image != nil {
			return i.Image, nil
		}
	case course.ItemFile:
		if i.File != nil {
			return i.File, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, i.Type)
	}
	return nil, ErrInvalidItem
}

// Base returns the shared fields of the active payload.
func (i Item) Base() *course.ItemBase {
	switch {
	case i.Type == course.ItemText && i.Text != nil:
		return &i.Text.ItemBase
	case i.Type == course.ItemVideo && i.Video != nil:
		return &i.Video.ItemBase
	case i.Type == course.ItemImage && i.Image != nil:
		return &i.Image.ItemBase
	case i.Type == course.ItemFile && i.File != nil:
		return &i.File.ItemBase
	}
	return nil
}

// StoredKey is the storage key the item holds, empty for text and video.
func (i Item) StoredKey() string {
	switch i.Type {
	case course.ItemImage:
		if i.Image != nil {
			return i.Image.File
		}
	case course.ItemFile:
		if i.File != nil {
			return i.File.File
		}
	}
	return ""
}

// LoadItem fetches item id of type t. A non-zero ownerID restricts the lookup to that owner.
func LoadItem(db *gorm.DB, t course.ItemType, id, ownerID uint) (Item, error) {
	item, err := Empty(t)
	if err != nil {
		return Item{}, err
	}
	rec, _ := item.record()

	q := db.Where("id = ?", id)
	if ownerID != 0 {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.First(rec).Error; err != nil {
		return Item{}, err
	}
	return item, nil
}

// SaveItem writes the payload of an existing item.
func SaveItem(db *gorm.DB, item Item) error {
	rec, err := item.record()
	if err != nil {
		return err
	}
	return db.Save(rec).Error
}
