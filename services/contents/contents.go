package contents

import (
	"context"
	"errors"
	"fmt"

	"educa/logger"
	"educa/models/course"
	"educa/services/ordering"
	"educa/services/storage"

	"gorm.io/gorm"
)

// Entry is a content wrapper together with its resolved item.
type Entry struct {
	Content course.Content `json:"content"`
	Item    Item           `json:"item"`
}

// Create stores item and a Content wrapping it at the end of the module.
func Create(db *gorm.DB, moduleID uint, item Item) (*course.Content, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	rec, _ := item.record()

	content := course.Content{ModuleID: moduleID, ItemType: item.Type}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("create %s item: %w", item.Type, err)
		}
		content.ItemID = item.Base().ID
		if err := tx.Create(&content).Error; err != nil {
			return fmt.Errorf("create content: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// Load resolves the item a content points at.
func Load(db *gorm.DB, content course.Content) (Item, error) {
	return LoadItem(db, content.ItemType, content.ItemID, 0)
}

// Update writes a new payload for the item behind content. The item keeps its id and type.
func Update(db *gorm.DB, content course.Content, item Item) error {
	if item.Type != content.ItemType {
		return fmt.Errorf("%w: %s to %s", ErrTypeChange, content.ItemType, item.Type)
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if base := item.Base(); base.ID != content.ItemID {
		return fmt.Errorf("%w: item %d is not behind content %d", ErrInvalidItem, base.ID, content.ID)
	}
	return SaveItem(db, item)
}

// ListForModule returns the module's contents in position order with their items.
func ListForModule(db *gorm.DB, moduleID uint) ([]Entry, error) {
	var rows []course.Content
	if err := db.Where("module_id = ?", moduleID).Order(ordering.Column + " asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		item, err := Load(db, row)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Log.Warn("Content points at a missing item", "content_id", row.ID, "item_type", row.ItemType, "item_id", row.ItemID)
				continue
			}
			return nil, err
		}
		entries = append(entries, Entry{Content: row, Item: item})
	}
	return entries, nil
}

// Delete removes the content's item, releasing any stored file, and then the content itself.
// Both rows go in one transaction; a failed file release aborts it and nothing is deleted.
// The file is released before commit, so a failing commit can leave an item row whose file
// is already gone.
func Delete(ctx context.Context, db *gorm.DB, store storage.Store, content course.Content) error {
	return db.Transaction(func(tx *gorm.DB) error {
		item, err := Load(tx, content)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			logger.Log.Warn("Deleting content whose item is already gone", "content_id", content.ID)
		case err != nil:
			return fmt.Errorf("load item: %w", err)
		default:
			if err := deleteItem(ctx, tx, store, item); err != nil {
				return err
			}
		}

		res := tx.Unscoped().Delete(&course.Content{}, content.ID)
		if res.Error != nil {
			return fmt.Errorf("delete content %d: %w", content.ID, res.Error)
		}
		return nil
	})
}

// deleteItem is the per-type delete: drop the row, then release the stored object if any.
func deleteItem(ctx context.Context, tx *gorm.DB, store storage.Store, item Item) error {
	rec, err := item.record()
	if err != nil {
		return err
	}
	if err := tx.Unscoped().Delete(rec).Error; err != nil {
		return fmt.Errorf("delete %s item: %w", item.Type, err)
	}

	key := item.StoredKey()
	if key == "" {
		return nil
	}
	if store == nil {
		return fmt.Errorf("release %s: no media store configured", key)
	}
	if err := store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// DeleteForModule deletes every content of a module, one content at a time.
func DeleteForModule(ctx context.Context, db *gorm.DB, store storage.Store, moduleID uint) error {
	var rows []course.Content
	if err := db.Where("module_id = ?", moduleID).Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if err := Delete(ctx, db, store, row); err != nil {
			return fmt.Errorf("content %d: %w", row.ID, err)
		}
	}
	return nil
}
