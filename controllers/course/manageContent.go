package controllers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"educa/database"
	"educa/logger"
	"educa/middleware"
	courseModels "educa/models/course"
	"educa/services"
	"educa/services/contents"
	"educa/services/storage"
	courseValidator "educa/validators/course"

	"github.com/gofiber/fiber/v2"
)

var errNotAnImage = errors.New("upload is not an image")

// storeUpload saves an image or file upload and returns its storage key.
func storeUpload(ctx context.Context, itemType courseModels.ItemType, upload *multipart.FileHeader) (string, error) {
	if services.App.Store == nil {
		return "", errors.New("no media store configured")
	}
	src, err := upload.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mime, r, err := storage.Detect(src)
	if err != nil {
		return "", err
	}
	if itemType == courseModels.ItemImage && !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s", errNotAnImage, mime)
	}

	key := storage.NewKey(string(itemType)+"s", upload.Filename)
	if err := services.App.Store.Save(ctx, key, r); err != nil {
		return "", err
	}
	return key, nil
}

// releaseUpload drops a stored object that no row references.
func releaseUpload(ctx context.Context, key string) {
	if key == "" || services.App.Store == nil {
		return
	}
	if err := services.App.Store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Log.Warn("Failed to release unreferenced upload", "key", key, "error", err)
	}
}

func newItem(req *courseValidator.ContentItem, ownerID uint, key string) contents.Item {
	switch req.ItemType {
	case courseModels.ItemVideo:
		return contents.NewVideo(ownerID, req.Title, req.URL)
	case courseModels.ItemImage:
		return contents.NewImage(ownerID, req.Title, key)
	case courseModels.ItemFile:
		return contents.NewFile(ownerID, req.Title, key)
	default:
		return contents.NewText(ownerID, req.Title, req.Body)
	}
}

// applyItem copies the request onto a loaded item and returns the key it replaced, if any.
func applyItem(item *contents.Item, req *courseValidator.ContentItem, key string) (old string) {
	item.Base().Title = req.Title
	switch item.Type {
	case courseModels.ItemText:
		item.Text.Body = req.Body
	case courseModels.ItemVideo:
		item.Video.URL = req.URL
	case courseModels.ItemImage:
		if key != "" {
			old, item.Image.File = item.Image.File, key
		}
	case courseModels.ItemFile:
		if key != "" {
			old, item.File.File = item.File.File, key
		}
	}
	return old
}

// SaveContent creates a content item in a module, or edits the item :id when given
func SaveContent(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	req, ok := c.Locals("validatedItem").(*courseValidator.ContentItem)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	module, err := ownedModule(db, req.ModuleID, userId)
	if err != nil {
		return notFoundOr500(c, err, "Module")
	}

	var existing courseModels.Content
	var item contents.Item
	if req.ItemID != 0 {
		if err := db.Where("module_id = ? AND item_type = ? AND item_id = ?", module.ID, req.ItemType, req.ItemID).First(&existing).Error; err != nil {
			return notFoundOr500(c, err, "Content")
		}
		if item, err = contents.LoadItem(db, req.ItemType, req.ItemID, userId); err != nil {
			return notFoundOr500(c, err, "Item")
		}
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Minute)
	defer cancel()

	var key string
	if req.Upload != nil {
		if key, err = storeUpload(ctx, req.ItemType, req.Upload); err != nil {
			if errors.Is(err, errNotAnImage) {
				return middleware.ValidationErrorResponse(c, map[string]string{"file": "Upload a valid image!"})
			}
			logger.Log.Error("Failed to store upload", "module_id", module.ID, "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
		}
	}

	if req.ItemID == 0 {
		content, err := contents.Create(db, module.ID, newItem(req, userId, key))
		if err != nil {
			releaseUpload(ctx, key)
			logger.Log.Error("Failed to create content", "module_id", module.ID, "type", req.ItemType, "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content!", nil)
		}
		logger.Log.Info("Content created", "content_id", content.ID, "module_id", module.ID, "type", req.ItemType)
		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content created successfully!", content)
	}

	replaced := applyItem(&item, req, key)
	if err := contents.Update(db, existing, item); err != nil {
		releaseUpload(ctx, key)
		logger.Log.Error("Failed to update content", "content_id", existing.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update content!", nil)
	}
	releaseUpload(ctx, replaced)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content updated successfully!", item)
}

// DeleteContent deletes a content with its item and redirects to the module's content list
func DeleteContent(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	contentID := c.Locals("contentID").(uint)

	db := database.Database.Db
	var content courseModels.Content
	err := db.Where("id = ? AND module_id IN (?)", contentID, courseModels.OwnedModuleIDs(db, userId)).First(&content).Error
	if err != nil {
		return notFoundOr500(c, err, "Content")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), time.Minute)
	defer cancel()
	if err := contents.Delete(ctx, db, services.App.Store, content); err != nil {
		logger.Log.Error("Failed to delete content", "content_id", content.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content!", nil)
	}

	logger.Log.Info("Content deleted", "content_id", content.ID, "module_id", content.ModuleID)
	return c.Redirect(fmt.Sprintf("/manage/module/%d", content.ModuleID), fiber.StatusFound)
}
