package controllers

import (
	"context"
	"errors"
	"time"

	"educa/database"
	"educa/logger"
	"educa/middleware"
	courseModels "educa/models/course"
	"educa/services"
	"educa/services/contents"
	"educa/services/ordering"
	courseValidator "educa/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errForeignModule = errors.New("module does not belong to this course")

// CreateModule appends a module to a course of the logged-in instructor
func CreateModule(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if _, err := ownedCourse(db, courseID, userId); err != nil {
		return notFoundOr500(c, err, "Course")
	}

	// a nil Order is filled in by the model's create hook
	module := courseModels.Module{
		CourseID:    courseID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Order:       reqData.Order,
	}
	if err := db.Create(&module).Error; err != nil {
		logger.Log.Error("Failed to create module", "course_id", courseID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// UpdateModules applies the module formset of a course: rows without id are added, rows with
// delete set are removed together with their contents, the rest are edited.
func UpdateModules(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedModules").(*courseValidator.ModuleFormset)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if _, err := ownedCourse(db, courseID, userId); err != nil {
		return notFoundOr500(c, err, "Course")
	}

	var removed []uint
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, row := range reqData.Modules {
			if row.ID == 0 {
				module := courseModels.Module{CourseID: courseID, Title: row.Title, Description: row.Description}
				if err := tx.Create(&module).Error; err != nil {
					return err
				}
				continue
			}

			var module courseModels.Module
			if err := tx.Where("id = ? AND course_id = ?", row.ID, courseID).First(&module).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errForeignModule
				}
				return err
			}
			if row.Delete {
				removed = append(removed, module.ID)
				continue
			}

			updates := map[string]interface{}{"title": row.Title, "description": row.Description}
			if err := tx.Model(&module).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errForeignModule) {
		return middleware.ValidationErrorResponse(c, map[string]string{"modules": "Module not found in this course!"})
	}
	if err != nil {
		logger.Log.Error("Failed to save modules", "course_id", courseID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save modules!", nil)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), time.Minute)
	defer cancel()
	for _, moduleID := range removed {
		if err := deleteModule(ctx, db, moduleID); err != nil {
			logger.Log.Error("Failed to delete module", "module_id", moduleID, "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
		}
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ?", courseID).Order(ordering.Column + " asc, id asc").Find(&modules).Error; err != nil {
		return notFoundOr500(c, err, "Modules")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules saved successfully!", modules)
}

// deleteModule deletes the module's contents one by one, then the module.
func deleteModule(ctx context.Context, db *gorm.DB, moduleID uint) error {
	if err := contents.DeleteForModule(ctx, db, services.App.Store, moduleID); err != nil {
		return err
	}
	return db.Delete(&courseModels.Module{}, moduleID).Error
}

// ContentView is a content entry as shown to its instructor.
type ContentView struct {
	contents.Entry
	FileURL string `json:"file_url,omitempty"`
}

func contentViews(entries []contents.Entry) []ContentView {
	views := make([]ContentView, len(entries))
	for i, e := range entries {
		views[i] = ContentView{Entry: e}
		if key := e.Item.StoredKey(); key != "" && services.App.Store != nil {
			views[i].FileURL = services.App.Store.URL(key)
		}
	}
	return views
}

// ModuleContentList shows a module of the logged-in instructor with its contents in order
func ModuleContentList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	moduleID := c.Locals("moduleID").(uint)

	db := database.Database.Db
	module, err := ownedModule(db, moduleID, userId)
	if err != nil {
		return notFoundOr500(c, err, "Module")
	}

	entries, err := contents.ListForModule(db, module.ID)
	if err != nil {
		logger.Log.Error("Failed to list contents", "module_id", module.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contents!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully.", fiber.Map{
		"module":   module,
		"contents": contentViews(entries),
	})
}
