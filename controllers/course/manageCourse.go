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
	"educa/utils"
	courseValidator "educa/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ownedCourse loads a course only when userID owns it.
func ownedCourse(db *gorm.DB, courseID, userID uint) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := db.Where("id = ? AND owner_id = ?", courseID, userID).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// ownedModule loads a module only when it sits in a course userID owns.
func ownedModule(db *gorm.DB, moduleID, userID uint) (*courseModels.Module, error) {
	var module courseModels.Module
	err := db.Where("id = ? AND course_id IN (?)", moduleID, courseModels.OwnedCourseIDs(db, userID)).
		First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func notFoundOr500(c *fiber.Ctx, err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, what+" not found!", nil)
	}
	logger.Log.Error("Lookup failed", "what", what, "error", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load "+what+"!", nil)
}

// ManageCourseList lists the courses of the logged-in instructor
func ManageCourseList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var courses []courseModels.Course
	if err := database.Database.Db.Preload("Subject").Where("owner_id = ?", userId).Order("created_at desc").Find(&courses).Error; err != nil {
		logger.Log.Error("Failed to list courses", "user_id", userId, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

// CreateCourse creates a course owned by the logged-in instructor
func CreateCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if err := db.First(&courseModels.Subject{}, reqData.SubjectID).Error; err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"subject_id": "Subject not found!"})
	}

	slug := reqData.Slug
	if slug == "" {
		var err error
		if slug, err = utils.UniqueSlug(db, &courseModels.Course{}, reqData.Title); err != nil {
			logger.Log.Error("Failed to build course slug", "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
		}
	} else if db.Unscoped().Where("slug = ?", slug).First(&courseModels.Course{}).Error == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Slug is already taken!", nil)
	}

	course := courseModels.Course{
		OwnerID:   userId,
		SubjectID: reqData.SubjectID,
		Title:     reqData.Title,
		Slug:      slug,
		Overview:  reqData.Overview,
	}
	if err := db.Create(&course).Error; err != nil {
		logger.Log.Error("Failed to create course", "user_id", userId, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	logger.Log.Info("Course created", "course_id", course.ID, "owner_id", userId)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse edits a course of the logged-in instructor
func UpdateCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	course, err := ownedCourse(db, courseID, userId)
	if err != nil {
		return notFoundOr500(c, err, "Course")
	}
	if err := db.First(&courseModels.Subject{}, reqData.SubjectID).Error; err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"subject_id": "Subject not found!"})
	}
	if reqData.Slug != "" && reqData.Slug != course.Slug {
		if db.Unscoped().Where("slug = ? AND id <> ?", reqData.Slug, course.ID).First(&courseModels.Course{}).Error == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Slug is already taken!", nil)
		}
		course.Slug = reqData.Slug
	}

	course.SubjectID = reqData.SubjectID
	course.Subject = nil
	course.Title = reqData.Title
	course.Overview = reqData.Overview
	if err := db.Save(course).Error; err != nil {
		logger.Log.Error("Failed to update course", "course_id", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse removes a course with its modules, their contents and its enrollments
func DeleteCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db
	course, err := ownedCourse(db, courseID, userId)
	if err != nil {
		return notFoundOr500(c, err, "Course")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), time.Minute)
	defer cancel()

	var modules []courseModels.Module
	if err := db.Where("course_id = ?", course.ID).Find(&modules).Error; err != nil {
		return notFoundOr500(c, err, "Modules")
	}
	for _, module := range modules {
		if err := contents.DeleteForModule(ctx, db, services.App.Store, module.ID); err != nil {
			logger.Log.Error("Failed to delete module contents", "module_id", module.ID, "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course contents!", nil)
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&courseModels.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&courseModels.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		logger.Log.Error("Failed to delete course", "course_id", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	logger.Log.Info("Course deleted", "course_id", course.ID, "owner_id", userId)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// ModuleOrder saves the module positions posted by the drag and drop list
func ModuleOrder(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	positions := c.Locals("positions").(map[uint]int)

	db := database.Database.Db
	affected, err := ordering.Reorder(db, &courseModels.Module{}, courseModels.ModuleOwnership(db, userId), positions)
	if err != nil {
		logger.Log.Error("Module reorder failed", "user_id", userId, "updated", affected, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save order!", nil)
	}

	logger.Log.Debug("Modules reordered", "user_id", userId, "requested", len(positions), "updated", affected)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order saved!", fiber.Map{"saved": "OK"})
}

// ContentOrder saves the content positions inside modules the caller owns
func ContentOrder(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	positions := c.Locals("positions").(map[uint]int)

	db := database.Database.Db
	affected, err := ordering.Reorder(db, &courseModels.Content{}, courseModels.ContentOwnership(db, userId), positions)
	if err != nil {
		logger.Log.Error("Content reorder failed", "user_id", userId, "updated", affected, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save order!", nil)
	}

	logger.Log.Debug("Contents reordered", "user_id", userId, "requested", len(positions), "updated", affected)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order saved!", fiber.Map{"saved": "OK"})
}
