package controllers

import (
	"time"

	"educa/database"
	"educa/logger"
	"educa/middleware"
	courseModels "educa/models/course"
	"educa/services"
	"educa/services/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// CourseList is the public catalogue: the subject sidebar and the courses, optionally of one subject
func CourseList(c *fiber.Ctx) error {
	db := database.Database.Db
	subjectSlug, _ := c.Locals("subjectSlug").(string)

	subjects, err := services.App.Catalog.Subjects(c.UserContext(), db)
	if err != nil {
		logger.Log.Error("Failed to load subjects", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subjects!", nil)
	}

	var subject *courseModels.Subject
	if subjectSlug != "" {
		subject = new(courseModels.Subject)
		if err := db.Where("slug = ?", subjectSlug).First(subject).Error; err != nil {
			return notFoundOr500(c, err, "Subject")
		}
	}

	courses, err := catalog.Courses(db, subjectSlug)
	if err != nil {
		logger.Log.Error("Failed to load courses", "subject", subjectSlug, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", fiber.Map{
		"subjects": subjects,
		"subject":  subject,
		"courses":  courses,
	})
}

// CourseDetail shows a public course with its modules in order
func CourseDetail(c *fiber.Ctx) error {
	slug := c.Locals("courseSlug").(string)

	course, err := catalog.CourseBySlug(database.Database.Db, slug)
	if err != nil {
		return notFoundOr500(c, err, "Course")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", course)
}

// CourseStats reports enrollments of an owned course, in total and for the current week and month
func CourseStats(c *fiber.Ctx) error {
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

	t := now.New(time.Now())
	var total, thisWeek, thisMonth, modules int64
	base := func() *gorm.DB { return db.Model(&courseModels.Enrollment{}).Where("course_id = ?", course.ID) }
	if err := base().Count(&total).Error; err != nil {
		return notFoundOr500(c, err, "Enrollments")
	}
	if err := base().Where("created_at >= ?", t.BeginningOfWeek()).Count(&thisWeek).Error; err != nil {
		return notFoundOr500(c, err, "Enrollments")
	}
	if err := base().Where("created_at >= ?", t.BeginningOfMonth()).Count(&thisMonth).Error; err != nil {
		return notFoundOr500(c, err, "Enrollments")
	}
	if err := db.Model(&courseModels.Module{}).Where("course_id = ?", course.ID).Count(&modules).Error; err != nil {
		return notFoundOr500(c, err, "Modules")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course stats fetched successfully.", fiber.Map{
		"course_id":              course.ID,
		"total_modules":          modules,
		"total_students":         total,
		"enrollments_this_week":  thisWeek,
		"enrollments_this_month": thisMonth,
		"week_starts":            t.BeginningOfWeek(),
		"month_starts":           t.BeginningOfMonth(),
	})
}
