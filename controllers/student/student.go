package studentController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"educa/database"
	"educa/logger"
	"educa/middleware"
	"educa/models"
	courseModels "educa/models/course"
	"educa/services"
	"educa/services/catalog"
	"educa/services/contents"
	studentValidator "educa/validators/student"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// enroll inserts the (user, course) enrollment unless it already exists and reports whether a
// row was added. Concurrent calls for the same pair meet at the unique index, not in a lookup.
func enroll(db *gorm.DB, userID, courseID uint) (bool, error) {
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&courseModels.Enrollment{UserID: userID, CourseID: courseID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// EnrollCourse adds the student to a course. Enrolling twice is not an error.
func EnrollCourse(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedEnroll").(*studentValidator.EnrollRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var course courseModels.Course
	if err := db.First(&course, reqData.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll!", nil)
	}

	created, err := enroll(db, userId, course.ID)
	if err != nil {
		logger.Log.Error("Failed to enroll student", "user_id", userId, "course_id", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll!", nil)
	}

	if created {
		var user models.User
		if err := db.First(&user, userId).Error; err == nil && user.Email != "" && services.App.Mailer != nil {
			go func(name, email, title string) {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := services.App.Mailer.SendEnrollment(ctx, name, email, title); err != nil {
					logger.Log.Warn("Failed to send enrollment mail", "to", email, "error", err)
				}
			}(user.Name, user.Email, course.Title)
		}
		logger.Log.Info("Student enrolled", "user_id", userId, "course_id", course.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled successfully.", fiber.Map{
		"course_id":  course.ID,
		"course_url": fmt.Sprintf("/students/course/%d", course.ID),
	})
}

// StudentCourseList lists the courses the student is enrolled in
func StudentCourseList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courses, err := catalog.EnrolledCourses(database.Database.Db, userId)
	if err != nil {
		logger.Log.Error("Failed to list enrolled courses", "user_id", userId, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

// ContentView is a content entry as a student sees it.
type ContentView struct {
	contents.Entry
	FileURL   string `json:"file_url,omitempty"`
	EmbedHTML string `json:"embed_html,omitempty"`
}

func studentViews(ctx context.Context, entries []contents.Entry) []ContentView {
	views := make([]ContentView, len(entries))
	for i, e := range entries {
		views[i] = ContentView{Entry: e}
		if key := e.Item.StoredKey(); key != "" && services.App.Store != nil {
			views[i].FileURL = services.App.Store.URL(key)
		}
		if e.Item.Video != nil && services.App.Embed != nil {
			res, err := services.App.Embed.Resolve(ctx, e.Item.Video.URL)
			if err != nil {
				logger.Log.Debug("No embed for video", "url", e.Item.Video.URL, "error", err)
				continue
			}
			views[i].EmbedHTML = res.HTML
		}
	}
	return views
}

// StudentCourseDetail shows an enrolled course: its modules and the contents of the selected
// module, or of the first module when none is selected
func StudentCourseDetail(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)
	moduleID, _ := c.Locals("moduleID").(uint)

	db := database.Database.Db
	var enrolled int64
	if err := db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND course_id = ?", userId, courseID).Count(&enrolled).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}
	if enrolled == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course, err := catalog.CourseWithModules(db, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	var module *courseModels.Module
	for i := range course.Modules {
		if moduleID == 0 || course.Modules[i].ID == moduleID {
			module = &course.Modules[i]
			break
		}
	}
	if moduleID != 0 && module == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	views := []ContentView{}
	if module != nil {
		entries, err := contents.ListForModule(db, module.ID)
		if err != nil {
			logger.Log.Error("Failed to list contents", "module_id", module.ID, "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contents!", nil)
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
		defer cancel()
		views = studentViews(ctx, entries)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", fiber.Map{
		"course":   course,
		"module":   module,
		"contents": views,
	})
}
