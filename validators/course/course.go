package courseValidator

import (
	"strings"

	"educa/middleware"
	"educa/validators"

	"github.com/gofiber/fiber/v2"
)

// CourseRequest is the body of course create and update.
type CourseRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,min=3,max=200"`
	Slug      string `json:"slug" validate:"omitempty,max=200,slug"`
	Overview  string `json:"overview" validate:"max=10000"`
}

func parseCourse(c *fiber.Ctx) (*CourseRequest, error) {
	reqData := new(CourseRequest)
	if err := c.BodyParser(reqData); err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	reqData.Title = strings.TrimSpace(reqData.Title)
	reqData.Slug = strings.TrimSpace(reqData.Slug)
	reqData.Overview = strings.TrimSpace(reqData.Overview)

	if errors := validators.Struct(reqData); len(errors) > 0 {
		return nil, middleware.ValidationErrorResponse(c, errors)
	}
	return reqData, nil
}

// CreateCourse validates a new course
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, resp := parseCourse(c)
		if reqData == nil {
			return resp
		}
		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validates the course id and the replacement fields
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		reqData, resp := parseCourse(c)
		if reqData == nil {
			return resp
		}
		c.Locals("courseID", courseID)
		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// CourseID validates the :id param of course routes
func CourseID() fiber.Handler {
	return validators.ID("id", "courseID", "Course ID")
}

// CourseList validates the optional ?subject= filter
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := strings.TrimSpace(c.Query("subject"))
		if subject != "" && !validators.Var(subject, "slug") {
			return middleware.ValidationErrorResponse(c, map[string]string{"subject": "Invalid subject!"})
		}
		c.Locals("subjectSlug", subject)
		return c.Next()
	}
}

// CourseSlug validates the :slug param of the public course detail
func CourseSlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := strings.TrimSpace(c.Params("slug"))
		if slug == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course slug is required!", nil)
		}
		c.Locals("courseSlug", slug)
		return c.Next()
	}
}
