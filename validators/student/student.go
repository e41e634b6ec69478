package studentValidator

import (
	"educa/middleware"
	"educa/validators"

	"github.com/gofiber/fiber/v2"
)

type EnrollRequest struct {
	CourseID uint `json:"course_id" form:"course_id" validate:"required,gt=0"`
}

// Enroll validates the enrollment form
func Enroll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(EnrollRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedEnroll", reqData)
		return c.Next()
	}
}

// CourseDetail validates :id and the optional :module_id of the student course view
func CourseDetail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		var moduleID uint
		if c.Params("module_id") != "" {
			if moduleID, ok = validators.ParamID(c, "module_id"); !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
			}
		}
		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		return c.Next()
	}
}
