package superAdminValidator

import (
	"strings"

	"educa/middleware"
	"educa/models"
	"educa/validators"
	authValidator "educa/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterInstructor validates an instructor account created by an admin; email is required.
func RegisterInstructor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, resp := authValidator.ParseRegister(c)
		if reqData == nil {
			return resp
		}
		if reqData.Email == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"email": "Email is required!"})
		}
		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// List validates ?page=&limit=&role= of the user listing.
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, resp := authValidator.ParsePage(c)
		if page == nil {
			return resp
		}
		role := strings.ToUpper(strings.TrimSpace(c.Query("role")))
		switch role {
		case "", models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{"role": "Role must be STUDENT, INSTRUCTOR or ADMIN!"})
		}
		c.Locals("validatedPage", page)
		c.Locals("roleFilter", role)
		return c.Next()
	}
}

// UserID validates the :user_id param
func UserID() fiber.Handler {
	return validators.ID("user_id", "targetUserID", "User ID")
}

type SubjectRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Slug  string `json:"slug" validate:"omitempty,max=200,slug"`
}

// CreateSubject validates a new catalogue subject
func CreateSubject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubjectRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Slug = strings.TrimSpace(reqData.Slug)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedSubject", reqData)
		return c.Next()
	}
}
