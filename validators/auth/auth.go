package authValidator

import (
	"strings"

	"educa/middleware"
	"educa/validators"

	"github.com/gofiber/fiber/v2"
)

// RegisterRequest is a new account: students sign themselves up, instructors are added by an admin.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150,alphanum"`
	Name     string `json:"name" validate:"max=150"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PageRequest is the ?page=&limit= query of list endpoints.
type PageRequest struct {
	Page  int `query:"page" json:"page" validate:"gte=1"`
	Limit int `query:"limit" json:"limit" validate:"gte=1,max=100"`
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseRegister reads and validates a RegisterRequest. A nil request means the error response
// has already been written.
func ParseRegister(c *fiber.Ctx) (*RegisterRequest, error) {
	reqData := new(RegisterRequest)
	if err := c.BodyParser(reqData); err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	reqData.Username = strings.TrimSpace(reqData.Username)
	reqData.Name = strings.TrimSpace(reqData.Name)
	reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

	if errors := validators.Struct(reqData); len(errors) > 0 {
		return nil, middleware.ValidationErrorResponse(c, errors)
	}
	return reqData, nil
}

// Register validator middleware
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, resp := ParseRegister(c)
		if reqData == nil {
			return resp
		}
		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
		}
		reqData.Username = strings.TrimSpace(reqData.Username)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

// ParsePage reads ?page=&limit=, defaulting to the first 20 rows.
func ParsePage(c *fiber.Ctx) (*PageRequest, error) {
	reqData := &PageRequest{Page: 1, Limit: 20}
	if err := c.QueryParser(reqData); err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query!", nil)
	}
	if errors := validators.Struct(reqData); len(errors) > 0 {
		return nil, middleware.ValidationErrorResponse(c, errors)
	}
	return reqData, nil
}

// LoginHistoryList validator middleware
func LoginHistoryList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, resp := ParsePage(c)
		if reqData == nil {
			return resp
		}
		c.Locals("validatedPage", reqData)
		return c.Next()
	}
}
