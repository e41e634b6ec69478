package courseValidator

import (
	"strings"

	"educa/middleware"
	"educa/validators"

	"github.com/gofiber/fiber/v2"
)

// ModuleRequest is a single module. Order is optional; when absent the module goes last.
type ModuleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Order       *int   `json:"order" validate:"omitempty,gte=0"`
}

// ModuleFormRow is one row of the module formset. ID 0 adds a module, Delete removes one.
// Positions are not part of the row: new modules go last and existing ones keep their place
// until a reorder.
type ModuleFormRow struct {
	ID          uint   `json:"id"`
	Title       string `json:"title" validate:"required_without=Delete,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Delete      bool   `json:"delete"`
}

// ModuleFormset replaces the modules of a course in one request.
type ModuleFormset struct {
	Modules []ModuleFormRow `json:"modules" validate:"max=100,dive"`
}

// CreateModule validates a module appended to course :id
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(ModuleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// UpdateModules validates the module formset of course :id
func UpdateModules() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := validators.ParamID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(ModuleFormset)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		seen := make(map[uint]bool)
		for i := range reqData.Modules {
			row := &reqData.Modules[i]
			row.Title = strings.TrimSpace(row.Title)
			row.Description = strings.TrimSpace(row.Description)
			if row.ID != 0 {
				if seen[row.ID] {
					errors["modules"] = "Each module may appear only once!"
				}
				seen[row.ID] = true
			} else if row.Delete {
				errors["modules"] = "Only saved modules can be deleted!"
			}
		}
		for field, msg := range validators.Struct(reqData) {
			errors[field] = msg
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedModules", reqData)
		return c.Next()
	}
}

// ModuleID validates the :module_id param
func ModuleID() fiber.Handler {
	return validators.ID("module_id", "moduleID", "Module ID")
}
