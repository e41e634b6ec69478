package courseValidator

import (
	"mime/multipart"
	"strings"

	"educa/logger"
	"educa/middleware"
	"educa/models/course"
	"educa/services/contents"
	"educa/services/ordering"
	"educa/validators"

	"github.com/gofiber/fiber/v2"
)

// ContentItem is a validated create or update of one content item.
type ContentItem struct {
	ModuleID uint
	ItemType course.ItemType
	ItemID   uint // zero when creating
	Title    string
	Body     string
	URL      string
	Upload   *multipart.FileHeader
}

type contentForm struct {
	Title   string `json:"title" form:"title" validate:"required,max=250"`
	Content string `json:"content" form:"content"`
	URL     string `json:"url" form:"url"`
}

// SaveContentItem validates /manage/module/:module_id/content/:model_name[/:id]. Text takes a
// content field, video a url, image and file a multipart upload named file.
func SaveContentItem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		moduleID, ok := validators.ParamID(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}
		itemType, err := contents.ParseItemType(c.Params("model_name"))
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown content type!", nil)
		}
		var itemID uint
		if c.Params("id") != "" {
			if itemID, ok = validators.ParamID(c, "id"); !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid item ID!", nil)
			}
		}

		form := new(contentForm)
		if err := c.BodyParser(form); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		form.Title = strings.TrimSpace(form.Title)
		form.URL = strings.TrimSpace(form.URL)

		errs := validators.Struct(form)
		item := &ContentItem{
			ModuleID: moduleID,
			ItemType: itemType,
			ItemID:   itemID,
			Title:    form.Title,
			Body:     form.Content,
			URL:      form.URL,
		}

		switch itemType {
		case course.ItemText:
			if strings.TrimSpace(form.Content) == "" {
				errs["content"] = "Content is required!"
			}
		case course.ItemVideo:
			if !validators.Var(form.URL, "required,http_url") {
				errs["url"] = "Invalid URL!"
			}
		case course.ItemImage, course.ItemFile:
			upload, err := c.FormFile("file")
			switch {
			case err == nil:
				item.Upload = upload
			case itemID == 0:
				errs["file"] = "File is required!"
			default:
				logger.Log.Debug("No replacement upload on item update", "item_id", itemID, "error", err)
			}
		}

		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedItem", item)
		return c.Next()
	}
}

// ContentID validates the :id param of content routes
func ContentID() fiber.Handler {
	return validators.ID("id", "contentID", "Content ID")
}

// Reorder parses a {"id": position} body. A malformed body is rejected here, before any
// handler touches the database.
func Reorder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		positions, err := ordering.ParsePayload(c.Body())
		if err != nil {
			logger.Log.Debug("Rejected reorder payload", "path", c.Path(), "error", err)
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid order payload!", nil)
		}
		c.Locals("positions", positions)
		return c.Next()
	}
}
