package superAdminController

import (
	"errors"

	authController "educa/controllers/auth"
	"educa/database"
	"educa/logger"
	"educa/middleware"
	"educa/models"
	courseModels "educa/models/course"
	"educa/utils"
	authValidator "educa/validators/auth"
	superAdminValidator "educa/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RegisterInstructor creates an instructor account with the course permissions
func RegisterInstructor(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := authController.CreateUser(database.Database.Db, reqData, models.RoleInstructor)
	if errors.Is(err, authController.ErrUsernameTaken) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Username is already registered!", nil)
	}
	if err != nil {
		logger.Log.Error("Error registering instructor", "username", reqData.Username, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register instructor!", nil)
	}

	logger.Log.Info("Instructor registered", "user_id", user.ID, "by", c.Locals("userId"))
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Instructor registered successfully.", user)
}

func UserList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPage").(*authValidator.PageRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	role, _ := c.Locals("roleFilter").(string)

	q := database.Database.Db.Model(&models.User{}).Where("is_deleted = ?", false)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	q = q.Session(&gorm.Session{})

	var users []models.User
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}
	if err := q.Order("id asc").Offset(reqData.Offset()).Limit(reqData.Limit).Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User list fetched successfully.", fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// UserPermissions lists the active permission codenames of a user
func UserPermissions(c *fiber.Ctx) error {
	targetID := c.Locals("targetUserID").(uint)

	db := database.Database.Db
	if err := db.First(&models.User{}, targetID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var permissions []models.Permission
	if err := db.Where("user_id = ? AND is_deleted = ?", targetID, false).Order("permission asc").Find(&permissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch permissions!", nil)
	}

	codenames := make([]string, len(permissions))
	for i, p := range permissions {
		codenames[i] = p.Permission
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permissions fetched successfully.", codenames)
}

// CreateSubject adds a catalogue subject. The cached subject sidebar picks it up once it expires.
func CreateSubject(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSubject").(*superAdminValidator.SubjectRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	slug := reqData.Slug
	if slug == "" {
		var err error
		if slug, err = utils.UniqueSlug(db, &courseModels.Subject{}, reqData.Title); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create subject!", nil)
		}
	} else if db.Unscoped().Where("slug = ?", slug).First(&courseModels.Subject{}).Error == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Slug is already taken!", nil)
	}

	subject := courseModels.Subject{Title: reqData.Title, Slug: slug}
	if err := db.Create(&subject).Error; err != nil {
		logger.Log.Error("Failed to create subject", "title", reqData.Title, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create subject!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Subject created successfully!", subject)
}
