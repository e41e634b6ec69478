package authController

import (
	"errors"
	"time"

	"educa/config"
	"educa/database"
	"educa/logger"
	"educa/middleware"
	"educa/models"
	authValidator "educa/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUsernameTaken = errors.New("username is already registered")

// CreateUser hashes the password, stores the user with role and seeds the role's permissions.
func CreateUser(db *gorm.DB, reqData *authValidator.RegisterRequest, role string) (*models.User, error) {
	if err := db.Where("username = ?", reqData.Username).First(&models.User{}).Error; err == nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: reqData.Username,
		Name:     reqData.Name,
		Email:    reqData.Email,
		Role:     role,
		Password: string(hashedPassword),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return SeedPermissions(tx, user.Role, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SeedPermissions seeds default permissions for a given role and user ID
func SeedPermissions(db *gorm.DB, role string, userID uint) error {
	permissions := models.DefaultPermissions(role)
	if len(permissions) == 0 {
		return nil
	}

	var permissionRecords []models.Permission
	for _, p := range permissions {
		permissionRecords = append(permissionRecords, models.Permission{
			UserID:     userID,
			Role:       role,
			Permission: p,
		})
	}
	return db.Create(&permissionRecords).Error
}

// issueToken records the login and returns a fresh token for user.
func issueToken(c *fiber.Ctx, user *models.User) (string, error) {
	db := database.Database.Db

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}
	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Timestamp: time.Now(),
	}
	if err := db.Create(&loginTracking).Error; err != nil {
		logger.Log.Warn("Error saving login tracking details", "user_id", user.ID, "error", err)
	}

	user.LastLogin = loginTracking.Timestamp
	if err := db.Model(user).Update("last_login", user.LastLogin).Error; err != nil {
		logger.Log.Warn("Error updating last login", "user_id", user.ID, "error", err)
	}

	return middleware.GenerateJWT(user.ID, user.Username, user.Role, user.Email)
}

// StudentRegister signs up a student and logs them in
func StudentRegister(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := CreateUser(database.Database.Db, reqData, models.RoleStudent)
	if errors.Is(err, ErrUsernameTaken) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Username is already registered!", nil)
	}
	if err != nil {
		logger.Log.Error("Error registering student", "username", reqData.Username, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	token, err := issueToken(c, user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	logger.Log.Info("Student registered", "user_id", user.ID)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("username = ? AND is_deleted = ?", reqData.Username, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	token, err := issueToken(c, &user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func LoginHistoryList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedPage").(*authValidator.PageRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var loginTracking []models.LoginTracking
	var total int64

	db := database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ?", userId).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}
	if err := db.Order("timestamp desc").Offset(reqData.Offset()).Limit(reqData.Limit).Find(&loginTracking).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": loginTracking,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}
