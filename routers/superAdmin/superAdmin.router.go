package superAdminRoutes

import (
	superAdminController "educa/controllers/superAdmin"
	"educa/middleware"
	"educa/models"
	superAdminValidator "educa/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	adminGroup.Get("/user/list", superAdminValidator.List(), superAdminController.UserList)
	adminGroup.Post("/register-instructor", superAdminValidator.RegisterInstructor(), superAdminController.RegisterInstructor)
	adminGroup.Get("/permission/:user_id", superAdminValidator.UserID(), superAdminController.UserPermissions)
	adminGroup.Post("/subject", superAdminValidator.CreateSubject(), superAdminController.CreateSubject)
}
