package courseRoutes

import (
	controllers "educa/controllers/course"
	"educa/middleware"
	"educa/models"
	validators "educa/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupManageRoutes sets up the instructor routes. Every handler only sees the caller's own
// courses, modules and contents.
func SetupManageRoutes(app *fiber.App) {
	manage := app.Group("/manage", middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))

	canView := middleware.CheckPermissionMiddleware(models.PermViewCourse)
	canAdd := middleware.CheckPermissionMiddleware(models.PermAddCourse)
	canChange := middleware.CheckPermissionMiddleware(models.PermChangeCourse)
	canDelete := middleware.CheckPermissionMiddleware(models.PermDeleteCourse)

	// Courses
	manage.Get("/course/mine", canView, controllers.ManageCourseList)
	manage.Post("/course/create", canAdd, validators.CreateCourse(), controllers.CreateCourse)
	manage.Put("/course/:id", canChange, validators.UpdateCourse(), controllers.UpdateCourse)
	manage.Delete("/course/:id", canDelete, validators.CourseID(), controllers.DeleteCourse)
	manage.Get("/course/:id/stats", canView, validators.CourseID(), controllers.CourseStats)

	// Modules
	manage.Post("/course/:id/module", canChange, validators.CreateModule(), controllers.CreateModule)
	manage.Put("/course/:id/modules", canChange, validators.UpdateModules(), controllers.UpdateModules)
	manage.Get("/module/:module_id", canView, validators.ModuleID(), controllers.ModuleContentList)

	// Contents
	manage.Post("/module/:module_id/content/:model_name/:id?", canChange, validators.SaveContentItem(), controllers.SaveContent)
	manage.Post("/content/:id/delete", canChange, validators.ContentID(), controllers.DeleteContent)

	// Drag and drop ordering; the payload is checked before anything else runs
	manage.Post("/module/order", validators.Reorder(), canChange, controllers.ModuleOrder)
	manage.Post("/content/order", validators.Reorder(), canChange, controllers.ContentOrder)
}
