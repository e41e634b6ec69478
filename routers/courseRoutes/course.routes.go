package courseRoutes

import (
	controllers "educa/controllers/course"
	validators "educa/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalogue
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	courseGroup.Get("/list", validators.CourseList(), controllers.CourseList)
	courseGroup.Get("/:slug", validators.CourseSlug(), controllers.CourseDetail)
}
