package studentRoutes

import (
	authControllers "educa/controllers/auth"
	studentControllers "educa/controllers/student"
	"educa/middleware"
	authValidators "educa/validators/auth"
	studentValidators "educa/validators/student"

	"github.com/gofiber/fiber/v2"
)

func SetupStudentRoutes(app *fiber.App) {
	studentGroup := app.Group("/students")

	studentGroup.Post("/register", authValidators.Register(), authControllers.StudentRegister)
	studentGroup.Post("/enroll-course", middleware.JWTMiddleware, studentValidators.Enroll(), studentControllers.EnrollCourse)
	studentGroup.Get("/courses", middleware.JWTMiddleware, studentControllers.StudentCourseList)
	studentGroup.Get("/course/:id/:module_id?", middleware.JWTMiddleware, studentValidators.CourseDetail(), studentControllers.StudentCourseDetail)
}
