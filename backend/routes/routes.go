package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"coursehub/backend/config"
	"coursehub/backend/controllers"
	"coursehub/backend/middleware"
	"coursehub/backend/services"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, mailer services.Mailer, logger *log.Logger) {
	authRequired := middleware.AuthMiddleware(db, cfg)
	authOptional := middleware.OptionalAuthMiddleware(db, cfg)
	adminRequired := middleware.AdminMiddleware(db, cfg)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, mailer, logger)
	auth := app.Group("/api/auth")
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Post("/logout", authController.Logout)
	auth.Post("/refresh", authController.Refresh)
	auth.Post("/change-password", authRequired, authController.ChangePassword)
	auth.Post("/forgot-password", authController.ForgotPassword)
	auth.Post("/reset-password", authController.ResetPassword)
	auth.Post("/verify-email", authController.VerifyEmail)
	auth.Post("/resend-verification", authRequired, authController.ResendVerification)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/users/profile", authRequired, userController.GetProfile)
	app.Put("/api/users/profile", authRequired, userController.UpdateProfile)

	// Category routes
	categoriesController := controllers.NewCategoriesController(db, cfg)
	app.Get("/api/categories", categoriesController.ListCategories)
	app.Post("/api/categories", adminRequired, categoriesController.CreateCategory)
	app.Get("/api/categories/:id", categoriesController.GetCategory)
	app.Put("/api/categories/:id", adminRequired, categoriesController.UpdateCategory)
	app.Delete("/api/categories/:id", adminRequired, categoriesController.DeleteCategory)

	// Course routes; /my/* must be registered before /:slug
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses")
	courses.Get("/", coursesController.ListCourses)
	courses.Post("/", authRequired, coursesController.CreateCourse)
	courses.Get("/my/enrolled", authRequired, coursesController.MyEnrolledCourses)
	courses.Get("/my/teaching", authRequired, coursesController.MyTeachingCourses)
	courses.Get("/:slug", authOptional, coursesController.GetCourse)
	courses.Put("/:slug", authRequired, coursesController.UpdateCourse)
	courses.Delete("/:slug", authRequired, coursesController.DeleteCourse)

	// Enrollment routes
	enrollmentsController := controllers.NewEnrollmentsController(db, cfg)
	courses.Post("/:id/enroll", authRequired, enrollmentsController.Enroll)
	courses.Post("/:id/unenroll", authRequired, enrollmentsController.Unenroll)

	// Review routes
	reviewsController := controllers.NewReviewsController(db, cfg)
	courses.Get("/:id/reviews", reviewsController.ListReviews)
	courses.Post("/:id/reviews", authRequired, reviewsController.CreateReview)

	// Module routes
	modulesController := controllers.NewModulesController(db, cfg)
	courses.Get("/:id/modules", authOptional, modulesController.ListModules)
	courses.Post("/:id/modules", authRequired, modulesController.CreateModule)
	modules := app.Group("/api/modules")
	modules.Get("/:id", authOptional, modulesController.GetModule)
	modules.Put("/:id", authRequired, modulesController.UpdateModule)
	modules.Delete("/:id", authRequired, modulesController.DeleteModule)

	// Lesson routes
	lessonsController := controllers.NewLessonsController(db, cfg)
	modules.Get("/:id/lessons", authOptional, lessonsController.ListLessons)
	modules.Post("/:id/lessons", authRequired, lessonsController.CreateLesson)
	lessons := app.Group("/api/lessons")
	lessons.Get("/:id", authOptional, lessonsController.GetLesson)
	lessons.Put("/:id", authRequired, lessonsController.UpdateLesson)
	lessons.Delete("/:id", authRequired, lessonsController.DeleteLesson)

	// Lesson progress
	progressController := controllers.NewProgressController(db, cfg)
	lessons.Post("/:id/progress", authRequired, progressController.UpdateLessonProgress)
}
