package routes

import (
	"github.com/campusflow/sectioning/internal/app/controllers"
	"github.com/campusflow/sectioning/internal/app/models/dto"
	"github.com/campusflow/sectioning/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	sectioningController *controllers.SectioningController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Course catalog (any authenticated caller)
	courses := authenticated.Group("/courses")
	{
		courses.GET("", sectioningController.ListCourses)
	}

	// Student routes: the :id student must match the token unless the caller
	// is an advisor
	students := authenticated.Group("/students/:id")
	students.Use(authMiddleware.StudentAccess())
	{
		students.GET("/schedule", sectioningController.GetSchedule)
		students.POST("/schedule/validate", sectioningController.ValidateSchedule)

		registrations := students.Group("/special-registrations")
		{
			registrations.POST("/eligibility", sectioningController.CheckEligibility)
			registrations.POST("", sectioningController.SubmitRegistration)
			registrations.GET("", sectioningController.GetRegistrations)
			registrations.GET("/check", sectioningController.CheckRegistrations)
			registrations.GET("/:requestId", sectioningController.GetRegistration)
		}

		students.GET("/submissions", sectioningController.GetSubmissions)
	}
}
