package api

import (
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	programService service.ProgramService,
	dishService service.DishService,
	trackingService service.TrackingService,
) {
	authHandler := NewAuthHandler(authService)
	programHandler := NewProgramHandler(programService)
	dishHandler := NewDishHandler(dishService)
	enrollmentHandler := NewEnrollmentHandler(trackingService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := currentUserID(c)
			if !ok {
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		programGroup := protected.Group("/programs")
		{
			programGroup.GET("", programHandler.ListPrograms)
			programGroup.GET("/objective/:objective", programHandler.ListProgramsByObjective)
			programGroup.GET("/:id", programHandler.GetProgram)
			programGroup.POST("/:id/enroll", programHandler.Enroll)

			// Catalog management
			programGroup.POST("", RoleMiddleware(domain.RoleAdmin), programHandler.CreateProgram)
			programGroup.POST("/:id/image-upload-url", RoleMiddleware(domain.RoleAdmin), programHandler.CreateImageUploadURL)
		}

		dishGroup := protected.Group("/dishes")
		{
			dishGroup.GET("", dishHandler.ListDishes)
			dishGroup.GET("/:id", dishHandler.GetDish)
		}

		enrollmentGroup := protected.Group("/enrollments")
		{
			enrollmentGroup.GET("", enrollmentHandler.ListMyEnrollments)
			enrollmentGroup.GET("/:id", enrollmentHandler.GetEnrollment)
			enrollmentGroup.PATCH("/:id/status", enrollmentHandler.ChangeStatus)
			enrollmentGroup.PUT("/:id/progression", enrollmentHandler.UpdateProgression)
			enrollmentGroup.GET("/:id/statistics", enrollmentHandler.GetStatistics)
			enrollmentGroup.GET("/:id/days/:date", enrollmentHandler.GetDay)
			enrollmentGroup.PUT("/:id/days/:date", enrollmentHandler.SubmitDay)
		}
	}
}
