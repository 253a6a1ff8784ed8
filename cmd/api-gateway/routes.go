package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/dance-studio-api/internal/handler"
	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/config"
)

type routeHandlers struct {
	auth        *handler.AuthHandler
	users       *handler.UserHandler
	courses     *handler.CourseHandler
	sessions    *handler.SessionHandler
	enrollments *handler.EnrollmentHandler
	attendance  *handler.AttendanceHandler
	dancers     *handler.DancerHandler
	exports     *handler.ExportHandler
	ops         *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h routeHandlers, tokens middleware.TokenValidator) {
	r.GET("/health", h.ops.Health)
	r.GET("/ready", h.ops.Ready)
	r.GET("/metrics", h.ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", h.auth.Register)
	auth.POST("/login", h.auth.Login)
	auth.POST("/refresh", h.auth.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.POST("/auth/logout", h.auth.Logout)
	secured.GET("/auth/me", h.auth.Me)
	secured.GET("/users/profile", h.users.Profile)
	secured.PUT("/users/profile", h.users.UpdateProfile)
	secured.PUT("/users/password", h.users.ChangePassword)

	staff := middleware.Staff()
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	dancers := secured.Group("/dancers")
	dancers.GET("", h.dancers.List)
	dancers.POST("", h.dancers.Create)
	dancers.GET("/:id", h.dancers.Get)
	dancers.PUT("/:id", h.dancers.Update)
	dancers.DELETE("/:id", h.dancers.Delete)
	dancers.POST("/:id/styles", h.dancers.AddStyle)
	dancers.DELETE("/:id/styles/:styleId", h.dancers.RemoveStyle)
	dancers.GET("/:id/enrollments", h.enrollments.ListForDancer)

	courses := secured.Group("/courses")
	courses.GET("", h.courses.List)
	courses.POST("", staff, h.courses.Create)
	courses.GET("/:id", h.courses.Get)
	courses.PUT("/:id", staff, h.courses.Update)
	courses.DELETE("/:id", adminOnly, h.courses.Delete)
	courses.GET("/:id/sessions", h.sessions.List)
	courses.POST("/:id/sessions", staff, h.sessions.Add)
	courses.GET("/:id/sessions/:sessionId", h.sessions.Get)
	courses.PUT("/:id/sessions/:sessionId", staff, h.sessions.Update)
	courses.DELETE("/:id/sessions/:sessionId", staff, h.sessions.Delete)
	courses.GET("/:id/enrollments", h.enrollments.ListForCourse)
	courses.POST("/:id/enrollments", h.enrollments.Create)
	courses.GET("/:id/enrollments/check", h.enrollments.Check)
	courses.GET("/:id/roster", staff, h.exports.CourseRoster)

	enrollments := secured.Group("/enrollments")
	enrollments.GET("", h.enrollments.List)
	enrollments.GET("/:id", h.enrollments.Get)
	enrollments.PUT("/:id", h.enrollments.Update)
	enrollments.DELETE("/:id", h.enrollments.Delete)

	sessions := secured.Group("/sessions", staff)
	sessions.GET("/:id/attendance", h.attendance.List)
	sessions.GET("/:id/attendance/:dancerId", h.attendance.Get)
	sessions.PUT("/:id/attendance/:dancerId", h.attendance.Record)
	sessions.DELETE("/:id/attendance/:dancerId", h.attendance.Delete)
	sessions.GET("/:id/attendance-sheet", h.exports.AttendanceSheet)
}
