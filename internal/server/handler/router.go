package handler

import (
	"github.com/gin-gonic/gin"

	"forge/internal/server/middleware"
	"forge/internal/server/model"
)

// NewRouter wires every HTTP route of the server.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/login", UserLogin)
	r.POST("/webhook", Webhook)

	authed := r.Group("/", middleware.JWTAuthMiddleware())
	authed.GET("/pipeline", ListPipelines)
	authed.GET("/pipeline/:id", ListPipelineDetail)
	authed.GET("/history", ListExecutionHistory)
	authed.GET("/history/:id", ListExecutionHistoryDetail)

	// mutating routes need the executor role
	executor := authed.Group("/", middleware.RequireRole(model.RoleExecutor))
	executor.POST("/create", CreatePipeline)
	executor.POST("/update/:name", UpdatePipeline)
	executor.POST("/trigger", TriggerPipeline)

	return r
}
