package api

import (
	"github.com/gin-gonic/gin"
)

// Configures all API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// API version prefix
	v1 := router.Group("/api/v1")

	// Health check endpoint
	v1.GET("/health", s.handleHealth)

	// Mutation submission
	v1.POST("/mutations", s.handleSubmitMutations)

	// Task polling endpoints
	tasks := v1.Group("/tasks")
	{
		tasks.GET("", s.handleTasks)
		tasks.GET("/:id", s.handleTaskByID)
	}

	// Policy inspection and live update
	v1.GET("/policy", s.handleGetPolicy)
	v1.PUT("/policy", s.handleUpdatePolicy)

	// Rate limiter observability
	v1.GET("/limiter", s.handleLimiter)

	// Snapshot lookup
	snapshots := v1.Group("/snapshots")
	{
		snapshots.GET("", s.handleSnapshots)
		snapshots.GET("/:id", s.handleSnapshotByID)
	}
}
