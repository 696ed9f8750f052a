package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridgate-dev/gridgate/internal/taskstore"
)

// HandleTasks lists all live tasks
func HandleTasks(tasks *taskstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tasks": tasks.List(),
			"stats": tasks.Stats(),
		})
	}
}

// HandleTaskByID returns one task, 404 for unknown or expired IDs
func HandleTaskByID(tasks *taskstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		task, ok := tasks.Get(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusOK, task)
	}
}
