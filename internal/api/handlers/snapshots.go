package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridgate-dev/gridgate/internal/snapshot"
)

// HandleSnapshots lists snapshots, optionally filtered by document_id
func HandleSnapshots(snapshots *snapshot.MemoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if snapshots == nil {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "snapshots are not configured"})
			return
		}
		docID := c.Query("document_id")
		if docID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "document_id query parameter is required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"snapshots": snapshots.List(docID)})
	}
}

// HandleSnapshotByID returns one snapshot record
func HandleSnapshotByID(snapshots *snapshot.MemoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if snapshots == nil {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "snapshots are not configured"})
			return
		}
		rec, ok := snapshots.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
