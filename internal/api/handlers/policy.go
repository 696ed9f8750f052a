package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/gridgate-dev/gridgate/internal/policy"
)

// HandleGetPolicy returns the active policy configuration
func HandleGetPolicy(enforcer *policy.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, enforcer.Config())
	}
}

// HandleUpdatePolicy replaces the active policy configuration. The update is
// atomic: an invalid body leaves the previous policy in force.
func HandleUpdatePolicy(enforcer *policy.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cfg policy.Config
		if err := c.ShouldBindJSON(&cfg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := enforcer.Update(cfg); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		logging.Info("Policy configuration updated via API")
		c.JSON(http.StatusOK, enforcer.Config())
	}
}
