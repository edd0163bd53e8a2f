package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/easysplit_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// PosthogMiddleware creates a Gin middleware handler that tracks successful API calls with PostHog.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := EventNameFromRoute(c.Request.Method, c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if groupID := c.Param("group_id"); groupID != "" {
			props["group_id"] = groupID
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}

// EventNameFromRoute turns "POST /api/v1/groups/:group_id/records" into
// "post_api_v1_groups_group_id_records". Unmatched routes yield "".
func EventNameFromRoute(method, fullPath string) string {
	trimmed := strings.Trim(fullPath, "/")
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer("/", "_", ":", "", "*", "")
	return strings.ToLower(method) + "_" + replacer.Replace(trimmed)
}
