package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type balanceHandler struct {
	balanceService portssvc.BalanceSvc
}

// RegisterBalanceRoutes registers the manual reconciliation route.
func RegisterBalanceRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvc) {
	h := &balanceHandler{balanceService: balanceService}
	rg.POST("/groups/:group_id/balances/reconcile", h.reconcileGroup)
}

// reconcileGroup godoc
// @Summary Recompute cached balances of a group
// @Description Rebuilds every member balance in every currency from the allocation history.
// @Tags balances
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {object} dto.ReconcileResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 500 {object} map[string]string "Failed to reconcile balances"
// @Security BearerAuth
// @Router /groups/{group_id}/balances/reconcile [post]
func (h *balanceHandler) reconcileGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	balances, err := h.balanceService.ReconcileGroup(c.Request.Context(), c.Param("group_id"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile balances")
		return
	}

	c.JSON(http.StatusOK, dto.ToReconcileResponse(balances))
}
