package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type memberHandler struct {
	memberService portssvc.MemberSvcFacade
}

func newMemberHandler(ms portssvc.MemberSvcFacade) *memberHandler {
	return &memberHandler{memberService: ms}
}

// RegisterMemberRoutes registers member routes nested under a group.
func RegisterMemberRoutes(rg *gin.RouterGroup, memberService portssvc.MemberSvcFacade) {
	h := newMemberHandler(memberService)

	members := rg.Group("/groups/:group_id/members")
	{
		members.GET("", h.listMembers)
		members.POST("", h.applyMemberBatch)
	}
}

// listMembers godoc
// @Summary List members of a group
// @Description Lists every member with its cached balance per currency.
// @Tags members
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {array} dto.MemberResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 500 {object} map[string]string "Failed to list members"
// @Security BearerAuth
// @Router /groups/{group_id}/members [get]
func (h *memberHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	members, err := h.memberService.ListMembers(c.Request.Context(), c.Param("group_id"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list members")
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberListResponse(members))
}

// applyMemberBatch godoc
// @Summary Create, update and delete members in one transaction
// @Description The owner-member can't be updated or deleted. Returns the resulting member list.
// @Tags members
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   batch body dto.MemberBatchRequest true "Member changes"
// @Success 200 {array} dto.MemberResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Owner change or insufficient permission"
// @Failure 404 {object} map[string]string "Group or member not found"
// @Failure 409 {object} map[string]string "User already bound in group"
// @Failure 500 {object} map[string]string "Failed to update members"
// @Security BearerAuth
// @Router /groups/{group_id}/members [post]
func (h *memberHandler) applyMemberBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.MemberBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for MemberBatch", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	members, err := h.memberService.ApplyMemberBatch(c.Request.Context(), c.Param("group_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update members")
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberListResponse(members))
}
