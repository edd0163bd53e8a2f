package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/easysplit_backend/internal/core/ports/services"
	"github.com/SscSPs/easysplit_backend/internal/dto"
	"github.com/SscSPs/easysplit_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// recordHandler handles HTTP requests related to records.
type recordHandler struct {
	recordService portssvc.RecordSvcFacade
}

// newRecordHandler creates a new recordHandler.
func newRecordHandler(rs portssvc.RecordSvcFacade) *recordHandler {
	return &recordHandler{recordService: rs}
}

// RegisterRecordRoutes registers record routes nested under a group.
func RegisterRecordRoutes(rg *gin.RouterGroup, recordService portssvc.RecordSvcFacade) {
	h := newRecordHandler(recordService)

	records := rg.Group("/groups/:group_id/records")
	{
		records.POST("", h.createRecord)
		records.GET("", h.listRecords)
		records.GET("/:record_id", h.getRecord)
		records.PATCH("/:record_id", h.updateRecord)
		records.DELETE("/:record_id", h.deleteRecord)
	}
}

// createRecord godoc
// @Summary Create a record
// @Description Inserts a record with its from/to allocations and reconciles balances atomically.
// @Tags records
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   record body dto.CreateRecordRequest true "Record details"
// @Success 201 {object} dto.RecordResponse
// @Failure 400 {object} map[string]string "Invalid input or member outside group"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 500 {object} map[string]string "Failed to create record"
// @Security BearerAuth
// @Router /groups/{group_id}/records [post]
func (h *recordHandler) createRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRecord", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	record, err := h.recordService.CreateRecord(c.Request.Context(), c.Param("group_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create record")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRecordResponse(record))
}

// listRecords godoc
// @Summary List records of a group
// @Description Newest first, paginated with an opaque token.
// @Tags records
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListRecordsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 500 {object} map[string]string "Failed to list records"
// @Security BearerAuth
// @Router /groups/{group_id}/records [get]
func (h *recordHandler) listRecords(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListRecordsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListRecords", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	resp, err := h.recordService.ListRecords(c.Request.Context(), c.Param("group_id"), userID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list records")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getRecord godoc
// @Summary Get a record
// @Tags records
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   record_id path string true "Record ID"
// @Success 200 {object} dto.RecordResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Record not found"
// @Failure 500 {object} map[string]string "Failed to get record"
// @Security BearerAuth
// @Router /groups/{group_id}/records/{record_id} [get]
func (h *recordHandler) getRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	record, err := h.recordService.GetRecordByID(c.Request.Context(), c.Param("group_id"), c.Param("record_id"), userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to get record")
		return
	}

	c.JSON(http.StatusOK, dto.ToRecordResponse(record))
}

// updateRecord godoc
// @Summary Update a record
// @Description Partial update. A supplied from_members or to_members list replaces the stored one.
// @Tags records
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   record_id path string true "Record ID"
// @Param   record body dto.UpdateRecordRequest true "Fields to update"
// @Success 200 {object} dto.RecordResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Record not found"
// @Failure 500 {object} map[string]string "Failed to update record"
// @Security BearerAuth
// @Router /groups/{group_id}/records/{record_id} [patch]
func (h *recordHandler) updateRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateRecord", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if err := validateAllocationLists(req.FromMembers, req.ToMembers); err != nil {
		logger.Warn("Invalid allocation in UpdateRecord", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	record, err := h.recordService.UpdateRecord(c.Request.Context(), c.Param("group_id"), c.Param("record_id"), req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update record")
		return
	}

	c.JSON(http.StatusOK, dto.ToRecordResponse(record))
}

// deleteRecord godoc
// @Summary Delete a record
// @Description Removes the record with its allocations and reconciles balances.
// @Tags records
// @Param   group_id path string true "Group ID"
// @Param   record_id path string true "Record ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Record not found"
// @Failure 500 {object} map[string]string "Failed to delete record"
// @Security BearerAuth
// @Router /groups/{group_id}/records/{record_id} [delete]
func (h *recordHandler) deleteRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.recordService.DeleteRecord(c.Request.Context(), c.Param("group_id"), c.Param("record_id"), userID); err != nil {
		respondWithError(c, logger, err, "Failed to delete record")
		return
	}

	c.Status(http.StatusNoContent)
}
