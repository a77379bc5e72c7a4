package handler

import (
	"net/http"

	"voicechallan/internal/apierror"
	"voicechallan/internal/dto"
	"voicechallan/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChallansHandler struct{ svc service.ChallanService }

func NewChallansHandler(svc service.ChallanService) *ChallansHandler {
	return &ChallansHandler{svc: svc}
}

// Generate godoc
// @Summary      Create a challan
// @Description  Validates the items, renders the PDF and stores both. Nothing is stored when rendering fails.
// @Tags         challans
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateChallanRequest true "Challan"
// @Success      201  {object} dto.CreateChallanResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /api/generate-pdf [post]
func (h *ChallansHandler) Generate(c *gin.Context) {
	var req dto.CreateChallanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List challans
// @Tags         challans
// @Produce      json
// @Param        search     query string false "Matches customer name or challan number"
// @Param        sort       query string false "created_at | customer_name | challan_no | total_items | total_price"
// @Param        order      query string false "asc | desc (default desc)"
// @Param        start_date query string false "YYYY-MM-DD, inclusive"
// @Param        end_date   query string false "YYYY-MM-DD, inclusive"
// @Param        page       query int    false "Page (default 1)"
// @Param        limit      query int    false "Page size (default 50, max 200)"
// @Success      200  {object} dto.ChallanListResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /api/list-challans [get]
func (h *ChallansHandler) List(c *gin.Context) {
	var filter dto.ChallanFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export godoc
// @Summary      Export challans as a spreadsheet
// @Description  Same filters as the list endpoint; pagination is ignored.
// @Tags         challans
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/list-challans/export [get]
func (h *ChallansHandler) Export(c *gin.Context) {
	var filter dto.ChallanFilter
	if !bindQuery(c, &filter) {
		return
	}
	file, err := h.svc.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	sendFile(c, file.Filename, file.ContentType, file.Data)
}

// Get godoc
// @Summary      Get a challan
// @Tags         challans
// @Produce      json
// @Param        id  path string true "Challan UUID"
// @Success      200 {object} dto.ChallanResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/challans/{id} [get]
func (h *ChallansHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a challan
// @Description  Soft delete: the challan disappears from listings and downloads.
// @Tags         challans
// @Param        id  path string true "Challan UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /api/challans/{id} [delete]
func (h *ChallansHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Download godoc
// @Summary      Download the challan PDF
// @Tags         challans
// @Produce      application/pdf
// @Param        id  path string true "Challan UUID"
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Router       /api/download-pdf/{id} [get]
func (h *ChallansHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, err := h.svc.PDF(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	sendFile(c, file.Filename, file.ContentType, file.Data)
}

// Share godoc
// @Summary      Create a share link
// @Description  Returns a signed, expiring URL that downloads the PDF without further checks.
// @Tags         challans
// @Produce      json
// @Param        id  path string true "Challan UUID"
// @Success      200 {object} dto.ShareResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/challans/{id}/share [post]
func (h *ChallansHandler) Share(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Share(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Shared godoc
// @Summary      Download a PDF through a share link
// @Tags         challans
// @Produce      application/pdf
// @Param        token path string true "Share token"
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Failure      410 {object} apierror.APIError
// @Router       /api/shared/{token} [get]
func (h *ChallansHandler) Shared(c *gin.Context) {
	file, err := h.svc.SharedPDF(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	sendFile(c, file.Filename, file.ContentType, file.Data)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid challan id"))
		return uuid.Nil, false
	}
	return id, true
}
