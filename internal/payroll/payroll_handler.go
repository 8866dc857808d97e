package payroll

import (
	"fmt"
	"net/http"

	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func getActorID(c *gin.Context) string {
	return c.GetString("employee_id")
}

func writeBindError(c *gin.Context, err error) {
	response.FromError(c, apperror.MapValidationError(err))
}

func (h *Handler) CreatePeriod(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.service.CreatePeriod(c.Request.Context(), c.GetString("company_id"), getActorID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListPeriods(c *gin.Context) {
	var filter PeriodFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeBindError(c, err)
		return
	}

	resp, total, err := h.service.ListPeriods(c.Request.Context(), c.GetString("company_id"), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}

	page, pageSize := filter.Pagination()
	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetPeriod(c *gin.Context) {
	resp, err := h.service.GetPeriod(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DeletePeriod(c *gin.Context) {
	if err := h.service.DeletePeriod(c.Request.Context(), c.GetString("company_id"), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id")}, nil)
}

func (h *Handler) GeneratePayslips(c *gin.Context) {
	var req GeneratePayslipsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
	}

	resp, err := h.service.GeneratePayslips(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ApprovePeriod(c *gin.Context) {
	resp, err := h.service.ApprovePeriod(c.Request.Context(), c.GetString("company_id"), getActorID(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ProcessPayments(c *gin.Context) {
	resp, err := h.service.ProcessPayments(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListPayslips(c *gin.Context) {
	resp, err := h.service.ListPayslips(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetReport(c *gin.Context) {
	resp, err := h.service.GenerateReport(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ExportReport(c *gin.Context) {
	periodID := c.Param("id")

	content, err := h.service.ExportReport(c.Request.Context(), c.GetString("company_id"), periodID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=payroll_report_%s.xlsx", periodID))
	c.Data(http.StatusOK, xlsxContentType, content)
}

func (h *Handler) GetPayslip(c *gin.Context) {
	resp, err := h.service.GetPayslip(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RenderPayslip(c *gin.Context) {
	resp, err := h.service.RenderPayslip(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadPayslip(c *gin.Context) {
	resp, err := h.service.GetPayslip(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if resp.PayslipURL == nil || *resp.PayslipURL == "" {
		response.FromError(c, payrollerrors.ErrPayslipNotGenerated)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, *resp.PayslipURL)
}
