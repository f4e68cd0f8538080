package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/tradebooks/backend/internal/application/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// ReportHandler handles statements, aging reports and totals
type ReportHandler struct {
	BaseHandler
	reportService *ledgerapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *ledgerapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// StatementQuery bounds a ledger statement
type StatementQuery struct {
	From string `form:"from" binding:"omitempty,ledger_date"`
	To   string `form:"to" binding:"omitempty,ledger_date"`
}

// AgingQuery selects the invoices of an aging report
type AgingQuery struct {
	PartyType      string `form:"party_type" binding:"omitempty,oneof=CUSTOMER SUPPLIER"`
	PartyID        string `form:"party_id" binding:"omitempty,uuid"`
	AsOf           string `form:"as_of" binding:"omitempty,ledger_date"`
	IncludeSettled bool   `form:"include_settled"`
}

// ExportAgingQuery is an aging query plus the archive switch
type ExportAgingQuery struct {
	AgingQuery
	Archive bool `form:"archive"`
}

// TotalsRequest carries rows to sum. Values may be numbers or strings such as "1,500".
// @Description Request body for the totals aggregator
type TotalsRequest struct {
	Rows   []map[string]any `json:"rows" binding:"required"`
	Fields []string         `json:"fields" binding:"required,min=1,dive,min=1"`
}

// Statement godoc
// @ID           getPartyLedger
// @Summary      Party ledger statement
// @Description  Transactions in the window with a running balance; earlier entries fold into the opening balance
// @Tags         reports
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=ledgerapp.Statement}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /parties/{id}/ledger [get]
func (h *ReportHandler) Statement(c *gin.Context) {
	partyID, ok := h.uuidParam(c, "id", "party")
	if !ok {
		return
	}

	var query StatementQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	from, err := parseOptionalDate(query.From)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	to, err := parseOptionalDate(query.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	statement, err := h.reportService.Statement(c.Request.Context(), partyID, ledgerapp.StatementRequest{From: from, To: to})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// Aging godoc
// @ID           getAgingReport
// @Summary      Credit aging report
// @Description  Bill days, due date and overdue days per invoice, bucketed and totalled
// @Tags         reports
// @Produce      json
// @Param        party_type query string false "CUSTOMER or SUPPLIER"
// @Param        party_id query string false "Single party" format(uuid)
// @Param        as_of query string false "Reference day, defaults to today (YYYY-MM-DD)"
// @Param        include_settled query bool false "Include settled invoices"
// @Success      200 {object} dto.Response{data=ledgerapp.AgingReport}
// @Failure      400 {object} dto.Response
// @Router       /reports/aging [get]
func (h *ReportHandler) Aging(c *gin.Context) {
	var query AgingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	req, err := query.toAppRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	report, err := h.reportService.AgingReport(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// ExportAging godoc
// @ID           exportAgingReport
// @Summary      Download the aging report as a workbook
// @Description  Streams an xlsx file. With archive=true the file is stored and a download link returned instead.
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,json
// @Param        party_type query string false "CUSTOMER or SUPPLIER"
// @Param        party_id query string false "Single party" format(uuid)
// @Param        as_of query string false "Reference day (YYYY-MM-DD)"
// @Param        include_settled query bool false "Include settled invoices"
// @Param        archive query bool false "Store the file and return a link"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response
// @Router       /reports/aging/export [get]
func (h *ReportHandler) ExportAging(c *gin.Context) {
	var query ExportAgingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	req, err := query.toAppRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.reportService.ExportAging(c.Request.Context(), req, query.Archive)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if query.Archive {
		h.Success(c, result)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Totals godoc
// @ID           reportTotals
// @Summary      Sum report columns
// @Description  Sums the named fields over the rows. Thousands separators are accepted and unparseable values count as zero.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body TotalsRequest true "Rows and fields"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /reports/totals [post]
func (h *ReportHandler) Totals(c *gin.Context) {
	var req TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	totals, err := h.reportService.Totals(c.Request.Context(), ledgerapp.TotalsRequest{
		Rows:   req.Rows,
		Fields: req.Fields,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"totals": totals, "rows": len(req.Rows)})
}

func (q AgingQuery) toAppRequest() (ledgerapp.AgingRequest, error) {
	asOf, err := parseOptionalDate(q.AsOf)
	if err != nil {
		return ledgerapp.AgingRequest{}, err
	}
	req := ledgerapp.AgingRequest{
		PartyType:      q.PartyType,
		AsOf:           asOf,
		IncludeSettled: q.IncludeSettled,
	}
	if q.PartyID != "" {
		id, err := uuid.Parse(q.PartyID)
		if err != nil {
			return ledgerapp.AgingRequest{}, shared.NewValidationError("Invalid party_id: " + q.PartyID)
		}
		req.PartyID = &id
	}
	return req, nil
}
