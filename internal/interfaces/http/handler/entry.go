package handler

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/tradebooks/backend/internal/application/ledger"
	"github.com/tradebooks/backend/internal/domain/ledger"
	csvimport "github.com/tradebooks/backend/internal/infrastructure/import"
)

// importFormField is the multipart field carrying an entry file
const importFormField = "file"

// EntryHandler handles ledger transaction endpoints
type EntryHandler struct {
	BaseHandler
	entryService  *ledgerapp.EntryService
	importOptions csvimport.EntryOptions
	now           func() time.Time
}

// NewEntryHandler creates a new EntryHandler. importMaxRows caps one CSV
// upload; zero leaves it unbounded.
func NewEntryHandler(entryService *ledgerapp.EntryService, importMaxRows int) *EntryHandler {
	return &EntryHandler{
		entryService:  entryService,
		importOptions: csvimport.EntryOptions{MaxRows: importMaxRows},
		now:           time.Now,
	}
}

// RecordEntryRequest represents a transaction posted to a party ledger
// @Description Request body for recording a ledger entry
type RecordEntryRequest struct {
	Date        string `json:"date" binding:"required,ledger_date" example:"2024-03-01"`
	Kind        string `json:"kind" binding:"required,oneof=INVOICE PAYMENT DEPOSIT RECOVERY ADJUSTMENT" example:"INVOICE"`
	Debit       string `json:"debit" binding:"decimal_gte0" example:"15000.00"`
	Credit      string `json:"credit" binding:"decimal_gte0" example:"0"`
	Description string `json:"description" binding:"max=500" example:"Invoice INV-1042"`
	Reference   string `json:"reference" binding:"max=100" example:"INV-1042"`
	CreditDays  *int   `json:"credit_days" example:"30"`
}

// CreditCheckRequest represents a dry run of the credit guard
// @Description Request body for a credit check
type CreditCheckRequest struct {
	Amount string `json:"amount" binding:"required,decimal_gte0" example:"5000.00"`
}

// SettleInvoiceRequest represents the settlement of an invoice
// @Description Request body for settling an invoice; the date defaults to today
type SettleInvoiceRequest struct {
	SettledOn string `json:"settled_on" binding:"omitempty,ledger_date" example:"2024-04-02"`
}

// Record godoc
// @ID           recordEntry
// @Summary      Record a ledger entry
// @Description  Post an invoice, payment, deposit, recovery or adjustment. Credit parties are checked against their cash limit.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Param        request body RecordEntryRequest true "Entry"
// @Success      201 {object} dto.Response{data=ledgerapp.EntryResult}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response "Refused by the credit guard"
// @Router       /parties/{id}/transactions [post]
func (h *EntryHandler) Record(c *gin.Context) {
	partyID, ok := h.uuidParam(c, "id", "party")
	if !ok {
		return
	}

	var req RecordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	appReq, err := req.toAppRequest()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.entryService.RecordEntry(c.Request.Context(), partyID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Import godoc
// @ID           importEntries
// @Summary      Import ledger entries from CSV
// @Description  Columns: date, kind, debit, credit, description, reference, credit_days. The file is posted as a whole or not at all.
// @Tags         transactions
// @Accept       multipart/form-data,text/csv
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Param        file formData file false "CSV file (multipart uploads)"
// @Success      201 {object} dto.Response{data=ledgerapp.ImportEntriesResult}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /parties/{id}/transactions/import [post]
func (h *EntryHandler) Import(c *gin.Context) {
	partyID, ok := h.uuidParam(c, "id", "party")
	if !ok {
		return
	}

	body, err := importBody(c)
	if err != nil {
		h.BadRequest(c, "Missing CSV file: "+err.Error())
		return
	}
	defer body.Close()

	entries, err := csvimport.ParseEntries(body, h.importOptions)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	reqs := make([]ledgerapp.RecordEntryRequest, len(entries))
	for i, e := range entries {
		reqs[i] = ledgerapp.RecordEntryRequest{
			Date:        e.Date,
			Kind:        e.Kind,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Description: e.Description,
			Reference:   e.Reference,
			CreditDays:  e.CreditDays,
			Line:        e.Line,
		}
	}

	result, err := h.entryService.ImportEntries(c.Request.Context(), partyID, reqs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// CreditCheck godoc
// @ID           creditCheck
// @Summary      Check a sale against the credit limit
// @Description  Runs the credit guard for a prospective amount without posting anything
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Param        request body CreditCheckRequest true "Prospective amount"
// @Success      200 {object} dto.Response{data=ledgerapp.CreditCheckResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /parties/{id}/credit-check [post]
func (h *EntryHandler) CreditCheck(c *gin.Context) {
	partyID, ok := h.uuidParam(c, "id", "party")
	if !ok {
		return
	}

	var req CreditCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.entryService.CheckCredit(c.Request.Context(), partyID, amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Settle godoc
// @ID           settleInvoice
// @Summary      Settle an invoice
// @Description  Records the day an invoice was paid; aging stops counting on that date
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body SettleInvoiceRequest false "Settlement date"
// @Success      200 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /transactions/{id}/settle [post]
func (h *EntryHandler) Settle(c *gin.Context) {
	txID, ok := h.uuidParam(c, "id", "transaction")
	if !ok {
		return
	}

	var req SettleInvoiceRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	settledOn, err := parseOptionalDate(req.SettledOn)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if settledOn.IsZero() {
		settledOn = ledger.CalendarDay(h.now())
	}

	result, err := h.entryService.SettleInvoice(c.Request.Context(), txID, settledOn)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (r RecordEntryRequest) toAppRequest() (ledgerapp.RecordEntryRequest, error) {
	date, err := ledger.ParseDate(r.Date)
	if err != nil {
		return ledgerapp.RecordEntryRequest{}, err
	}
	debit, err := parseAmount(r.Debit)
	if err != nil {
		return ledgerapp.RecordEntryRequest{}, err
	}
	credit, err := parseAmount(r.Credit)
	if err != nil {
		return ledgerapp.RecordEntryRequest{}, err
	}
	return ledgerapp.RecordEntryRequest{
		Date:        date,
		Kind:        r.Kind,
		Debit:       debit,
		Credit:      credit,
		Description: r.Description,
		Reference:   r.Reference,
		CreditDays:  r.CreditDays,
	}, nil
}

// importBody returns the uploaded CSV: the "file" part of a multipart form,
// otherwise the raw request body.
func importBody(c *gin.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile(importFormField)
		if err != nil {
			return nil, err
		}
		return header.Open()
	}
	return c.Request.Body, nil
}
