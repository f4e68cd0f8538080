package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/tradebooks/backend/internal/application/ledger"
	"github.com/tradebooks/backend/internal/interfaces/http/dto"
)

// PartyHandler handles customer and supplier endpoints
type PartyHandler struct {
	BaseHandler
	partyService *ledgerapp.PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *ledgerapp.PartyService) *PartyHandler {
	return &PartyHandler{
		partyService: partyService,
	}
}

// CreatePartyRequest represents a request to onboard a customer or supplier
// @Description Request body for creating a party
type CreatePartyRequest struct {
	Code            string `json:"code" binding:"required,min=1,max=50" example:"CUST-001"`
	Name            string `json:"name" binding:"required,min=1,max=200" example:"Baba Traders"`
	Type            string `json:"type" binding:"required,oneof=CUSTOMER SUPPLIER" example:"CUSTOMER"`
	Phone           string `json:"phone" binding:"max=50" example:"0300 1234567"`
	PaymentTerms    string `json:"payment_terms" binding:"omitempty,oneof=CASH CREDIT" example:"CREDIT"`
	CreditDaysLimit int    `json:"credit_days_limit" example:"30"`
	CreditCashLimit string `json:"credit_cash_limit" binding:"decimal_gte0" example:"250000.00"`
	OpeningBalance  string `json:"opening_balance" binding:"omitempty,numeric" example:"0"`
}

// UpdateTermsRequest represents a change of payment terms
// @Description Request body for updating a party's payment terms and limits
type UpdateTermsRequest struct {
	PaymentTerms    string `json:"payment_terms" binding:"required,oneof=CASH CREDIT" example:"CREDIT"`
	CreditDaysLimit int    `json:"credit_days_limit" example:"45"`
	CreditCashLimit string `json:"credit_cash_limit" binding:"decimal_gte0" example:"300000.00"`
}

// ListPartiesRequest represents the party list query
type ListPartiesRequest struct {
	dto.ListRequest
	Type            string `form:"type" binding:"omitempty,oneof=CUSTOMER SUPPLIER"`
	IncludeArchived bool   `form:"include_archived"`
}

// Create godoc
// @ID           createParty
// @Summary      Create a party
// @Description  Onboard a customer or supplier with payment terms and an opening balance
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        request body CreatePartyRequest true "Party creation request"
// @Success      201 {object} dto.Response{data=ledgerapp.PartyResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /parties [post]
func (h *PartyHandler) Create(c *gin.Context) {
	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	creditLimit, err := parseAmount(req.CreditCashLimit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	opening, err := parseAmount(req.OpeningBalance)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	party, err := h.partyService.Create(c.Request.Context(), ledgerapp.CreatePartyRequest{
		Code:            req.Code,
		Name:            req.Name,
		Type:            req.Type,
		Phone:           req.Phone,
		PaymentTerms:    req.PaymentTerms,
		CreditDaysLimit: req.CreditDaysLimit,
		CreditCashLimit: creditLimit,
		OpeningBalance:  opening,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, party)
}

// List godoc
// @ID           listParties
// @Summary      List parties
// @Tags         parties
// @Produce      json
// @Param        type query string false "CUSTOMER or SUPPLIER"
// @Param        search query string false "Code or name fragment"
// @Param        include_archived query bool false "Include archived parties"
// @Success      200 {object} dto.Response{data=[]ledgerapp.PartyResponse}
// @Router       /parties [get]
func (h *PartyHandler) List(c *gin.Context) {
	var req ListPartiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	page := req.ListRequest.WithDefaults()

	result, err := h.partyService.List(c.Request.Context(), ledgerapp.PartyListFilter{
		Page:            page.Page,
		PageSize:        page.PageSize,
		OrderBy:         page.OrderBy,
		OrderDir:        page.OrderDir,
		Search:          page.Search,
		Type:            req.Type,
		IncludeArchived: req.IncludeArchived,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @ID           getParty
// @Summary      Get a party
// @Tags         parties
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.PartyResponse}
// @Failure      404 {object} dto.Response
// @Router       /parties/{id} [get]
func (h *PartyHandler) GetByID(c *gin.Context) {
	partyID, ok := h.uuidParam(c, "id", "party")
	if !ok {
		return
	}

	party, err := h.partyService.GetByID(c.Request.Context(), partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}

// UpdateTerms godoc
// @ID           updatePartyTerms
// @Summary      Update payment terms
// @Description  Switch between cash and credit terms and set the credit days and cash limit
// @Tags         parties
// @Accept       json
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Param        request body UpdateTermsRequest true "New terms"
// @Success      200 {object} dto.Response{data=ledgerapp.PartyResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /parties/{id}/terms [put]
func (h *PartyHandler) UpdateTerms(c *gin.Context) {
	partyID, ok := h.uuidParam(c, "id", "party")
	if !ok {
		return
	}

	var req UpdateTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	creditLimit, err := parseAmount(req.CreditCashLimit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	party, err := h.partyService.UpdateTerms(c.Request.Context(), partyID, ledgerapp.UpdateTermsRequest{
		PaymentTerms:    req.PaymentTerms,
		CreditDaysLimit: req.CreditDaysLimit,
		CreditCashLimit: creditLimit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}

// Archive godoc
// @ID           archiveParty
// @Summary      Archive a party
// @Description  Archived parties keep their history but take no new transactions
// @Tags         parties
// @Produce      json
// @Param        id path string true "Party ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.PartyResponse}
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /parties/{id}/archive [post]
func (h *PartyHandler) Archive(c *gin.Context) {
	partyID, ok := h.uuidParam(c, "id", "party")
	if !ok {
		return
	}

	party, err := h.partyService.Archive(c.Request.Context(), partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, party)
}
