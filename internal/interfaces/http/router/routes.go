package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tradebooks/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoints served under the API prefix
type Handlers struct {
	Health *handler.HealthHandler
	Party  *handler.PartyHandler
	Entry  *handler.EntryHandler
	Report *handler.ReportHandler
}

// LedgerRoutes returns the route groups of the ledger API. writeGuard runs in
// front of every route that changes state (rate limiting, for example).
func LedgerRoutes(h Handlers, writeGuard ...gin.HandlerFunc) []RouteRegistrar {
	write := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(writeGuard)+1)
		chain = append(chain, writeGuard...)
		return append(chain, fn)
	}

	system := NewDomainGroup("system", "")
	system.GET("/health", h.Health.Health)

	parties := NewDomainGroup("parties", "/parties")
	parties.POST("", write(h.Party.Create)...)
	parties.GET("", h.Party.List)
	parties.GET("/:id", h.Party.GetByID)
	parties.PUT("/:id/terms", write(h.Party.UpdateTerms)...)
	parties.POST("/:id/archive", write(h.Party.Archive)...)
	parties.POST("/:id/transactions", write(h.Entry.Record)...)
	parties.POST("/:id/transactions/import", write(h.Entry.Import)...)
	parties.POST("/:id/credit-check", h.Entry.CreditCheck)
	parties.GET("/:id/ledger", h.Report.Statement)

	transactions := NewDomainGroup("transactions", "/transactions")
	transactions.POST("/:id/settle", write(h.Entry.Settle)...)

	reports := NewDomainGroup("reports", "/reports")
	reports.GET("/aging", h.Report.Aging)
	reports.GET("/aging/export", h.Report.ExportAging)
	reports.POST("/totals", h.Report.Totals)

	return []RouteRegistrar{system, parties, transactions, reports}
}
