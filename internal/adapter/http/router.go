package http

import (
	"github.com/labstack/echo/v4"

	"arthalend-backend/internal/adapter/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health      *Handler
	Auth        *AuthHandler
	KYC         *KYCHandler
	Credit      *CreditHandler
	Loan        *LoanHandler
	Agreement   *AgreementHandler
	Transaction *TransactionHandler
	Repayment   *RepaymentHandler
	Audit       *AuditHandler
	Ledger      *LedgerHandler
	Defaulting  *DefaultingHandler
}

// RegisterRoutes mounts every route. requireAuth guards user endpoints;
// idempotent additionally deduplicates mutating money-moving requests and
// must run inside requireAuth.
func RegisterRoutes(e *echo.Echo, h Handlers, auth middleware.Authenticator, idempotent echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	// Anyone can register, verify, and log in.
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/verify-otp", h.Auth.VerifyOTP)
	e.POST("/auth/login", h.Auth.Login)

	// Public transparency surface: ledger views, audits, EMI calculator.
	e.GET("/ledger/streams", h.Ledger.Streams)
	e.GET("/ledger/streams/:stream", h.Ledger.Stream)
	e.GET("/ledger/loans/:loan_id", h.Ledger.LoanTrail)
	e.GET("/audit/loans/:loan_id", h.Audit.AuditLoan)
	e.GET("/audit/users/:user_id", h.Audit.AuditUser)
	e.GET("/loans/emi-preview", h.Loan.EMIPreview)

	requireAuth := middleware.RequireAuth(auth)

	g := e.Group("", requireAuth)
	g.POST("/auth/logout", h.Auth.Logout)

	g.POST("/kyc/basic-info", h.KYC.SubmitBasicInfo)
	g.POST("/kyc/id-documents", h.KYC.SubmitIDDocuments)
	g.POST("/kyc/finalize", h.KYC.Finalize)
	g.GET("/kyc/status", h.KYC.Status)

	g.POST("/credit/financials", h.Credit.SubmitFinancials)
	g.POST("/credit/recompute", h.Credit.Recompute)
	g.GET("/credit/score", h.Credit.GetScore)

	g.GET("/loans/marketplace", h.Loan.Marketplace)
	g.GET("/loans/:loan_id", h.Loan.GetLoan)
	g.GET("/loans/:loan_id/repayments", h.Repayment.History)
	g.GET("/loans/portfolio", h.Loan.Portfolio)
	g.POST("/loans/:loan_id/sign", h.Agreement.Execute)

	// The sweep itself is idempotent, so no request deduplication is needed.
	g.POST("/defaults/check", h.Defaulting.Check)

	// Money-moving routes carry the idempotency guard on top of auth.
	m := e.Group("", requireAuth, idempotent)
	m.POST("/loans", h.Loan.CreateBorrowRequest)
	m.POST("/loans/:loan_id/accept", h.Loan.AcceptLoan)
	m.POST("/loans/:loan_id/fund", h.Transaction.Fund)
	m.POST("/loans/:loan_id/repayments", h.Repayment.Repay)
}
