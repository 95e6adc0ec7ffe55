// Package http is the admin facade over the domain engine: an ops
// surface for back-office tooling, not the backend's own REST API.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/application"
	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
)

// Handler exposes the engine's operations over HTTP.
type Handler struct {
	store     *application.Store
	workflow  *application.Workflow
	payments  *application.Payments
	contracts *application.Contracts
	logger    *slog.Logger
}

// NewHandler wires the facade.
func NewHandler(store *application.Store, workflow *application.Workflow, payments *application.Payments, contracts *application.Contracts, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		workflow:  workflow,
		payments:  payments,
		contracts: contracts,
		logger:    logger,
	}
}

// RegisterRoutes binds the facade to the gin engine.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/refresh", h.Refresh)

		api.GET("/users", h.ListUsers)
		api.GET("/users/:id", h.GetUser)
		api.GET("/users/:id/loans", h.ListUserLoans)
		api.GET("/users/:id/documents", h.ListUserDocuments)
		api.GET("/users/:id/applications", h.ListUserApplications)
		api.GET("/users/:id/contracts", h.ListUserContracts)

		api.GET("/notifications", h.ListNotifications)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)

		api.POST("/applications/:id/advance", h.AdvanceApplication)
		api.POST("/applications/:id/status", h.SetApplicationStatus)
		api.POST("/applications/:id/convert", h.ConvertApplication)

		api.POST("/loans/:id/payments", h.RecordPayment)

		api.POST("/documents/:id/verify", h.VerifyDocument)
		api.POST("/documents/:id/reject", h.RejectDocument)

		api.POST("/contracts/generate", h.GenerateContract)
		api.POST("/contracts/:id/send", h.SendContract)
		api.POST("/contracts/:id/refresh", h.RefreshContract)
	}
}

// Refresh replaces the mirror wholesale from the backend.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.store.RefreshAll(c.Request.Context()); err != nil {
		h.logger.Error("refresh failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Users())
}

func (h *Handler) GetUser(c *gin.Context) {
	user, ok := h.store.User(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrUserNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":              user,
		"profileCompletion": user.ProfileCompletion(),
	})
}

func (h *Handler) ListUserLoans(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.LoansByUser(c.Param("id")))
}

func (h *Handler) ListUserDocuments(c *gin.Context) {
	docs := h.store.DocumentsByUser(c.Param("id"))
	type docView struct {
		domain.Document
		ViewURL string `json:"viewUrl"`
	}
	out := make([]docView, 0, len(docs))
	for _, d := range docs {
		out = append(out, docView{Document: d, ViewURL: d.ViewURL()})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListUserApplications(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ApplicationsByUser(c.Param("id")))
}

func (h *Handler) ListUserContracts(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ContractsByUser(c.Param("id")))
}

func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Notifications())
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if !h.store.MarkNotificationRead(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// AdvanceApplication runs the guided advance.
func (h *Handler) AdvanceApplication(c *gin.Context) {
	outcome, err := h.workflow.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// SetApplicationStatus is the direct-assignment path used by admin
// tooling; it is not restricted to graph-adjacent states.
func (h *Handler) SetApplicationStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.workflow.SetStatus(c.Request.Context(), c.Param("id"), domain.ApplicationStatus(req.Status), req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// ConvertApplication creates a loan from an approved application. A
// partial completion (loan created, application unmoved) is reported with
// 502 and the compound result so the operator can remediate.
func (h *Handler) ConvertApplication(c *gin.Context) {
	result, err := h.workflow.ConvertToLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		if result.LoanCreated {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "result": result})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loan, err := h.payments.Record(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

type verificationRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) VerifyDocument(c *gin.Context) {
	// Notes are optional on verification; an absent body is fine.
	var req verificationRequest
	_ = c.ShouldBindJSON(&req)
	doc, err := h.store.VerifyDocument(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) RejectDocument(c *gin.Context) {
	var req verificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.store.RejectDocument(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

type generateContractRequest struct {
	LoanID string `json:"loanId" binding:"required"`
}

func (h *Handler) GenerateContract(c *gin.Context) {
	var req generateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.contracts.Generate(c.Request.Context(), req.LoanID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

type sendContractRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *Handler) SendContract(c *gin.Context) {
	var req sendContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.contracts.SendForSignature(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) RefreshContract(c *gin.Context) {
	contract, err := h.contracts.RefreshStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// respondError maps domain errors onto HTTP statuses: not-found and
// validation problems are the caller's, everything else is a gateway
// failure.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrApplicationNotFound),
		errors.Is(err, domain.ErrContractNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyRejectionNotes),
		errors.Is(err, domain.ErrApplicationNotApproved),
		errors.Is(err, domain.ErrInvalidPaymentAmount),
		errors.Is(err, domain.ErrLoanNotPayable),
		errors.Is(err, domain.ErrUnknownApplicationStatus),
		errors.Is(err, domain.ErrUnknownWorkflowStep),
		errors.Is(err, domain.ErrInvalidContractTransition),
		errors.Is(err, domain.ErrMissingSignatureRecipient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("gateway operation failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
