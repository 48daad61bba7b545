package handler

import (
	"encoding/json"
	"net/http"

	"innkeeper/internal/billing/service"
	httputil "innkeeper/pkg/http"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BillingHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewBillingHandler(service service.BillingService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		log:     log,
	}
}

func (h *BillingHandler) BuildInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	invoice, err := h.service.BuildInvoice(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BuildInvoice", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, invoice); err != nil {
		h.log.Error("failed to write success response", "handler", "BuildInvoice", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BillingHandler) GetInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	invoice, err := h.service.GetInvoice(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetInvoice", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, invoice); err != nil {
		h.log.Error("failed to write success response", "handler", "GetInvoice", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BillingHandler) GetInvoiceByBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	invoice, err := h.service.GetInvoiceByBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetInvoiceByBooking", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, invoice); err != nil {
		h.log.Error("failed to write success response", "handler", "GetInvoiceByBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BillingHandler) RecordPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var txn model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "RecordPayment", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	txn.InvoiceID = ps.ByName("id")

	if err := h.service.RecordPayment(r.Context(), &txn); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RecordPayment", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, txn); err != nil {
		h.log.Error("failed to write created response", "handler", "RecordPayment", "operation", "WriteCreated", "error", err)
	}
}

func (h *BillingHandler) Summary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	summary, err := h.service.Summary(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Summary", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, summary); err != nil {
		h.log.Error("failed to write success response", "handler", "Summary", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BillingHandler) ListPayments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	txns, err := h.service.ListPayments(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListPayments", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, txns); err != nil {
		h.log.Error("failed to write success response", "handler", "ListPayments", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BillingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/id/:id/invoice", h.BuildInvoice)
	router.GET("/api/v1/bookings/id/:id/invoice", h.GetInvoiceByBooking)
	router.GET("/api/v1/invoices/id/:id", h.GetInvoice)
	router.POST("/api/v1/invoices/id/:id/payments", h.RecordPayment)
	router.GET("/api/v1/invoices/id/:id/payments", h.ListPayments)
	router.GET("/api/v1/invoices/id/:id/summary", h.Summary)
}
