package handler

import (
	"encoding/json"
	"net/http"

	"innkeeper/internal/stays/service"
	httputil "innkeeper/pkg/http"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type StayHandler struct {
	service service.StayService
	log     *logger.Logger
}

func NewStayHandler(service service.StayService, log *logger.Logger) *StayHandler {
	return &StayHandler{
		service: service,
		log:     log,
	}
}

type checkInRequest struct {
	RoomID  string `json:"room_id,omitempty"`
	StaffID string `json:"staff_id"`
}

func (h *StayHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CheckIn", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	stay, err := h.service.CheckIn(r.Context(), ps.ByName("id"), req.RoomID, req.StaffID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckIn", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, stay); err != nil {
		h.log.Error("failed to write created response", "handler", "CheckIn", "operation", "WriteCreated", "error", err)
	}
}

func (h *StayHandler) CheckOut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stay, err := h.service.CheckOut(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckOut", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stay); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckOut", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StayHandler) AddCharge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var line model.ServiceLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddCharge", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	stay, err := h.service.AddCharge(r.Context(), ps.ByName("id"), line)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddCharge", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stay); err != nil {
		h.log.Error("failed to write success response", "handler", "AddCharge", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StayHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stay, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stay); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StayHandler) GetByBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stay, err := h.service.GetByBookingID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByBooking", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, stay); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StayHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/id/:id/check-in", h.CheckIn)
	router.POST("/api/v1/bookings/id/:id/check-out", h.CheckOut)
	router.GET("/api/v1/bookings/id/:id/stay", h.GetByBooking)
	router.GET("/api/v1/stays/id/:id", h.GetByID)
	router.POST("/api/v1/stays/id/:id/charges", h.AddCharge)
}
