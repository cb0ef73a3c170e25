package provider_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/GNG-SchedulingService/internal/api/handlers"
	"github.com/m04kA/GNG-SchedulingService/internal/api/middleware"
	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	"github.com/m04kA/GNG-SchedulingService/internal/service/bookings"
	"github.com/m04kA/GNG-SchedulingService/internal/service/bookings/models"
)

const (
	msgUnauthorized       = "требуется авторизация провайдера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBookingID   = "некорректный идентификатор бронирования"
	msgInvalidDateFilter  = "некорректный формат даты фильтра, ожидается YYYY-MM-DD"
	msgBookingNotFound    = "бронирование не найдено"
	msgAccessDenied       = "бронирование принадлежит другому провайдеру"
	msgInvalidState       = "статус можно изменить только у подтверждённого бронирования"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleList GET /api/v1/provider/appointments?from=2026-09-01&to=2026-09-08&status=confirmed&includeInactive=true
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	req := &models.GetProviderBookingsRequest{ProviderID: providerID}
	query := r.URL.Query()

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			h.logger.Warn("GET /provider/appointments - Invalid from=%s: provider_id=%d", fromStr, providerID)
			handlers.RespondBadRequest(w, msgInvalidDateFilter)
			return
		}
		req.From = &from
	}

	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			h.logger.Warn("GET /provider/appointments - Invalid to=%s: provider_id=%d", toStr, providerID)
			handlers.RespondBadRequest(w, msgInvalidDateFilter)
			return
		}
		// Верхняя граница не включается: фильтр по дате до конца дня
		toEnd := to.AddDate(0, 0, 1)
		req.To = &toEnd
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	req.IncludeInactive = query.Get("includeInactive") == "true"

	result, err := h.service.GetProviderBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /provider/appointments - Invalid input: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /provider/appointments - Failed to get bookings: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /provider/appointments - %d bookings returned: provider_id=%d", len(result.Bookings), providerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleUpdateStatus PATCH /api/v1/provider/appointments/{bookingId}/status
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /provider/appointments/{id}/status - Invalid booking ID: provider_id=%d", providerID)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /provider/appointments/%d/status - Invalid request body: %v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), bookingID, providerID, &req); err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /provider/appointments/%d/status - Booking not found: provider_id=%d", bookingID, providerID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PATCH /provider/appointments/%d/status - Access denied: provider_id=%d", bookingID, providerID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, bookings.ErrInvalidState):
			h.logger.Warn("PATCH /provider/appointments/%d/status - Invalid state: provider_id=%d", bookingID, providerID)
			handlers.RespondConflict(w, msgInvalidState)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PATCH /provider/appointments/%d/status - Invalid input: %v", bookingID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PATCH /provider/appointments/%d/status - Failed to update status: provider_id=%d, error=%v",
				bookingID, providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /provider/appointments/%d/status - Status updated: provider_id=%d, status=%s",
		bookingID, providerID, req.Status)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
