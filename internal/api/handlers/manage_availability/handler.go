package manage_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/GNG-SchedulingService/internal/api/handlers"
	"github.com/m04kA/GNG-SchedulingService/internal/api/middleware"
	"github.com/m04kA/GNG-SchedulingService/internal/service/availability"
	"github.com/m04kA/GNG-SchedulingService/internal/service/availability/models"
)

const (
	msgUnauthorized       = "требуется авторизация провайдера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidRuleID      = "некорректный идентификатор правила"
	msgInvalidTimeOffID   = "некорректный идентификатор периода недоступности"
	msgRuleNotFound       = "правило доступности не найдено"
	msgTimeOffNotFound    = "период недоступности не найден"
	msgRuleOverlap        = "правило пересекается с существующим правилом"
	msgBusy               = "сервис перегружен, повторите запрос"

	retryAfterSeconds = 1
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleAddRule POST /api/v1/provider/availability
func (h *Handler) HandleAddRule(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req models.AddRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /provider/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AddRule(r.Context(), providerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrRuleOverlap):
			h.logger.Warn("POST /provider/availability - Rule overlap: provider_id=%d", providerID)
			handlers.RespondConflict(w, msgRuleOverlap)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("POST /provider/availability - Invalid input: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, availability.ErrBusy):
			h.logger.Warn("POST /provider/availability - Too many concurrent requests: provider_id=%d", providerID)
			handlers.RespondUnavailable(w, retryAfterSeconds, msgBusy)

		default:
			h.logger.Error("POST /provider/availability - Failed to add rule: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /provider/availability - Rule created: rule_id=%d, provider_id=%d", result.ID, providerID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleListRules GET /api/v1/provider/availability
func (h *Handler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	result, err := h.service.ListRules(r.Context(), providerID)
	if err != nil {
		h.logger.Error("GET /provider/availability - Failed to list rules: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /provider/availability - %d rules returned: provider_id=%d", len(result.Rules), providerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDeleteRule DELETE /api/v1/provider/availability/{ruleId}
func (h *Handler) HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	ruleID, err := strconv.ParseInt(mux.Vars(r)["ruleId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /provider/availability/{id} - Invalid rule ID: provider_id=%d", providerID)
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return
	}

	if err := h.service.DeleteRule(r.Context(), ruleID, providerID); err != nil {
		switch {
		case errors.Is(err, availability.ErrRuleNotFound):
			h.logger.Warn("DELETE /provider/availability/%d - Rule not found: provider_id=%d", ruleID, providerID)
			handlers.RespondNotFound(w, msgRuleNotFound)

		default:
			h.logger.Error("DELETE /provider/availability/%d - Failed to delete rule: provider_id=%d, error=%v",
				ruleID, providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /provider/availability/%d - Rule deleted: provider_id=%d", ruleID, providerID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddTimeOff POST /api/v1/provider/availability/time-off
func (h *Handler) HandleAddTimeOff(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req models.AddTimeOffRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /provider/availability/time-off - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AddTimeOff(r.Context(), providerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("POST /provider/availability/time-off - Invalid input: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /provider/availability/time-off - Failed to add time off: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /provider/availability/time-off - Time off created: time_off_id=%d, provider_id=%d",
		result.ID, providerID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleListTimeOff GET /api/v1/provider/availability/time-off
func (h *Handler) HandleListTimeOff(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	result, err := h.service.ListTimeOff(r.Context(), providerID)
	if err != nil {
		h.logger.Error("GET /provider/availability/time-off - Failed to list time off: provider_id=%d, error=%v",
			providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /provider/availability/time-off - %d periods returned: provider_id=%d",
		len(result.TimeOff), providerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDeleteTimeOff DELETE /api/v1/provider/availability/time-off/{timeOffId}
func (h *Handler) HandleDeleteTimeOff(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.ProviderID(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	timeOffID, err := strconv.ParseInt(mux.Vars(r)["timeOffId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /provider/availability/time-off/{id} - Invalid time off ID: provider_id=%d", providerID)
		handlers.RespondBadRequest(w, msgInvalidTimeOffID)
		return
	}

	if err := h.service.DeleteTimeOff(r.Context(), timeOffID, providerID); err != nil {
		switch {
		case errors.Is(err, availability.ErrTimeOffNotFound):
			h.logger.Warn("DELETE /provider/availability/time-off/%d - Time off not found: provider_id=%d",
				timeOffID, providerID)
			handlers.RespondNotFound(w, msgTimeOffNotFound)

		default:
			h.logger.Error("DELETE /provider/availability/time-off/%d - Failed to delete time off: provider_id=%d, error=%v",
				timeOffID, providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /provider/availability/time-off/%d - Time off deleted: provider_id=%d", timeOffID, providerID)
	w.WriteHeader(http.StatusNoContent)
}
