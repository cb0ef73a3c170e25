package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/GNG-SchedulingService/internal/api/handlers"
	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	getAvailableSlots "github.com/m04kA/GNG-SchedulingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidProviderID   = "некорректный идентификатор провайдера"
	msgInvalidSessionType  = "некорректный параметр sessionTypeId"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgSessionTypeNotFound = "тип сессии не найден"
	msgSessionTypeInactive = "тип сессии недоступен для записи"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/available-slots?sessionTypeId=1&date=2026-09-07
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/available-slots - Invalid provider ID")
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	sessionTypeID, err := strconv.ParseInt(r.URL.Query().Get("sessionTypeId"), 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/%d/available-slots - Invalid sessionTypeId", providerID)
		handlers.RespondBadRequest(w, msgInvalidSessionType)
		return
	}

	date, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /providers/%d/available-slots - Invalid date", providerID)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		ProviderID:    providerID,
		SessionTypeID: sessionTypeID,
		Date:          date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrSessionTypeNotFound):
			h.logger.Warn("GET /providers/%d/available-slots - Session type not found: session_type_id=%d",
				providerID, sessionTypeID)
			handlers.RespondNotFound(w, msgSessionTypeNotFound)

		case errors.Is(err, getAvailableSlots.ErrSessionTypeInactive):
			h.logger.Warn("GET /providers/%d/available-slots - Session type inactive: session_type_id=%d",
				providerID, sessionTypeID)
			handlers.RespondBadRequest(w, msgSessionTypeInactive)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /providers/%d/available-slots - Invalid input: %v", providerID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /providers/%d/available-slots - Failed to get slots: error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/%d/available-slots - %d slots returned", providerID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
