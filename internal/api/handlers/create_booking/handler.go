package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/GNG-SchedulingService/internal/api/handlers"
	createBooking "github.com/m04kA/GNG-SchedulingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidAppointmentAt = "некорректный формат времени приёма, ожидается ISO 8601"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgSessionTypeNotFound  = "тип сессии не найден"
	msgSessionTypeInactive  = "тип сессии недоступен для записи"
	msgAppointmentInPast    = "время приёма уже прошло"
	msgBusy                 = "сервис перегружен, повторите запрос"
	msgPaymentSetupFailed   = "не удалось создать платёжную сессию"
)

const retryAfterSeconds = 1

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentAt)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: provider_id=%d", req.ProviderID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrBusy):
			h.logger.Warn("POST /bookings - Busy: provider_id=%d", req.ProviderID)
			handlers.RespondUnavailable(w, retryAfterSeconds, msgBusy)

		case errors.Is(err, createBooking.ErrSessionTypeNotFound):
			h.logger.Warn("POST /bookings - Session type not found: session_type_id=%d", req.SessionTypeID)
			handlers.RespondNotFound(w, msgSessionTypeNotFound)

		case errors.Is(err, createBooking.ErrSessionTypeInactive):
			h.logger.Warn("POST /bookings - Session type inactive: session_type_id=%d", req.SessionTypeID)
			handlers.RespondBadRequest(w, msgSessionTypeInactive)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Appointment in past: provider_id=%d", req.ProviderID)
			handlers.RespondBadRequest(w, msgAppointmentInPast)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, createBooking.ErrPaymentSetup):
			h.logger.Error("POST /bookings - Payment setup failed: provider_id=%d, error=%v", req.ProviderID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentSetupFailed)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: provider_id=%d, error=%v", req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, provider_id=%d",
		result.BookingID, req.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
