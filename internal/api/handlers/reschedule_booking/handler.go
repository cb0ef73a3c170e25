package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/GNG-SchedulingService/internal/api/handlers"
	rescheduleBooking "github.com/m04kA/GNG-SchedulingService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidAppointmentAt = "некорректный формат времени приёма, ожидается ISO 8601"
	msgBookingNotFound      = "бронирование не найдено"
	msgCannotReschedule     = "перенести можно только подтверждённое бронирование"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgAppointmentInPast    = "время приёма уже прошло"
	msgBusy                 = "сервис перегружен, повторите запрос"
)

const retryAfterSeconds = 1

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{token}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{token}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(token)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{token}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentAt)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{token}/reschedule - Booking not found")
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, rescheduleBooking.ErrCannotReschedule):
			h.logger.Warn("PATCH /bookings/{token}/reschedule - Cannot reschedule booking")
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, rescheduleBooking.ErrSlotNotAvailable):
			h.logger.Warn("PATCH /bookings/{token}/reschedule - Slot not available")
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, rescheduleBooking.ErrBusy):
			h.logger.Warn("PATCH /bookings/{token}/reschedule - Busy")
			handlers.RespondUnavailable(w, retryAfterSeconds, msgBusy)

		case errors.Is(err, rescheduleBooking.ErrInvalidDate):
			h.logger.Warn("PATCH /bookings/{token}/reschedule - Appointment in past")
			handlers.RespondBadRequest(w, msgAppointmentInPast)

		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{token}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PATCH /bookings/{token}/reschedule - Failed to reschedule: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{token}/reschedule - Booking rescheduled: booking_id=%d", result.BookingID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
