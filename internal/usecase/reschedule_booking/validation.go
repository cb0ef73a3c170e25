package reschedule_booking

import (
	"fmt"
	"strings"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.ConfirmationToken) == "" {
		return fmt.Errorf("%w: confirmationToken is required", ErrInvalidInput)
	}

	if req.NewAppointmentAt.IsZero() {
		return fmt.Errorf("%w: newAppointmentAt is required", ErrInvalidInput)
	}

	return nil
}
