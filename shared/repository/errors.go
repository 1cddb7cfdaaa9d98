package repository

import (
	"errors"
	"fmt"

	"pms/shared/constant"
	"pms/shared/failure"

	"github.com/lib/pq"
)

// translateError turns constraint violations into conflicts the transport layer
// can report, and wraps everything else with msg.
func translateError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case constant.PqErrorCodeUniqueViolation:
			return failure.Conflict("resource already exists") // nolint:wrapcheck
		case constant.PqErrorCodeExclusionViolation:
			return failure.Conflict("room is already booked for the requested dates") // nolint:wrapcheck
		case constant.PqErrorCodeFkViolation:
			return failure.BadRequestFromString("referenced resource does not exist") // nolint:wrapcheck
		}
	}

	return fmt.Errorf("%s: %w", msg, err)
}
