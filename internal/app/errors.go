package app

import (
	"errors"

	"pine_hotel/internal/domain"
)

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
