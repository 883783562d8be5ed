package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// internal wraps an unexpected fault so callers see common.ErrorInternal
// while the cause stays available for logging.
func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}

// passDeclared returns err unchanged when it is one of the declared kinds and
// wraps it as internal otherwise.
func passDeclared(op string, err error, kinds ...error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return err
		}
	}
	return internal(op, err)
}
