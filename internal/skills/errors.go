package skills

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrExternalService = errors.New("skill extraction service unavailable")

// ServiceError wraps a failed model call. It is advisory: Extract still returns
// an empty, usable skill list alongside it.
type ServiceError struct {
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("skill extraction with %s failed: %v", e.Model, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrExternalService
}
