package movement

import (
	"errors"
	"fmt"
)

// ErrPreconditionFailed is the root of every rejected transition; callers
// match it with errors.Is to map to a 409-equivalent. Rejections are never
// retried automatically.
var ErrPreconditionFailed = errors.New("movement precondition failed")

var (
	ErrStateNotFound = errors.New("movement state not found")

	ErrStateExists   = fmt.Errorf("%w: trip already started", ErrPreconditionFailed)
	ErrNotMoving     = fmt.Errorf("%w: shipment is not moving", ErrPreconditionFailed)
	ErrAlreadyMoving = fmt.Errorf("%w: shipment is already moving", ErrPreconditionFailed)
)
