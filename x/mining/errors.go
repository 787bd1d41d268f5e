package mining

import (
	"fmt"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
)

// ABCI Response Codes
// mining takes 1700-1720
var (
	ErrOperationNotAllowed = errors.Register(1700, "operation not allowed")
	ErrTokenNotInitialized = errors.Register(1701, "token needs to be initialized")
	ErrNotStartedYet       = errors.Register(1702, "not started yet")
	ErrMiningStarted       = errors.Register(1703, "mining has started")
	ErrStartHeightMissed   = errors.Register(1704, "start height missed")
	ErrExhausted           = errors.Register(1705, "mining schedule exhausted")
	ErrInvalidAddress      = errors.Register(1706, "invalid address")
	ErrQuantity            = errors.Register(1707, "quantity error")
	ErrOperatorConflict    = errors.Register(1708, "operator state conflict")
)

// OperatorConflictError is returned when an operator set modification would
// be a no-op. It carries the address and its current membership state, so that
// a caller can tell an idempotency conflict apart from an authorization
// failure.
type OperatorConflictError struct {
	Operator weave.Address
	// IsOperator is the state of the address at the time of the request.
	IsOperator bool
}

func (e *OperatorConflictError) Error() string {
	if e.IsOperator {
		return fmt.Sprintf("%s is already an operator: %s", e.Operator, ErrOperatorConflict.Error())
	}
	return fmt.Sprintf("%s is not an operator: %s", e.Operator, ErrOperatorConflict.Error())
}

// Cause allows to test this error with ErrOperatorConflict.Is
func (e *OperatorConflictError) Cause() error {
	return ErrOperatorConflict
}

func (e *OperatorConflictError) ABCICode() uint32 {
	return ErrOperatorConflict.ABCICode()
}

// AddOperatorConflict returns an error for adding an address that already is
// an operator.
func AddOperatorConflict(addr weave.Address) error {
	return &OperatorConflictError{Operator: addr, IsOperator: true}
}

// RemoveOperatorConflict returns an error for removing an address that is not
// an operator.
func RemoveOperatorConflict(addr weave.Address) error {
	return &OperatorConflictError{Operator: addr, IsOperator: false}
}

// AsOperatorConflict unwraps given error looking for an operator conflict.
func AsOperatorConflict(err error) (*OperatorConflictError, bool) {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if c, ok := err.(*OperatorConflictError); ok {
			return c, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}
