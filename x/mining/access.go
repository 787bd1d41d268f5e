package mining

import (
	"bytes"
	"sort"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/x"
)

// IsOperator returns true if given address is an operator of this pool. The
// admin is an operator only if it was explicitly added.
func (p *Pool) IsOperator(addr weave.Address) bool {
	i := p.operatorPosition(addr)
	return i < len(p.Operators) && p.Operators[i].Equals(addr)
}

func (p *Pool) operatorPosition(addr weave.Address) int {
	return sort.Search(len(p.Operators), func(i int) bool {
		return bytes.Compare(p.Operators[i], addr) >= 0
	})
}

// AddOperator inserts given address into the operator set. An
// OperatorConflictError is returned if the address already is an operator.
func (p *Pool) AddOperator(addr weave.Address) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(ErrInvalidAddress, err.Error())
	}
	i := p.operatorPosition(addr)
	if i < len(p.Operators) && p.Operators[i].Equals(addr) {
		return AddOperatorConflict(addr)
	}
	ops := make([]weave.Address, 0, len(p.Operators)+1)
	ops = append(ops, p.Operators[:i]...)
	ops = append(ops, addr)
	ops = append(ops, p.Operators[i:]...)
	p.Operators = ops
	return nil
}

// RemoveOperator removes given address from the operator set. An
// OperatorConflictError is returned if the address is not an operator.
func (p *Pool) RemoveOperator(addr weave.Address) error {
	i := p.operatorPosition(addr)
	if i == len(p.Operators) || !p.Operators[i].Equals(addr) {
		return RemoveOperatorConflict(addr)
	}
	ops := make([]weave.Address, 0, len(p.Operators)-1)
	ops = append(ops, p.Operators[:i]...)
	ops = append(ops, p.Operators[i+1:]...)
	p.Operators = ops
	return nil
}

// requireAdmin returns an error unless the pool admin signed the transaction.
func requireAdmin(ctx weave.Context, auth x.Authenticator, p *Pool) error {
	if !auth.HasAddress(ctx, p.Admin) {
		return errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	return nil
}
