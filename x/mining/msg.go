package mining

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &CreatePoolMsg{}, migration.NoModification)
	migration.MustRegister(1, &AddOperatorMsg{}, migration.NoModification)
	migration.MustRegister(1, &RemoveOperatorMsg{}, migration.NoModification)
	migration.MustRegister(1, &SetTokenMsg{}, migration.NoModification)
	migration.MustRegister(1, &SetReceiverMsg{}, migration.NoModification)
	migration.MustRegister(1, &SetPerOperateAmountMsg{}, migration.NoModification)
	migration.MustRegister(1, &SetStartHeightMsg{}, migration.NoModification)
	migration.MustRegister(1, &WithdrawMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*CreatePoolMsg)(nil)

func (CreatePoolMsg) Path() string {
	return "mining/create_pool"
}

// Validate checks the message format. Addresses and the ticker are checked by
// the handler, against the current state.
func (m *CreatePoolMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	if m.PerOperateAmount <= 0 {
		errs = errors.AppendField(errs, "PerOperateAmount", errors.Wrap(ErrQuantity, "must be greater than zero"))
	}
	if m.StartHeight <= 0 {
		errs = errors.AppendField(errs, "StartHeight", errors.Wrap(ErrQuantity, "must be greater than zero"))
	}
	if m.TotalFunding < 0 {
		errs = errors.AppendField(errs, "TotalFunding", errors.Wrap(ErrQuantity, "must not be negative"))
	}
	if m.Ticker == "" && m.TotalFunding != 0 {
		errs = errors.AppendField(errs, "TotalFunding", errors.Wrap(errors.ErrInput, "funding requires a ticker"))
	}
	return errs
}

var _ weave.Msg = (*AddOperatorMsg)(nil)

func (AddOperatorMsg) Path() string {
	return "mining/add_operator"
}

func (m *AddOperatorMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "PoolID", validatePoolID(m.PoolID))
	return errs
}

var _ weave.Msg = (*RemoveOperatorMsg)(nil)

func (RemoveOperatorMsg) Path() string {
	return "mining/remove_operator"
}

func (m *RemoveOperatorMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "PoolID", validatePoolID(m.PoolID))
	return errs
}

var _ weave.Msg = (*SetTokenMsg)(nil)

func (SetTokenMsg) Path() string {
	return "mining/set_token"
}

func (m *SetTokenMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "PoolID", validatePoolID(m.PoolID))
	// Ticker and amount are checked by the handler after the admin
	// signature.
	return errs
}

var _ weave.Msg = (*SetReceiverMsg)(nil)

func (SetReceiverMsg) Path() string {
	return "mining/set_receiver"
}

func (m *SetReceiverMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "PoolID", validatePoolID(m.PoolID))
	return errs
}

var _ weave.Msg = (*SetPerOperateAmountMsg)(nil)

func (SetPerOperateAmountMsg) Path() string {
	return "mining/set_per_operate_amount"
}

func (m *SetPerOperateAmountMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "PoolID", validatePoolID(m.PoolID))
	if m.PerOperateAmount <= 0 {
		errs = errors.AppendField(errs, "PerOperateAmount", errors.Wrap(ErrQuantity, "must be greater than zero"))
	}
	return errs
}

var _ weave.Msg = (*SetStartHeightMsg)(nil)

func (SetStartHeightMsg) Path() string {
	return "mining/set_start_height"
}

func (m *SetStartHeightMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "PoolID", validatePoolID(m.PoolID))
	if m.StartHeight <= 0 {
		errs = errors.AppendField(errs, "StartHeight", errors.Wrap(ErrQuantity, "must be greater than zero"))
	}
	return errs
}

var _ weave.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string {
	return "mining/withdraw"
}

func (m *WithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "PoolID", validatePoolID(m.PoolID))
	errs = errors.AppendField(errs, "Operator", m.Operator.Validate())
	return errs
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "mining/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Patch == nil {
		errs = errors.AppendField(errs, "Patch", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "Patch", m.Patch.Validate())
	}
	return errs
}

func validatePoolID(id []byte) error {
	switch n := len(id); {
	case n == 0:
		return errors.ErrEmpty
	case n != 8:
		return errors.Wrapf(errors.ErrInput, "pool ID must be 8 bytes, got %d", n)
	}
	return nil
}
