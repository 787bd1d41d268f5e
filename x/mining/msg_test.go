package mining

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestMsgValidate(t *testing.T) {
	var (
		admin  = weavetest.NewCondition().Address()
		poolID = weavetest.SequenceID(1)
	)

	cases := map[string]struct {
		msg  weave.Msg
		errs map[string]*errors.Error
	}{
		"valid create pool": {
			msg: &CreatePoolMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				Admin:            admin,
				Ticker:           "IOV",
				Receiver:         weavetest.NewCondition().Address(),
				PerOperateAmount: 10,
				StartHeight:      100,
				TotalFunding:     1000,
			},
			errs: map[string]*errors.Error{
				"Metadata":         nil,
				"Admin":            nil,
				"PerOperateAmount": nil,
				"StartHeight":      nil,
				"TotalFunding":     nil,
			},
		},
		"create pool without a token": {
			msg: &CreatePoolMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				Admin:            admin,
				PerOperateAmount: 10,
				StartHeight:      100,
			},
			errs: map[string]*errors.Error{
				"TotalFunding": nil,
			},
		},
		"create pool requires positive numbers": {
			msg: &CreatePoolMsg{
				Ticker:       "IOV",
				TotalFunding: -1,
			},
			errs: map[string]*errors.Error{
				"Metadata":         errors.ErrMetadata,
				"Admin":            errors.ErrEmpty,
				"PerOperateAmount": ErrQuantity,
				"StartHeight":      ErrQuantity,
				"TotalFunding":     ErrQuantity,
			},
		},
		"create pool funding requires a token": {
			msg: &CreatePoolMsg{
				TotalFunding: 10,
			},
			errs: map[string]*errors.Error{
				"TotalFunding": errors.ErrInput,
			},
		},
		"valid add operator": {
			msg: &AddOperatorMsg{
				Metadata: &weave.Metadata{Schema: 1},
				PoolID:   poolID,
				Operator: admin,
			},
			errs: map[string]*errors.Error{
				"Metadata": nil,
				"PoolID":   nil,
			},
		},
		"add operator requires a pool": {
			msg: &AddOperatorMsg{
				Metadata: &weave.Metadata{Schema: 1},
			},
			errs: map[string]*errors.Error{
				"PoolID": errors.ErrEmpty,
			},
		},
		"remove operator with malformed pool ID": {
			msg: &RemoveOperatorMsg{
				Metadata: &weave.Metadata{Schema: 1},
				PoolID:   []byte{1, 2, 3},
			},
			errs: map[string]*errors.Error{
				"PoolID": errors.ErrInput,
			},
		},
		"set token amount is checked after the admin signature": {
			msg: &SetTokenMsg{
				Metadata: &weave.Metadata{Schema: 1},
				PoolID:   poolID,
				Ticker:   "IOV",
			},
			errs: map[string]*errors.Error{
				"PoolID":      nil,
				"TotalAmount": nil,
			},
		},
		"set receiver": {
			msg: &SetReceiverMsg{
				Metadata: &weave.Metadata{Schema: 1},
				PoolID:   poolID,
				Receiver: admin,
			},
			errs: map[string]*errors.Error{
				"Metadata": nil,
				"PoolID":   nil,
			},
		},
		"per operate amount must be positive": {
			msg: &SetPerOperateAmountMsg{
				Metadata:         &weave.Metadata{Schema: 1},
				PoolID:           poolID,
				PerOperateAmount: 0,
			},
			errs: map[string]*errors.Error{
				"PerOperateAmount": ErrQuantity,
			},
		},
		"start height must be positive": {
			msg: &SetStartHeightMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				PoolID:      poolID,
				StartHeight: -4,
			},
			errs: map[string]*errors.Error{
				"StartHeight": ErrQuantity,
			},
		},
		"withdraw operator is required": {
			msg: &WithdrawMsg{
				Metadata: &weave.Metadata{Schema: 1},
				PoolID:   poolID,
			},
			errs: map[string]*errors.Error{
				"Metadata": nil,
				"PoolID":   nil,
				"Operator": errors.ErrEmpty,
			},
		},
		"withdraw operator must be valid": {
			msg: &WithdrawMsg{
				Metadata: &weave.Metadata{Schema: 1},
				PoolID:   poolID,
				Operator: weave.Address("short"),
			},
			errs: map[string]*errors.Error{
				"Operator": errors.ErrInput,
			},
		},
		"update configuration requires a patch": {
			msg: &UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
			},
			errs: map[string]*errors.Error{
				"Patch": errors.ErrEmpty,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.msg.Validate()
			for field, want := range tc.errs {
				assert.FieldError(t, err, field, want)
			}
		})
	}
}

func TestMsgPath(t *testing.T) {
	paths := map[string]weave.Msg{
		"mining/create_pool":            &CreatePoolMsg{},
		"mining/add_operator":           &AddOperatorMsg{},
		"mining/remove_operator":        &RemoveOperatorMsg{},
		"mining/set_token":              &SetTokenMsg{},
		"mining/set_receiver":           &SetReceiverMsg{},
		"mining/set_per_operate_amount": &SetPerOperateAmountMsg{},
		"mining/set_start_height":       &SetStartHeightMsg{},
		"mining/withdraw":               &WithdrawMsg{},
		"mining/update_configuration":   &UpdateConfigurationMsg{},
	}
	for want, msg := range paths {
		assert.Equal(t, want, msg.Path())
	}
}
