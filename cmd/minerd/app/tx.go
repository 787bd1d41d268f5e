package app

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave-mining/codec"
	"github.com/iov-one/weave-mining/x/mining"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

// Tx is the transaction accepted by the minerd application. It carries a
// single message. The layout is declared in codec.proto.
type Tx struct {
	Fees       *cash.FeeInfo
	Signatures []*sigs.StdSignature
	Msg        weave.Msg
}

var _ weave.Tx = (*Tx)(nil)
var _ cash.FeeTx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (weave.Tx, error) {
	tx := new(Tx)
	err := tx.Unmarshal(bz)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the message carried by the transaction.
func (tx *Tx) GetMsg() (weave.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrState, "transaction carries no message")
	}
	return tx.Msg, nil
}

func (tx *Tx) GetFees() *cash.FeeInfo {
	return tx.Fees
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. Signatures are not part of the
// signed payload.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset signatures, as they are not part of the sign bytes
	signatures := tx.Signatures
	tx.Signatures = nil
	bz, err := tx.Marshal()
	tx.Signatures = signatures
	return bz, err
}

// Message field numbers. Numbers must be kept in sync with codec.proto.
const (
	fieldFees       = 1
	fieldSignatures = 2

	fieldCashSend       = 20
	fieldCashConf       = 21
	fieldUpgradeSchema  = 29
	fieldCreatePool     = 51
	fieldAddOperator    = 52
	fieldRemoveOperator = 53
	fieldSetToken       = 54
	fieldSetReceiver    = 55
	fieldSetPerOperate  = 56
	fieldSetStartHeight = 57
	fieldWithdraw       = 58
	fieldMiningConf     = 59
)

// newMsg returns an empty message stored under given field number.
func newMsg(field int) weave.Msg {
	switch field {
	case fieldCashSend:
		return &cash.SendMsg{}
	case fieldCashConf:
		return &cash.UpdateConfigurationMsg{}
	case fieldUpgradeSchema:
		return &migration.UpgradeSchemaMsg{}
	case fieldCreatePool:
		return &mining.CreatePoolMsg{}
	case fieldAddOperator:
		return &mining.AddOperatorMsg{}
	case fieldRemoveOperator:
		return &mining.RemoveOperatorMsg{}
	case fieldSetToken:
		return &mining.SetTokenMsg{}
	case fieldSetReceiver:
		return &mining.SetReceiverMsg{}
	case fieldSetPerOperate:
		return &mining.SetPerOperateAmountMsg{}
	case fieldSetStartHeight:
		return &mining.SetStartHeightMsg{}
	case fieldWithdraw:
		return &mining.WithdrawMsg{}
	case fieldMiningConf:
		return &mining.UpdateConfigurationMsg{}
	}
	return nil
}

// msgField returns the field number a message is stored under.
func msgField(msg weave.Msg) (int, error) {
	switch msg.(type) {
	case *cash.SendMsg:
		return fieldCashSend, nil
	case *cash.UpdateConfigurationMsg:
		return fieldCashConf, nil
	case *migration.UpgradeSchemaMsg:
		return fieldUpgradeSchema, nil
	case *mining.CreatePoolMsg:
		return fieldCreatePool, nil
	case *mining.AddOperatorMsg:
		return fieldAddOperator, nil
	case *mining.RemoveOperatorMsg:
		return fieldRemoveOperator, nil
	case *mining.SetTokenMsg:
		return fieldSetToken, nil
	case *mining.SetReceiverMsg:
		return fieldSetReceiver, nil
	case *mining.SetPerOperateAmountMsg:
		return fieldSetPerOperate, nil
	case *mining.SetStartHeightMsg:
		return fieldSetStartHeight, nil
	case *mining.WithdrawMsg:
		return fieldWithdraw, nil
	case *mining.UpdateConfigurationMsg:
		return fieldMiningConf, nil
	}
	return 0, errors.Wrapf(errors.ErrType, "unsupported message %T", msg)
}

func (tx *Tx) Marshal() ([]byte, error) {
	var e codec.Encoder
	if tx.Fees != nil {
		if err := e.Message(fieldFees, tx.Fees); err != nil {
			return nil, err
		}
	}
	for i, sig := range tx.Signatures {
		if sig == nil {
			return nil, errors.Wrapf(errors.ErrEmpty, "signature %d", i)
		}
		if err := e.Message(fieldSignatures, sig); err != nil {
			return nil, err
		}
	}
	if tx.Msg != nil {
		field, err := msgField(tx.Msg)
		if err != nil {
			return nil, err
		}
		if err := e.Message(field, tx.Msg); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, err := d.Next()
		if err != nil {
			return err
		}
		switch field {
		case fieldFees:
			tx.Fees = &cash.FeeInfo{}
			err = d.Message(tx.Fees)
		case fieldSignatures:
			var sig sigs.StdSignature
			err = d.Message(&sig)
			tx.Signatures = append(tx.Signatures, &sig)
		default:
			msg := newMsg(field)
			if msg == nil {
				err = d.Skip()
				break
			}
			if tx.Msg != nil {
				return errors.Wrap(errors.ErrInput, "transaction carries more than one message")
			}
			err = d.Message(msg)
			tx.Msg = msg
		}
		if err != nil {
			return errors.Wrapf(err, "field %d", field)
		}
	}
	return nil
}
