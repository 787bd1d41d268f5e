package mining

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave-mining/codec"
)

// Types in this file mirror the messages declared in codec.proto. Field
// numbers must be kept in sync with the schema.

type Pool struct {
	Metadata         *weave.Metadata `json:"metadata,omitempty"`
	Admin            weave.Address   `json:"admin,omitempty"`
	Operators        []weave.Address `json:"operators,omitempty"`
	Ticker           string          `json:"ticker,omitempty"`
	Receiver         weave.Address   `json:"receiver,omitempty"`
	PerOperateAmount int64           `json:"per_operate_amount,omitempty"`
	StartHeight      int64           `json:"start_height,omitempty"`
	TotalFunding     int64           `json:"total_funding,omitempty"`
	Address          weave.Address   `json:"address,omitempty"`
}

func (m *Pool) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *Pool) Marshal() ([]byte, error) {
	var e codec.Encoder
	if err := marshalMetadata(&e, m.Metadata); err != nil {
		return nil, err
	}
	e.Raw(2, m.Admin)
	e.RepeatedRaw(3, addressesToRaw(m.Operators))
	e.Text(4, m.Ticker)
	e.Raw(5, m.Receiver)
	e.Int(6, m.PerOperateAmount)
	e.Int(7, m.StartHeight)
	e.Int(8, m.TotalFunding)
	e.Raw(9, m.Address)
	return e.Result(), nil
}

func (m *Pool) Unmarshal(raw []byte) error {
	*m = Pool{}
	return unmarshalFields(raw, func(d *codec.Decoder, field int) (err error) {
		switch field {
		case 1:
			m.Metadata, err = unmarshalMetadata(d)
		case 2:
			m.Admin, err = decodeAddress(d)
		case 3:
			var a weave.Address
			a, err = decodeAddress(d)
			m.Operators = append(m.Operators, a)
		case 4:
			m.Ticker, err = d.Text()
		case 5:
			m.Receiver, err = decodeAddress(d)
		case 6:
			m.PerOperateAmount, err = d.Int()
		case 7:
			m.StartHeight, err = d.Int()
		case 8:
			m.TotalFunding, err = d.Int()
		case 9:
			m.Address, err = decodeAddress(d)
		default:
			err = d.Skip()
		}
		return err
	})
}

type Round struct {
	Metadata *weave.Metadata `json:"metadata,omitempty"`
	PoolID   []byte          `json:"pool_id,omitempty"`
	Index    uint32          `json:"index,omitempty"`
	Amount   int64           `json:"amount,omitempty"`
	Debt     int64           `json:"debt,omitempty"`
}

func (m *Round) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *Round) Marshal() ([]byte, error) {
	var e codec.Encoder
	if err := marshalMetadata(&e, m.Metadata); err != nil {
		return nil, err
	}
	e.Raw(2, m.PoolID)
	e.Uint(3, uint64(m.Index))
	e.Int(4, m.Amount)
	e.Int(5, m.Debt)
	return e.Result(), nil
}

func (m *Round) Unmarshal(raw []byte) error {
	*m = Round{}
	return unmarshalFields(raw, func(d *codec.Decoder, field int) (err error) {
		switch field {
		case 1:
			m.Metadata, err = unmarshalMetadata(d)
		case 2:
			m.PoolID, err = d.Raw()
		case 3:
			var v uint64
			v, err = d.Uint()
			m.Index = uint32(v)
		case 4:
			m.Amount, err = d.Int()
		case 5:
			m.Debt, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
}

type Configuration struct {
	Metadata     *weave.Metadata `json:"metadata,omitempty"`
	Owner        weave.Address   `json:"owner,omitempty"`
	MaxOperators int32           `json:"max_operators,omitempty"`
}

func (m *Configuration) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *Configuration) GetOwner() weave.Address { return m.Owner }

func (m *Configuration) Marshal() ([]byte, error) {
	var e codec.Encoder
	if err := marshalMetadata(&e, m.Metadata); err != nil {
		return nil, err
	}
	e.Raw(2, m.Owner)
	e.Int(3, int64(m.MaxOperators))
	return e.Result(), nil
}

func (m *Configuration) Unmarshal(raw []byte) error {
	*m = Configuration{}
	return unmarshalFields(raw, func(d *codec.Decoder, field int) (err error) {
		switch field {
		case 1:
			m.Metadata, err = unmarshalMetadata(d)
		case 2:
			m.Owner, err = decodeAddress(d)
		case 3:
			var v int64
			v, err = d.Int()
			m.MaxOperators = int32(v)
		default:
			err = d.Skip()
		}
		return err
	})
}

type CreatePoolMsg struct {
	Metadata         *weave.Metadata `json:"metadata,omitempty"`
	Admin            weave.Address   `json:"admin,omitempty"`
	Ticker           string          `json:"ticker,omitempty"`
	Receiver         weave.Address   `json:"receiver,omitempty"`
	PerOperateAmount int64           `json:"per_operate_amount,omitempty"`
	StartHeight      int64           `json:"start_height,omitempty"`
	TotalFunding     int64           `json:"total_funding,omitempty"`
}

func (m *CreatePoolMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *CreatePoolMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	if err := marshalMetadata(&e, m.Metadata); err != nil {
		return nil, err
	}
	e.Raw(2, m.Admin)
	e.Text(3, m.Ticker)
	e.Raw(4, m.Receiver)
	e.Int(5, m.PerOperateAmount)
	e.Int(6, m.StartHeight)
	e.Int(7, m.TotalFunding)
	return e.Result(), nil
}

func (m *CreatePoolMsg) Unmarshal(raw []byte) error {
	*m = CreatePoolMsg{}
	return unmarshalFields(raw, func(d *codec.Decoder, field int) (err error) {
		switch field {
		case 1:
			m.Metadata, err = unmarshalMetadata(d)
		case 2:
			m.Admin, err = decodeAddress(d)
		case 3:
			m.Ticker, err = d.Text()
		case 4:
			m.Receiver, err = decodeAddress(d)
		case 5:
			m.PerOperateAmount, err = d.Int()
		case 6:
			m.StartHeight, err = d.Int()
		case 7:
			m.TotalFunding, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
}

type AddOperatorMsg struct {
	Metadata *weave.Metadata `json:"metadata,omitempty"`
	PoolID   []byte          `json:"pool_id,omitempty"`
	Operator weave.Address   `json:"operator,omitempty"`
}

func (m *AddOperatorMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *AddOperatorMsg) Marshal() ([]byte, error) {
	return marshalPoolAddress(m.Metadata, m.PoolID, m.Operator)
}

func (m *AddOperatorMsg) Unmarshal(raw []byte) error {
	*m = AddOperatorMsg{}
	return unmarshalPoolAddress(raw, &m.Metadata, &m.PoolID, &m.Operator)
}

type RemoveOperatorMsg struct {
	Metadata *weave.Metadata `json:"metadata,omitempty"`
	PoolID   []byte          `json:"pool_id,omitempty"`
	Operator weave.Address   `json:"operator,omitempty"`
}

func (m *RemoveOperatorMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *RemoveOperatorMsg) Marshal() ([]byte, error) {
	return marshalPoolAddress(m.Metadata, m.PoolID, m.Operator)
}

func (m *RemoveOperatorMsg) Unmarshal(raw []byte) error {
	*m = RemoveOperatorMsg{}
	return unmarshalPoolAddress(raw, &m.Metadata, &m.PoolID, &m.Operator)
}

type SetTokenMsg struct {
	Metadata    *weave.Metadata `json:"metadata,omitempty"`
	PoolID      []byte          `json:"pool_id,omitempty"`
	Ticker      string          `json:"ticker,omitempty"`
	TotalAmount int64           `json:"total_amount,omitempty"`
}

func (m *SetTokenMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *SetTokenMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	if err := marshalMetadata(&e, m.Metadata); err != nil {
		return nil, err
	}
	e.Raw(2, m.PoolID)
	e.Text(3, m.Ticker)
	e.Int(4, m.TotalAmount)
	return e.Result(), nil
}

func (m *SetTokenMsg) Unmarshal(raw []byte) error {
	*m = SetTokenMsg{}
	return unmarshalFields(raw, func(d *codec.Decoder, field int) (err error) {
		switch field {
		case 1:
			m.Metadata, err = unmarshalMetadata(d)
		case 2:
			m.PoolID, err = d.Raw()
		case 3:
			m.Ticker, err = d.Text()
		case 4:
			m.TotalAmount, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
}

type SetReceiverMsg struct {
	Metadata *weave.Metadata `json:"metadata,omitempty"`
	PoolID   []byte          `json:"pool_id,omitempty"`
	Receiver weave.Address   `json:"receiver,omitempty"`
}

func (m *SetReceiverMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *SetReceiverMsg) Marshal() ([]byte, error) {
	return marshalPoolAddress(m.Metadata, m.PoolID, m.Receiver)
}

func (m *SetReceiverMsg) Unmarshal(raw []byte) error {
	*m = SetReceiverMsg{}
	return unmarshalPoolAddress(raw, &m.Metadata, &m.PoolID, &m.Receiver)
}

type SetPerOperateAmountMsg struct {
	Metadata         *weave.Metadata `json:"metadata,omitempty"`
	PoolID           []byte          `json:"pool_id,omitempty"`
	PerOperateAmount int64           `json:"per_operate_amount,omitempty"`
}

func (m *SetPerOperateAmountMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *SetPerOperateAmountMsg) Marshal() ([]byte, error) {
	return marshalPoolInt(m.Metadata, m.PoolID, m.PerOperateAmount)
}

func (m *SetPerOperateAmountMsg) Unmarshal(raw []byte) error {
	*m = SetPerOperateAmountMsg{}
	return unmarshalPoolInt(raw, &m.Metadata, &m.PoolID, &m.PerOperateAmount)
}

type SetStartHeightMsg struct {
	Metadata    *weave.Metadata `json:"metadata,omitempty"`
	PoolID      []byte          `json:"pool_id,omitempty"`
	StartHeight int64           `json:"start_height,omitempty"`
}

func (m *SetStartHeightMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *SetStartHeightMsg) Marshal() ([]byte, error) {
	return marshalPoolInt(m.Metadata, m.PoolID, m.StartHeight)
}

func (m *SetStartHeightMsg) Unmarshal(raw []byte) error {
	*m = SetStartHeightMsg{}
	return unmarshalPoolInt(raw, &m.Metadata, &m.PoolID, &m.StartHeight)
}

type WithdrawMsg struct {
	Metadata *weave.Metadata `json:"metadata,omitempty"`
	PoolID   []byte          `json:"pool_id,omitempty"`
	Operator weave.Address   `json:"operator,omitempty"`
}

func (m *WithdrawMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *WithdrawMsg) Marshal() ([]byte, error) {
	return marshalPoolAddress(m.Metadata, m.PoolID, m.Operator)
}

func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	*m = WithdrawMsg{}
	return unmarshalPoolAddress(raw, &m.Metadata, &m.PoolID, &m.Operator)
}

type UpdateConfigurationMsg struct {
	Metadata *weave.Metadata `json:"metadata,omitempty"`
	Patch    *Configuration  `json:"patch,omitempty"`
}

func (m *UpdateConfigurationMsg) GetMetadata() *weave.Metadata { return m.Metadata }

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	var e codec.Encoder
	if err := marshalMetadata(&e, m.Metadata); err != nil {
		return nil, err
	}
	if m.Patch != nil {
		if err := e.Message(2, m.Patch); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	*m = UpdateConfigurationMsg{}
	return unmarshalFields(raw, func(d *codec.Decoder, field int) (err error) {
		switch field {
		case 1:
			m.Metadata, err = unmarshalMetadata(d)
		case 2:
			m.Patch = &Configuration{}
			err = d.Message(m.Patch)
		default:
			err = d.Skip()
		}
		return err
	})
}

// Several messages share the (metadata, pool_id, <value>) layout.

func marshalPoolAddress(meta *weave.Metadata, poolID []byte, addr weave.Address) ([]byte, error) {
	var e codec.Encoder
	if err := marshalMetadata(&e, meta); err != nil {
		return nil, err
	}
	e.Raw(2, poolID)
	e.Raw(3, addr)
	return e.Result(), nil
}

func unmarshalPoolAddress(raw []byte, meta **weave.Metadata, poolID *[]byte, addr *weave.Address) error {
	return unmarshalFields(raw, func(d *codec.Decoder, field int) (err error) {
		switch field {
		case 1:
			*meta, err = unmarshalMetadata(d)
		case 2:
			*poolID, err = d.Raw()
		case 3:
			*addr, err = decodeAddress(d)
		default:
			err = d.Skip()
		}
		return err
	})
}

func marshalPoolInt(meta *weave.Metadata, poolID []byte, v int64) ([]byte, error) {
	var e codec.Encoder
	if err := marshalMetadata(&e, meta); err != nil {
		return nil, err
	}
	e.Raw(2, poolID)
	e.Int(3, v)
	return e.Result(), nil
}

func unmarshalPoolInt(raw []byte, meta **weave.Metadata, poolID *[]byte, v *int64) error {
	return unmarshalFields(raw, func(d *codec.Decoder, field int) (err error) {
		switch field {
		case 1:
			*meta, err = unmarshalMetadata(d)
		case 2:
			*poolID, err = d.Raw()
		case 3:
			*v, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
}

func unmarshalFields(raw []byte, fn func(*codec.Decoder, int) error) error {
	d := codec.NewDecoder(raw)
	for d.More() {
		field, err := d.Next()
		if err != nil {
			return err
		}
		if err := fn(d, field); err != nil {
			return err
		}
	}
	return nil
}

func marshalMetadata(e *codec.Encoder, m *weave.Metadata) error {
	if m == nil {
		return nil
	}
	return e.Message(1, m)
}

func unmarshalMetadata(d *codec.Decoder) (*weave.Metadata, error) {
	var m weave.Metadata
	if err := d.Message(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeAddress(d *codec.Decoder) (weave.Address, error) {
	b, err := d.Raw()
	return weave.Address(b), err
}

func addressesToRaw(addrs []weave.Address) [][]byte {
	raw := make([][]byte, len(addrs))
	for i, a := range addrs {
		raw[i] = a
	}
	return raw
}
