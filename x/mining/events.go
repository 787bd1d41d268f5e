package mining

import (
	"strconv"

	"github.com/iov-one/weave"
	"github.com/tendermint/tendermint/libs/common"
)

// Event is a notification emitted by a successful state change. Events are
// published as ABCI tags so that clients can subscribe and search for them.
type Event interface {
	Tags() []common.KVPair
}

type SetReceiverEvent struct {
	PoolID   []byte
	Receiver weave.Address
}

func (e SetReceiverEvent) Tags() []common.KVPair {
	return tags("SetReceiver", e.PoolID,
		"receiver", e.Receiver.String())
}

type SetTokenEvent struct {
	PoolID      []byte
	Ticker      string
	TotalAmount int64
}

func (e SetTokenEvent) Tags() []common.KVPair {
	return tags("SetToken", e.PoolID,
		"token", e.Ticker,
		"totalAmount", itoa(e.TotalAmount))
}

type SetPerOperateAmountEvent struct {
	PoolID           []byte
	PerOperateAmount int64
}

func (e SetPerOperateAmountEvent) Tags() []common.KVPair {
	return tags("SetPerOperateAmount", e.PoolID,
		"perOperateAmount", itoa(e.PerOperateAmount))
}

type SetStartHeightEvent struct {
	PoolID      []byte
	StartHeight int64
}

func (e SetStartHeightEvent) Tags() []common.KVPair {
	return tags("SetStartHeight", e.PoolID,
		"startHeight", itoa(e.StartHeight))
}

type WithdrawEvent struct {
	PoolID   []byte
	Receiver weave.Address
	Ticker   string
	Amount   int64
	Round    uint32
}

func (e WithdrawEvent) Tags() []common.KVPair {
	return tags("Withdraw", e.PoolID,
		"receiver", e.Receiver.String(),
		"token", e.Ticker,
		"amount", itoa(e.Amount),
		"round", itoa(int64(e.Round)))
}

type OpenNextRoundEvent struct {
	PoolID    []byte
	NextRound uint32
	Amount    int64
}

func (e OpenNextRoundEvent) Tags() []common.KVPair {
	return tags("OpenNextRound", e.PoolID,
		"nextRound", itoa(int64(e.NextRound)),
		"amount", itoa(e.Amount))
}

// OpenFirstRoundEvent is emitted by the first withdrawal of a pool, when
// its first round is opened. The same withdrawal can exhaust that round and
// emit OpenNextRoundEvent as well.
type OpenFirstRoundEvent struct {
	PoolID []byte
	Amount int64
}

func (e OpenFirstRoundEvent) Tags() []common.KVPair {
	return tags("OpenFirstRound", e.PoolID,
		"round", "1",
		"amount", itoa(e.Amount))
}

type OperatorEvent struct {
	PoolID   []byte
	Operator weave.Address
	Added    bool
}

func (e OperatorEvent) Tags() []common.KVPair {
	name := "RemoveOperator"
	if e.Added {
		name = "AddOperator"
	}
	return tags(name, e.PoolID, "operator", e.Operator.String())
}

type CreatePoolEvent struct {
	PoolID []byte
	Admin  weave.Address
}

func (e CreatePoolEvent) Tags() []common.KVPair {
	return tags("CreatePool", e.PoolID, "admin", e.Admin.String())
}

// tags builds a tag list for an event. Each key is prefixed with the event
// name, for example "Withdraw.amount". Every event carries the pool
// reference.
func tags(event string, poolID []byte, keyvals ...string) []common.KVPair {
	res := make([]common.KVPair, 0, len(keyvals)/2+1)
	res = append(res, common.KVPair{
		Key:   []byte(event + ".pool"),
		Value: []byte(poolRef(poolID)),
	})
	for i := 0; i+1 < len(keyvals); i += 2 {
		res = append(res, common.KVPair{
			Key:   []byte(event + "." + keyvals[i]),
			Value: []byte(keyvals[i+1]),
		})
	}
	return res
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// collectTags flattens tags of all given events.
func collectTags(events ...Event) []common.KVPair {
	var res []common.KVPair
	for _, e := range events {
		res = append(res, e.Tags()...)
	}
	return res
}
