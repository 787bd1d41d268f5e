package mining

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
)

// RegisterQuery registers pool and round buckets for querying.
func RegisterQuery(qr weave.QueryRouter) {
	NewPoolBucket().Register("miningpools", qr)
	NewRoundBucket().Register("miningrounds", qr)
}

// RegisterRoutes registers handlers for all mining messages.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, cashctrl cash.Controller) {
	r = migration.SchemaMigratingRegistry("mining", r)

	ctrl := NewController(cashctrl)

	r.Handle(&CreatePoolMsg{}, &createPoolHandler{auth: auth, ctrl: ctrl})
	r.Handle(&AddOperatorMsg{}, &addOperatorHandler{auth: auth, ctrl: ctrl})
	r.Handle(&RemoveOperatorMsg{}, &removeOperatorHandler{auth: auth, ctrl: ctrl})
	r.Handle(&SetTokenMsg{}, &setTokenHandler{auth: auth, ctrl: ctrl})
	r.Handle(&SetReceiverMsg{}, &setReceiverHandler{auth: auth, ctrl: ctrl})
	r.Handle(&SetPerOperateAmountMsg{}, &setPerOperateAmountHandler{auth: auth, ctrl: ctrl})
	r.Handle(&SetStartHeightMsg{}, &setStartHeightHandler{auth: auth, ctrl: ctrl})
	r.Handle(&WithdrawMsg{}, &withdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler(confPkg, &Configuration{}, auth, migration.CurrentAdmin))
}

type createPoolHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*createPoolHandler)(nil)

func (h *createPoolHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *createPoolHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	poolID, err := poolSeq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "pool ID")
	}
	pool := Pool{
		Metadata:         &weave.Metadata{Schema: 1},
		Admin:            msg.Admin,
		Receiver:         msg.Receiver,
		PerOperateAmount: msg.PerOperateAmount,
		StartHeight:      msg.StartHeight,
		Address:          PoolAddress(poolID),
	}
	events := []Event{CreatePoolEvent{PoolID: poolID, Admin: msg.Admin}}
	if msg.Ticker != "" {
		if err := h.ctrl.setToken(ctx, db, poolID, &pool, msg.Ticker, msg.TotalFunding); err != nil {
			return nil, errors.Wrap(err, "fund pool")
		}
		events = append(events, SetTokenEvent{PoolID: poolID, Ticker: msg.Ticker, TotalAmount: msg.TotalFunding})
	}
	if _, err := h.ctrl.pools.Put(db, poolID, &pool); err != nil {
		return nil, errors.Wrap(err, "store pool")
	}

	weave.GetLogger(ctx).Info("mining pool created",
		"pool", poolRef(poolID),
		"admin", msg.Admin,
		"ticker", msg.Ticker,
		"funding", msg.TotalFunding)
	return &weave.DeliverResult{Data: poolID, Tags: collectTags(events...)}, nil
}

func (h *createPoolHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreatePoolMsg, error) {
	var msg CreatePoolMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	if err := msg.Receiver.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "receiver: %s", err)
	}
	if msg.Ticker != "" && !coin.IsCC(msg.Ticker) {
		return nil, errors.Wrapf(ErrInvalidAddress, "ticker %q", msg.Ticker)
	}
	height, ok := weave.GetHeight(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block height not in context")
	}
	if msg.StartHeight <= height {
		return nil, errors.Wrapf(ErrStartHeightMissed, "start height %d, current height %d", msg.StartHeight, height)
	}
	return &msg, nil
}

// loadAdminPool returns the pool with given ID after ensuring that its admin
// signed the transaction.
func loadAdminPool(ctx weave.Context, db weave.ReadOnlyKVStore, auth x.Authenticator, ctrl *Controller, poolID []byte) (*Pool, error) {
	pool, err := ctrl.Pool(db, poolID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(ctx, auth, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

type addOperatorHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*addOperatorHandler)(nil)

func (h *addOperatorHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *addOperatorHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.pools.Put(db, msg.PoolID, pool); err != nil {
		return nil, errors.Wrap(err, "store pool")
	}
	weave.GetLogger(ctx).Info("mining operator added", "pool", poolRef(msg.PoolID), "operator", msg.Operator)
	event := OperatorEvent{PoolID: msg.PoolID, Operator: msg.Operator, Added: true}
	return &weave.DeliverResult{Tags: event.Tags()}, nil
}

// validate returns the pool with the operator already added.
func (h *addOperatorHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*AddOperatorMsg, *Pool, error) {
	var msg AddOperatorMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	pool, err := loadAdminPool(ctx, db, h.auth, h.ctrl, msg.PoolID)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.AddOperator(msg.Operator); err != nil {
		return nil, nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if conf.MaxOperators > 0 && len(pool.Operators) > int(conf.MaxOperators) {
		return nil, nil, errors.Wrapf(errors.ErrState, "pool cannot have more than %d operators", conf.MaxOperators)
	}
	return &msg, pool, nil
}

type removeOperatorHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*removeOperatorHandler)(nil)

func (h *removeOperatorHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *removeOperatorHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.pools.Put(db, msg.PoolID, pool); err != nil {
		return nil, errors.Wrap(err, "store pool")
	}
	weave.GetLogger(ctx).Info("mining operator removed", "pool", poolRef(msg.PoolID), "operator", msg.Operator)
	event := OperatorEvent{PoolID: msg.PoolID, Operator: msg.Operator, Added: false}
	return &weave.DeliverResult{Tags: event.Tags()}, nil
}

func (h *removeOperatorHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*RemoveOperatorMsg, *Pool, error) {
	var msg RemoveOperatorMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	pool, err := loadAdminPool(ctx, db, h.auth, h.ctrl, msg.PoolID)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.RemoveOperator(msg.Operator); err != nil {
		return nil, nil, err
	}
	return &msg, pool, nil
}

type setTokenHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*setTokenHandler)(nil)

func (h *setTokenHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *setTokenHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.setToken(ctx, db, msg.PoolID, pool, msg.Ticker, msg.TotalAmount); err != nil {
		return nil, err
	}
	if _, err := h.ctrl.pools.Put(db, msg.PoolID, pool); err != nil {
		return nil, errors.Wrap(err, "store pool")
	}
	weave.GetLogger(ctx).Info("mining token set",
		"pool", poolRef(msg.PoolID),
		"ticker", msg.Ticker,
		"total", msg.TotalAmount)
	event := SetTokenEvent{PoolID: msg.PoolID, Ticker: msg.Ticker, TotalAmount: msg.TotalAmount}
	return &weave.DeliverResult{Tags: event.Tags()}, nil
}

func (h *setTokenHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetTokenMsg, *Pool, error) {
	var msg SetTokenMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	pool, err := loadAdminPool(ctx, db, h.auth, h.ctrl, msg.PoolID)
	if err != nil {
		return nil, nil, err
	}
	if !coin.IsCC(msg.Ticker) {
		return nil, nil, errors.Wrapf(ErrInvalidAddress, "ticker %q", msg.Ticker)
	}
	if msg.TotalAmount <= 0 {
		return nil, nil, errors.Wrap(ErrQuantity, "total amount must be greater than zero")
	}
	if err := h.ctrl.checkSetToken(ctx, db, msg.PoolID, pool); err != nil {
		return nil, nil, err
	}
	return &msg, pool, nil
}

type setReceiverHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*setReceiverHandler)(nil)

func (h *setReceiverHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *setReceiverHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	pool.Receiver = msg.Receiver
	if _, err := h.ctrl.pools.Put(db, msg.PoolID, pool); err != nil {
		return nil, errors.Wrap(err, "store pool")
	}
	weave.GetLogger(ctx).Info("mining receiver set", "pool", poolRef(msg.PoolID), "receiver", msg.Receiver)
	event := SetReceiverEvent{PoolID: msg.PoolID, Receiver: msg.Receiver}
	return &weave.DeliverResult{Tags: event.Tags()}, nil
}

func (h *setReceiverHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetReceiverMsg, *Pool, error) {
	var msg SetReceiverMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	pool, err := loadAdminPool(ctx, db, h.auth, h.ctrl, msg.PoolID)
	if err != nil {
		return nil, nil, err
	}
	if err := msg.Receiver.Validate(); err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidAddress, "receiver: %s", err)
	}
	return &msg, pool, nil
}

type setPerOperateAmountHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*setPerOperateAmountHandler)(nil)

func (h *setPerOperateAmountHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *setPerOperateAmountHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	pool.PerOperateAmount = msg.PerOperateAmount
	if _, err := h.ctrl.pools.Put(db, msg.PoolID, pool); err != nil {
		return nil, errors.Wrap(err, "store pool")
	}
	weave.GetLogger(ctx).Info("mining per operate amount set", "pool", poolRef(msg.PoolID), "amount", msg.PerOperateAmount)
	event := SetPerOperateAmountEvent{PoolID: msg.PoolID, PerOperateAmount: msg.PerOperateAmount}
	return &weave.DeliverResult{Tags: event.Tags()}, nil
}

func (h *setPerOperateAmountHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetPerOperateAmountMsg, *Pool, error) {
	var msg SetPerOperateAmountMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	pool, err := loadAdminPool(ctx, db, h.auth, h.ctrl, msg.PoolID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, pool, nil
}

type setStartHeightHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*setStartHeightHandler)(nil)

func (h *setStartHeightHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *setStartHeightHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, pool, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	pool.StartHeight = msg.StartHeight
	if _, err := h.ctrl.pools.Put(db, msg.PoolID, pool); err != nil {
		return nil, errors.Wrap(err, "store pool")
	}
	weave.GetLogger(ctx).Info("mining start height set", "pool", poolRef(msg.PoolID), "height", msg.StartHeight)
	event := SetStartHeightEvent{PoolID: msg.PoolID, StartHeight: msg.StartHeight}
	return &weave.DeliverResult{Tags: event.Tags()}, nil
}

func (h *setStartHeightHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SetStartHeightMsg, *Pool, error) {
	var msg SetStartHeightMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	pool, err := loadAdminPool(ctx, db, h.auth, h.ctrl, msg.PoolID)
	if err != nil {
		return nil, nil, err
	}
	return &msg, pool, nil
}

type withdrawHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*withdrawHandler)(nil)

func (h *withdrawHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	msg, operator, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.planWithdraw(ctx, db, msg.PoolID, operator); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *withdrawHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, operator, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	events, err := h.ctrl.Withdraw(ctx, db, msg.PoolID, operator)
	if err != nil {
		return nil, err
	}
	log := weave.GetLogger(ctx)
	for _, e := range events {
		switch e := e.(type) {
		case WithdrawEvent:
			log.Info("mining withdraw",
				"pool", poolRef(msg.PoolID),
				"receiver", e.Receiver,
				"amount", e.Amount,
				"round", e.Round)
		case OpenNextRoundEvent:
			log.Info("mining round opened",
				"pool", poolRef(msg.PoolID),
				"round", e.NextRound,
				"amount", e.Amount)
		case OpenFirstRoundEvent:
			log.Info("mining round opened",
				"pool", poolRef(msg.PoolID),
				"round", 1,
				"amount", e.Amount)
		}
	}
	return &weave.DeliverResult{Tags: collectTags(events...)}, nil
}

func (h *withdrawHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*WithdrawMsg, weave.Address, error) {
	var msg WithdrawMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Operator) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "operator signature required")
	}
	return &msg, msg.Operator, nil
}
