package mining

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x/cash"
)

// Controller gives access to pool state and implements the pool operations
// that involve more than a single entity. It can be used by other extensions.
type Controller struct {
	pools  orm.ModelBucket
	rounds orm.ModelBucket
	ledger fundingLedger
}

// NewController returns a controller that moves funds using given cash
// controller.
func NewController(cashctrl cash.Controller) *Controller {
	return &Controller{
		pools:  NewPoolBucket(),
		rounds: NewRoundBucket(),
		ledger: fundingLedger{cash: cashctrl},
	}
}

// Pool returns the pool with given ID.
func (c *Controller) Pool(db weave.ReadOnlyKVStore, poolID []byte) (*Pool, error) {
	var p Pool
	if err := c.pools.One(db, poolID, &p); err != nil {
		return nil, errors.Wrap(err, "cannot load pool")
	}
	return &p, nil
}

// Schedule returns the round accounting of the pool with given ID.
func (c *Controller) Schedule(db weave.ReadOnlyKVStore, poolID []byte) (*Pool, *Schedule, error) {
	p, err := c.Pool(db, poolID)
	if err != nil {
		return nil, nil, err
	}
	s, err := loadSchedule(db, c.rounds, poolID, p)
	if err != nil {
		return nil, nil, err
	}
	return p, s, nil
}

// IsOperator returns true if given address may withdraw from the pool.
func (c *Controller) IsOperator(db weave.ReadOnlyKVStore, poolID []byte, addr weave.Address) (bool, error) {
	p, err := c.Pool(db, poolID)
	if err != nil {
		return false, err
	}
	return p.IsOperator(addr), nil
}

// ObtainSurplus returns the pool funding that was not withdrawn yet.
func (c *Controller) ObtainSurplus(db weave.ReadOnlyKVStore, poolID []byte) (int64, error) {
	_, s, err := c.Schedule(db, poolID)
	if err != nil {
		return 0, err
	}
	return s.Surplus(), nil
}

// ObtainTotalDebt returns the amount withdrawn from the pool so far.
func (c *Controller) ObtainTotalDebt(db weave.ReadOnlyKVStore, poolID []byte) (int64, error) {
	_, s, err := c.Schedule(db, poolID)
	if err != nil {
		return 0, err
	}
	return s.TotalDebt(), nil
}

// RoundInfo returns a single round of the pool. Rounds are 1 indexed.
func (c *Controller) RoundInfo(db weave.ReadOnlyKVStore, poolID []byte, index uint32) (*Round, error) {
	if index == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "round 0")
	}
	var r Round
	if err := c.rounds.One(db, RoundKey(poolID, index), &r); err != nil {
		return nil, errors.Wrapf(err, "round %d", index)
	}
	return &r, nil
}

// PullRoundInfos returns all rounds of the pool, ordered by index.
func (c *Controller) PullRoundInfos(db weave.ReadOnlyKVStore, poolID []byte) ([]Round, error) {
	_, s, err := c.Schedule(db, poolID)
	if err != nil {
		return nil, err
	}
	return s.AllRounds(), nil
}

// checkSetToken returns an error if the pool currency can no longer be
// changed.
func (c *Controller) checkSetToken(ctx weave.Context, db weave.ReadOnlyKVStore, poolID []byte, p *Pool) error {
	height, ok := weave.GetHeight(ctx)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "block height not in context")
	}
	if height >= p.StartHeight {
		return errors.Wrapf(ErrMiningStarted, "started at height %d", p.StartHeight)
	}
	s, err := loadSchedule(db, c.rounds, poolID, p)
	if err != nil {
		return err
	}
	if len(s.Rounds) != 0 {
		return errors.Wrap(ErrMiningStarted, "rounds already open")
	}
	return nil
}

// setToken configures the pool currency and funding and reconciles the custody
// wallet balance. The pool is not persisted.
func (c *Controller) setToken(ctx weave.Context, db weave.KVStore, poolID []byte, p *Pool, ticker string, total int64) error {
	if err := c.checkSetToken(ctx, db, poolID, p); err != nil {
		return err
	}
	// Funds of a previous currency are returned before the new one is
	// pulled in.
	if p.Ticker != "" && p.Ticker != ticker {
		if err := c.ledger.reconcile(db, p.Address, p.Admin, p.Ticker, 0); err != nil {
			return errors.Wrapf(err, "release %s", p.Ticker)
		}
	}
	if err := c.ledger.reconcile(db, p.Address, p.Admin, ticker, total); err != nil {
		return err
	}
	p.Ticker = ticker
	p.TotalFunding = total
	return nil
}

// withdrawal is a withdraw operation computed but not applied yet.
type withdrawal struct {
	poolID   []byte
	pool     *Pool
	schedule *Schedule
	// genesis is set when the first round of the pool was opened.
	genesis  bool
	consumed *Consumption
}

// planWithdraw runs all withdraw checks and computes the round accounting
// change. Nothing is written.
func (c *Controller) planWithdraw(ctx weave.Context, db weave.ReadOnlyKVStore, poolID []byte, operator weave.Address) (*withdrawal, error) {
	p, err := c.Pool(db, poolID)
	if err != nil {
		return nil, err
	}
	if !p.IsOperator(operator) {
		return nil, errors.Wrapf(ErrOperationNotAllowed, "%s is not an operator", operator)
	}
	if p.Ticker == "" {
		return nil, ErrTokenNotInitialized
	}
	height, ok := weave.GetHeight(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block height not in context")
	}
	if height < p.StartHeight {
		return nil, errors.Wrapf(ErrNotStartedYet, "starts at height %d", p.StartHeight)
	}

	s, err := loadSchedule(db, c.rounds, poolID, p)
	if err != nil {
		return nil, err
	}
	genesis, err := s.EnsureRoundOpen()
	if err != nil {
		return nil, err
	}
	cons, err := s.Consume(p.PerOperateAmount)
	if err != nil {
		return nil, err
	}
	return &withdrawal{
		poolID:   poolID,
		pool:     p,
		schedule: s,
		genesis:  genesis,
		consumed: cons,
	}, nil
}

// Withdraw pays the per operate amount out of the active round to the pool
// receiver. The round that the payout exhausts is closed and the next one is
// opened. Funds are moved before any round is persisted so that a failed
// transfer leaves the pool unchanged.
func (c *Controller) Withdraw(ctx weave.Context, db weave.KVStore, poolID []byte, operator weave.Address) ([]Event, error) {
	w, err := c.planWithdraw(ctx, db, poolID, operator)
	if err != nil {
		return nil, err
	}
	p, cons := w.pool, w.consumed

	if err := c.ledger.transfer(db, p.Address, p.Receiver, p.Ticker, cons.Amount); err != nil {
		return nil, errors.Wrap(err, "payout")
	}

	changed := []uint32{cons.Round}
	if cons.Opened {
		changed = append(changed, cons.NextRound)
	}
	if err := saveRounds(db, c.rounds, w.schedule, changed...); err != nil {
		return nil, err
	}

	var events []Event
	if w.genesis {
		first := w.schedule.Rounds[0]
		events = append(events, OpenFirstRoundEvent{PoolID: poolID, Amount: first.Amount})
	}
	events = append(events, WithdrawEvent{
		PoolID:   poolID,
		Receiver: p.Receiver,
		Ticker:   p.Ticker,
		Amount:   cons.Amount,
		Round:    cons.Round,
	})
	if cons.Opened {
		events = append(events, OpenNextRoundEvent{PoolID: poolID, NextRound: cons.NextRound, Amount: cons.NextAmount})
	}
	return events, nil
}
