package mining

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/x/cash"
)

// GenesisPool declares a pool created at chain start.
type GenesisPool struct {
	Admin            weave.Address   `json:"admin"`
	Operators        []weave.Address `json:"operators"`
	Ticker           string          `json:"ticker"`
	Receiver         weave.Address   `json:"receiver"`
	PerOperateAmount int64           `json:"per_operate_amount"`
	StartHeight      int64           `json:"start_height"`
	TotalFunding     int64           `json:"total_funding"`
}

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis stores the configuration and creates all declared pools. Pool
// funding is pulled from the admin wallet, so cash genesis must be loaded
// first.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	conf := Configuration{
		Metadata: &weave.Metadata{Schema: 1},
	}
	switch err := gconf.InitConfig(db, opts, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
		// Configuration is optional.
	default:
		return errors.Wrap(err, "cannot initialize gconf based configuration")
	}

	var pools []GenesisPool
	if err := opts.ReadOptions("mining", &pools); err != nil {
		return err
	}
	ctrl := NewController(cash.NewController(cash.NewBucket()))
	for i, gp := range pools {
		if _, err := createGenesisPool(db, ctrl, gp); err != nil {
			return errors.Wrapf(err, "pool %d", i)
		}
	}
	return nil
}

func createGenesisPool(db weave.KVStore, ctrl *Controller, gp GenesisPool) ([]byte, error) {
	poolID, err := poolSeq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "pool ID")
	}
	pool := Pool{
		Metadata:         &weave.Metadata{Schema: 1},
		Admin:            gp.Admin,
		Ticker:           gp.Ticker,
		Receiver:         gp.Receiver,
		PerOperateAmount: gp.PerOperateAmount,
		StartHeight:      gp.StartHeight,
		TotalFunding:     gp.TotalFunding,
		Address:          PoolAddress(poolID),
	}
	for _, op := range gp.Operators {
		if err := pool.AddOperator(op); err != nil {
			return nil, err
		}
	}
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	if pool.Ticker != "" {
		if err := ctrl.ledger.reconcile(db, pool.Address, pool.Admin, pool.Ticker, pool.TotalFunding); err != nil {
			return nil, errors.Wrap(err, "fund pool")
		}
	}
	if _, err := ctrl.pools.Put(db, poolID, &pool); err != nil {
		return nil, errors.Wrap(err, "store pool")
	}
	return poolID, nil
}
