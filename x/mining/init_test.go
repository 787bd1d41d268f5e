package mining

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
	"github.com/stretchr/testify/require"
)

func TestGenesisInitializer(t *testing.T) {
	var (
		admin    = weavetest.NewCondition().Address()
		owner    = weavetest.NewCondition().Address()
		receiver = weavetest.NewCondition().Address()
		operator = weavetest.NewCondition().Address()
	)

	db := store.MemStore()
	migration.MustInitPkg(db, "mining", "cash")
	cashctrl := cash.NewController(cash.NewBucket())
	mint(t, db, cashctrl, admin, 1000)

	genesis := map[string]interface{}{
		"conf": map[string]interface{}{
			"mining": Configuration{
				Metadata:     &weave.Metadata{Schema: 1},
				Owner:        owner,
				MaxOperators: 2,
			},
		},
		"mining": []GenesisPool{
			{
				Admin:            admin,
				Operators:        []weave.Address{operator},
				Ticker:           "IOV",
				Receiver:         receiver,
				PerOperateAmount: 10,
				StartHeight:      50,
				TotalFunding:     1000,
			},
			{
				Admin:            admin,
				Receiver:         receiver,
				PerOperateAmount: 1,
				StartHeight:      10,
			},
		},
	}
	opts := toOptions(t, genesis)

	var ini Initializer
	require.NoError(t, ini.FromGenesis(opts, weave.GenesisParams{}, db))

	conf, err := loadConf(db)
	require.NoError(t, err)
	require.Equal(t, owner, conf.Owner)
	require.Equal(t, int32(2), conf.MaxOperators)

	ctrl := NewController(cashctrl)
	funded, err := ctrl.Pool(db, weavetest.SequenceID(1))
	require.NoError(t, err)
	require.True(t, funded.IsOperator(operator))
	require.Equal(t, int64(1000), funded.TotalFunding)
	assertBalance(t, db, ctrl, funded.Address, 1000)
	assertBalance(t, db, ctrl, admin, 0)

	empty, err := ctrl.Pool(db, weavetest.SequenceID(2))
	require.NoError(t, err)
	require.Equal(t, "", empty.Ticker)
	require.Len(t, empty.Operators, 0)
}

func TestGenesisWithoutMining(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "mining")

	var ini Initializer
	require.NoError(t, ini.FromGenesis(toOptions(t, map[string]interface{}{}), weave.GenesisParams{}, db))

	conf, err := loadConf(db)
	require.NoError(t, err)
	require.Nil(t, conf.Owner)
}

func TestGenesisRejectsInvalidPool(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "mining", "cash")

	opts := toOptions(t, map[string]interface{}{
		"mining": []GenesisPool{
			{Admin: weavetest.NewCondition().Address(), StartHeight: 10},
		},
	})
	var ini Initializer
	require.Error(t, ini.FromGenesis(opts, weave.GenesisParams{}, db))
}

func toOptions(t testing.TB, genesis map[string]interface{}) weave.Options {
	t.Helper()
	raw, err := json.Marshal(genesis)
	if err != nil {
		t.Fatalf("cannot serialize genesis: %s", err)
	}
	var opts weave.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		t.Fatalf("cannot deserialize genesis: %s", err)
	}
	return opts
}
