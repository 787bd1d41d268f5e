package app

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave-mining/x/mining"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
	"github.com/tendermint/tendermint/libs/log"
)

type genesisDoc struct {
	Cash []genesisWallet `json:"cash"`
	Conf struct {
		Mining mining.Configuration `json:"mining"`
	} `json:"conf"`
	Mining []mining.GenesisPool `json:"mining"`
}

func TestGenInitOptions(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	cases := map[string]struct {
		args       []string
		wantTicker string
		wantAddr   weave.Address
	}{
		"defaults": {
			args:       nil,
			wantTicker: "IOV",
		},
		"custom ticker": {
			args:       []string{"ONE"},
			wantTicker: "ONE",
		},
		"ticker and address": {
			args:       []string{"TWO", addr.String()},
			wantTicker: "TWO",
			wantAddr:   addr,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := GenInitOptions(tc.args)
			assert.Nil(t, err)

			var doc genesisDoc
			assert.Nil(t, json.Unmarshal(raw, &doc))
			assert.Equal(t, 1, len(doc.Cash))
			assert.Equal(t, 1, len(doc.Cash[0].Coins))
			assert.Equal(t, tc.wantTicker, doc.Cash[0].Coins[0].Ticker)
			if tc.wantAddr != nil {
				assert.Equal(t, tc.wantAddr, doc.Cash[0].Address)
			}
			assert.Equal(t, doc.Cash[0].Address, doc.Conf.Mining.Owner)
			assert.Equal(t, 0, len(doc.Mining))
		})
	}
}

func TestGenInitOptionsInvalidTicker(t *testing.T) {
	if _, err := GenInitOptions([]string{"not a ticker"}); !errors.ErrCurrency.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestGenInitOptionsWithPools(t *testing.T) {
	admin := weavetest.NewCondition().Address()
	receiver := weavetest.NewCondition().Address()
	operator := weavetest.NewCondition().Address()

	fd, err := ioutil.TempFile("", "pools")
	assert.Nil(t, err)
	defer os.Remove(fd.Name())
	_, err = fmt.Fprintf(fd, `
pools:
  - receiver: %s
    operators:
      - %s
    per_operate_amount: 10000000
    start_height: 1
    total_funding: 500000000
`, receiver, operator)
	assert.Nil(t, err)
	assert.Nil(t, fd.Close())

	raw, err := GenInitOptions([]string{"MNE", admin.String(), fd.Name()})
	assert.Nil(t, err)

	var doc genesisDoc
	assert.Nil(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []mining.GenesisPool{
		{
			Admin:            admin,
			Operators:        []weave.Address{operator},
			Ticker:           "MNE",
			Receiver:         receiver,
			PerOperateAmount: 10000000,
			StartHeight:      1,
			TotalFunding:     500000000,
		},
	}, doc.Mining)
}

func TestParsePools(t *testing.T) {
	admin := weavetest.NewCondition().Address()
	receiver := weavetest.NewCondition().Address()

	cases := map[string]struct {
		raw       string
		wantErr   *errors.Error
		wantPools []mining.GenesisPool
	}{
		"empty document": {
			raw:       ``,
			wantPools: []mining.GenesisPool{},
		},
		"declared admin and ticker": {
			raw: fmt.Sprintf(`
pools:
  - admin: %s
    receiver: %s
    ticker: ABC
    per_operate_amount: 5
    start_height: 20
`, admin, receiver),
			wantPools: []mining.GenesisPool{
				{
					Admin:            admin,
					Ticker:           "ABC",
					Receiver:         receiver,
					PerOperateAmount: 5,
					StartHeight:      20,
				},
			},
		},
		"invalid receiver": {
			raw: `
pools:
  - receiver: zzz
`,
			wantErr: errors.ErrInput,
		},
		"malformed yaml": {
			raw:     "pools: [",
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			pools, err := ParsePools([]byte(tc.raw), weavetest.NewCondition().Address(), "IOV")
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.wantPools, pools)
			}
		})
	}
}

func TestGenerateApp(t *testing.T) {
	abciApp, err := GenerateApp(&server.Options{
		Logger: log.NewNopLogger(),
	})
	assert.Nil(t, err)
	if abciApp == nil {
		t.Fatal("no application")
	}
}
