package app

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave-mining/x/mining"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	abci "github.com/tendermint/tendermint/abci/types"
	"gopkg.in/yaml.v3"
)

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode
//
// Arguments are: [ticker] [address] [pools file]. The optional pools file is
// a YAML document listing mining pools created at chain start.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "IOV"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %s", ticker)
		}
	}

	var addr weave.Address
	if len(args) > 1 {
		var err error
		addr, err = weave.ParseAddress(args[1])
		if err != nil {
			return nil, errors.Wrap(err, "address")
		}
	} else {
		// if no address provided, auto-generate one
		// and print out a recovery phrase
		bz, phrase, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = bz
		fmt.Println(phrase)
	}

	var pools []mining.GenesisPool
	if len(args) > 2 {
		raw, err := ioutil.ReadFile(args[2])
		if err != nil {
			return nil, errors.Wrap(err, "read pools file")
		}
		pools, err = ParsePools(raw, addr, ticker)
		if err != nil {
			return nil, err
		}
	}
	return genesisOptions(addr, ticker, pools)
}

type genesisSchema struct {
	Pkg string `json:"pkg"`
	Ver uint32 `json:"ver"`
}

type genesisWallet struct {
	Address weave.Address `json:"address"`
	Coins   []coin.Coin   `json:"coins"`
}

func genesisOptions(addr weave.Address, ticker string, pools []mining.GenesisPool) (json.RawMessage, error) {
	if pools == nil {
		pools = []mining.GenesisPool{}
	}
	opts := map[string]interface{}{
		"initialize_schema": []genesisSchema{
			{Pkg: "cash", Ver: 1},
			{Pkg: "migration", Ver: 1},
			{Pkg: "mining", Ver: 1},
			{Pkg: "sigs", Ver: 1},
		},
		"cash": []genesisWallet{
			{Address: addr, Coins: []coin.Coin{coin.NewCoin(123456789, 0, ticker)}},
		},
		"conf": map[string]interface{}{
			"cash": cash.Configuration{
				Metadata:         &weave.Metadata{Schema: 1},
				Owner:            addr,
				CollectorAddress: addr,
				MinimalFee:       coin.NewCoin(0, 0, ""),
			},
			"migration": migration.Configuration{
				Admin: addr,
			},
			"mining": mining.Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    addr,
			},
		},
		"mining": pools,
	}
	raw, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "serialize genesis options")
	}
	return raw, nil
}

// poolsFile is the layout of the YAML document declaring genesis pools.
type poolsFile struct {
	Pools []struct {
		Admin            string   `yaml:"admin"`
		Operators        []string `yaml:"operators"`
		Ticker           string   `yaml:"ticker"`
		Receiver         string   `yaml:"receiver"`
		PerOperateAmount int64    `yaml:"per_operate_amount"`
		StartHeight      int64    `yaml:"start_height"`
		TotalFunding     int64    `yaml:"total_funding"`
	} `yaml:"pools"`
}

// ParsePools reads genesis pool declarations from a YAML document. Admin and
// ticker default to given values when not declared.
func ParsePools(raw []byte, defaultAdmin weave.Address, defaultTicker string) ([]mining.GenesisPool, error) {
	var file poolsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}

	pools := make([]mining.GenesisPool, 0, len(file.Pools))
	for i, p := range file.Pools {
		gp := mining.GenesisPool{
			Admin:            defaultAdmin,
			Ticker:           defaultTicker,
			PerOperateAmount: p.PerOperateAmount,
			StartHeight:      p.StartHeight,
			TotalFunding:     p.TotalFunding,
		}
		if p.Ticker != "" {
			gp.Ticker = p.Ticker
		}
		if p.Admin != "" {
			admin, err := weave.ParseAddress(p.Admin)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrInput, "pool %d admin: %s", i, err)
			}
			gp.Admin = admin
		}
		receiver, err := weave.ParseAddress(p.Receiver)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "pool %d receiver: %s", i, err)
		}
		gp.Receiver = receiver
		for j, op := range p.Operators {
			addr, err := weave.ParseAddress(op)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrInput, "pool %d operator %d: %s", i, j, err)
			}
			gp.Operators = append(gp.Operators, addr)
		}
		pools = append(pools, gp)
	}
	return pools, nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "minerd.db")
	}

	application, err := Application("minerd", Stack(), TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	// Cash must be loaded before mining, pool funding is pulled from
	// genesis wallets.
	application.WithInit(app.ChainInitializers(
		&migration.Initializer{},
		&cash.Initializer{},
		&mining.Initializer{},
	))

	// set the logger and return
	application.WithLogger(options.Logger)
	return application, nil
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey returns the address of a public key,
// along with a json representation of the keys.
// You can give coins to this address and
// import the keys in the js client to use them
func GenerateCoinKey() (weave.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}

	return addr, string(keys), nil
}
