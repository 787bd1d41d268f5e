package cmd

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave-mining/x/mining"
	"github.com/iov-one/weave/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRound(t *testing.T) {
	round := mining.Round{
		Metadata: &weave.Metadata{Schema: 1},
		PoolID:   weavetest.SequenceID(3),
		Index:    2,
		Amount:   125,
		Debt:     40,
	}
	raw, err := round.Marshal()
	require.NoError(t, err)

	out, err := runRoot(t, "decode", "round", hex.EncodeToString(raw))
	require.NoError(t, err)

	var got mining.Round
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, round, got)
}

func TestDecodePool(t *testing.T) {
	pool := mining.Pool{
		Metadata:         &weave.Metadata{Schema: 1},
		Admin:            weavetest.NewCondition().Address(),
		Ticker:           "IOV",
		Receiver:         weavetest.NewCondition().Address(),
		PerOperateAmount: 10,
		StartHeight:      5,
		TotalFunding:     1000,
		Address:          mining.PoolAddress(weavetest.SequenceID(1)),
	}
	raw, err := pool.Marshal()
	require.NoError(t, err)

	pretty, err := decodeEntity("pool", hex.EncodeToString(raw))
	require.NoError(t, err)

	var got mining.Pool
	require.NoError(t, json.Unmarshal(pretty, &got))
	assert.Equal(t, pool, got)
}

func TestDecodeErrors(t *testing.T) {
	_, err := decodeEntity("wallet", "00")
	assert.Error(t, err)

	_, err = decodeEntity("pool", "not hex")
	assert.Error(t, err)

	_, err = runRoot(t, "decode", "pool")
	assert.Error(t, err)
}
