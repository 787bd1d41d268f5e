package mining

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Pool{}, migration.NoModification)
	migration.MustRegister(1, &Round{}, migration.NoModification)
}

var _ orm.Model = (*Pool)(nil)

// Validate ensures the pool is valid.
func (p *Pool) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", p.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", p.Admin.Validate())
	errs = errors.AppendField(errs, "Receiver", p.Receiver.Validate())
	errs = errors.AppendField(errs, "Address", p.Address.Validate())
	for i, op := range p.Operators {
		if err := op.Validate(); err != nil {
			errs = errors.AppendField(errs, "Operators", errors.Wrapf(err, "operator %d", i))
		} else if i > 0 && bytes.Compare(p.Operators[i-1], op) >= 0 {
			errs = errors.AppendField(errs, "Operators", errors.Wrap(errors.ErrState, "must be sorted and unique"))
		}
	}
	if p.Ticker != "" && !coin.IsCC(p.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(ErrInvalidAddress, "invalid ticker %q", p.Ticker))
	}
	if p.Ticker == "" && p.TotalFunding != 0 {
		errs = errors.AppendField(errs, "TotalFunding", errors.Wrap(errors.ErrState, "funding without a token"))
	}
	if p.TotalFunding < 0 {
		errs = errors.AppendField(errs, "TotalFunding", errors.Wrap(ErrQuantity, "must not be negative"))
	}
	if p.PerOperateAmount <= 0 {
		errs = errors.AppendField(errs, "PerOperateAmount", errors.Wrap(ErrQuantity, "must be greater than zero"))
	}
	if p.StartHeight <= 0 {
		errs = errors.AppendField(errs, "StartHeight", errors.Wrap(ErrQuantity, "must be greater than zero"))
	}
	return errs
}

// NewPoolBucket returns a bucket for storing pools. Pool keys are generated
// by a sequence.
func NewPoolBucket() orm.ModelBucket {
	b := orm.NewModelBucket("miningpool", &Pool{},
		orm.WithIDSequence(poolSeq),
	)
	return migration.NewModelBucket("mining", b)
}

var poolSeq = orm.NewSequence("miningpool", "id")

// PoolAddress returns the address of the custody wallet of a pool with given
// ID. Funds distributed by a pool are held in this wallet.
func PoolAddress(poolID []byte) weave.Address {
	return weave.NewCondition("mining", "pool", poolID).Address()
}

// poolRef returns a human readable representation of a pool ID.
func poolRef(poolID []byte) string {
	if len(poolID) == 8 {
		return strconv.FormatUint(binary.BigEndian.Uint64(poolID), 10)
	}
	return hex.EncodeToString(poolID)
}

var _ orm.Model = (*Round)(nil)

func (r *Round) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", r.Metadata.Validate())
	if len(r.PoolID) == 0 {
		errs = errors.AppendField(errs, "PoolID", errors.ErrEmpty)
	}
	if r.Index == 0 {
		errs = errors.AppendField(errs, "Index", errors.Wrap(errors.ErrInput, "rounds are 1 indexed"))
	}
	if r.Amount <= 0 {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(ErrQuantity, "must be greater than zero"))
	}
	if r.Debt < 0 || r.Debt > r.Amount {
		errs = errors.AppendField(errs, "Debt", errors.Wrapf(ErrQuantity, "must be between 0 and %d", r.Amount))
	}
	return errs
}

// NewRoundBucket returns a bucket for storing rounds. Round keys are built
// using the pool ID and the round index so that a prefix query by the pool ID
// returns all rounds of a pool in order.
func NewRoundBucket() orm.ModelBucket {
	b := orm.NewModelBucket("miningrnd", &Round{})
	return migration.NewModelBucket("mining", b)
}

// RoundKey returns the key a round is stored under.
func RoundKey(poolID []byte, index uint32) []byte {
	key := make([]byte, len(poolID)+4)
	copy(key, poolID)
	binary.BigEndian.PutUint32(key[len(poolID):], index)
	return key
}

// loadSchedule returns the round accounting of given pool.
func loadSchedule(db weave.ReadOnlyKVStore, rounds orm.ModelBucket, poolID []byte, pool *Pool) (*Schedule, error) {
	s := &Schedule{
		PoolID:       poolID,
		TotalFunding: pool.TotalFunding,
	}
	for i := uint32(1); ; i++ {
		var r Round
		switch err := rounds.One(db, RoundKey(poolID, i), &r); {
		case err == nil:
			s.Rounds = append(s.Rounds, &r)
		case errors.ErrNotFound.Is(err):
			if err := s.Validate(); err != nil {
				return nil, errors.Wrap(err, "stored rounds")
			}
			return s, nil
		default:
			return nil, errors.Wrapf(err, "load round %d", i)
		}
	}
}

// saveRounds persists rounds with given indexes.
func saveRounds(db weave.KVStore, rounds orm.ModelBucket, s *Schedule, indexes ...uint32) error {
	for _, i := range indexes {
		r, err := s.RoundInfo(i)
		if err != nil {
			return err
		}
		if _, err := rounds.Put(db, RoundKey(s.PoolID, i), r); err != nil {
			return errors.Wrapf(err, "store round %d", i)
		}
	}
	return nil
}
