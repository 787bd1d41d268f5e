package mining

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
)

// Schedule holds the round accounting of a single pool.
//
// Rounds are 1-indexed and append only. Each round capacity is computed when
// the round is opened and never changes afterwards. The first round claims
// half of the total funding, every following round claims half of the funding
// that is not yet allocated to any round. When halving yields zero no further
// round is opened and the schedule is exhausted.
//
// Capacity is computed against the allocated funding and not against the
// custody wallet balance, so the schedule does not depend on balance drift.
type Schedule struct {
	PoolID       []byte
	TotalFunding int64
	Rounds       []*Round
}

// Consumption describes the result of a successful Consume call.
type Consumption struct {
	// Round is the index of the round the amount was consumed from.
	Round uint32
	// Amount is the consumed value. It is lower than the requested amount
	// when the round had less capacity left.
	Amount int64
	// Opened is true when consumption exhausted the round and the next
	// round was opened.
	Opened     bool
	NextRound  uint32
	NextAmount int64
}

// nextRoundAmount returns the capacity of a round opened when given amount of
// funding is left unallocated.
func nextRoundAmount(unallocated int64) int64 {
	return unallocated / 2
}

// Plan returns the capacities of all rounds that given funding is split into.
func Plan(totalFunding int64) []int64 {
	var amounts []int64
	for left := totalFunding; ; {
		next := nextRoundAmount(left)
		if next <= 0 {
			return amounts
		}
		amounts = append(amounts, next)
		left -= next
	}
}

// Allocated returns the sum of all round capacities.
func (s *Schedule) Allocated() int64 {
	var total int64
	for _, r := range s.Rounds {
		total += r.Amount
	}
	return total
}

// RemainingUnallocated returns funding that is not yet assigned to any round.
func (s *Schedule) RemainingUnallocated() int64 {
	return s.TotalFunding - s.Allocated()
}

// EnsureRoundOpen opens the first round if none exists yet. It returns true if
// a round was opened.
func (s *Schedule) EnsureRoundOpen() (bool, error) {
	if len(s.Rounds) != 0 {
		return false, nil
	}
	amount := nextRoundAmount(s.TotalFunding)
	if amount <= 0 {
		return false, errors.Wrapf(ErrExhausted, "funding %d is too low to open a round", s.TotalFunding)
	}
	s.appendRound(amount)
	return true, nil
}

func (s *Schedule) appendRound(amount int64) *Round {
	r := &Round{
		Metadata: &weave.Metadata{Schema: 1},
		PoolID:   s.PoolID,
		Index:    uint32(len(s.Rounds) + 1),
		Amount:   amount,
	}
	s.Rounds = append(s.Rounds, r)
	return r
}

// ActiveRound returns the last round. At least one round must be open.
func (s *Schedule) ActiveRound() (*Round, error) {
	if len(s.Rounds) == 0 {
		return nil, errors.Wrap(errors.ErrState, "no round open")
	}
	return s.Rounds[len(s.Rounds)-1], nil
}

// Consume takes given amount from the active round capacity. When the round
// remaining capacity is lower than the requested amount, only the remaining
// capacity is taken. When the round gets exhausted, the next round is opened
// if the halving of the unallocated funding is not zero.
func (s *Schedule) Consume(amount int64) (*Consumption, error) {
	if amount <= 0 {
		return nil, errors.Wrapf(ErrQuantity, "cannot consume %d", amount)
	}
	r, err := s.ActiveRound()
	if err != nil {
		return nil, err
	}
	left := r.Amount - r.Debt
	if left <= 0 {
		return nil, errors.Wrapf(ErrExhausted, "round %d is full and no further round can be opened", r.Index)
	}
	if amount > left {
		amount = left
	}
	r.Debt += amount

	res := &Consumption{Round: r.Index, Amount: amount}
	if r.Debt < r.Amount {
		return res, nil
	}
	if next := nextRoundAmount(s.RemainingUnallocated()); next > 0 {
		nr := s.appendRound(next)
		res.Opened = true
		res.NextRound = nr.Index
		res.NextAmount = nr.Amount
	}
	return res, nil
}

// RoundInfo returns the round with given 1 based index.
func (s *Schedule) RoundInfo(index uint32) (*Round, error) {
	if index == 0 || int(index) > len(s.Rounds) {
		return nil, errors.Wrapf(errors.ErrNotFound, "round %d", index)
	}
	return s.Rounds[index-1], nil
}

// AllRounds returns a copy of all rounds, in order.
func (s *Schedule) AllRounds() []Round {
	res := make([]Round, len(s.Rounds))
	for i, r := range s.Rounds {
		res[i] = *r
	}
	return res
}

// TotalDebt returns the amount withdrawn across all rounds.
func (s *Schedule) TotalDebt() int64 {
	var total int64
	for _, r := range s.Rounds {
		total += r.Debt
	}
	return total
}

// Surplus returns the funding that was not withdrawn yet.
func (s *Schedule) Surplus() int64 {
	return s.TotalFunding - s.TotalDebt()
}

// Validate returns an error if the round accounting is inconsistent.
func (s *Schedule) Validate() error {
	var allocated int64
	for i, r := range s.Rounds {
		if int(r.Index) != i+1 {
			return errors.Wrapf(errors.ErrState, "round %d stored at position %d", r.Index, i+1)
		}
		if r.Debt < 0 || r.Debt > r.Amount {
			return errors.Wrapf(errors.ErrState, "round %d debt %d out of range", r.Index, r.Debt)
		}
		if i < len(s.Rounds)-1 && r.Debt != r.Amount {
			return errors.Wrapf(errors.ErrState, "round %d closed before exhausted", r.Index)
		}
		allocated += r.Amount
	}
	if allocated > s.TotalFunding {
		return errors.Wrapf(errors.ErrState, "allocated %d exceeds funding %d", allocated, s.TotalFunding)
	}
	return nil
}
