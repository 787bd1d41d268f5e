package mining

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/x/cash"
)

// fundingLedger mediates all token movements of a pool. Amounts are expressed
// in fractional coin units.
type fundingLedger struct {
	cash cash.Controller
}

// balanceOf returns the amount of given currency held by a wallet.
func (l fundingLedger) balanceOf(db weave.KVStore, wallet weave.Address, ticker string) (int64, error) {
	coins, err := l.cash.Balance(db, wallet)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err), errors.ErrEmpty.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "balance")
	}
	for _, c := range coins {
		if c.Ticker == ticker {
			return fromCoin(*c)
		}
	}
	return 0, nil
}

// transfer moves given amount between two wallets. The source wallet must
// hold enough funds.
func (l fundingLedger) transfer(db weave.KVStore, src, dest weave.Address, ticker string, amount int64) error {
	held, err := l.balanceOf(db, src, ticker)
	if err != nil {
		return err
	}
	if held < amount {
		return errors.Wrapf(errors.ErrAmount, "%s holds %d, %d required", src, held, amount)
	}
	if err := l.cash.MoveCoins(db, src, dest, toCoin(ticker, amount)); err != nil {
		return errors.Wrap(err, "move coins")
	}
	return nil
}

// reconcile brings the custody balance of given currency to exactly the
// target amount. The shortfall is pulled from the admin wallet, the excess
// is returned to it.
func (l fundingLedger) reconcile(db weave.KVStore, custody, admin weave.Address, ticker string, target int64) error {
	held, err := l.balanceOf(db, custody, ticker)
	if err != nil {
		return err
	}
	switch {
	case held < target:
		if err := l.transfer(db, admin, custody, ticker, target-held); err != nil {
			return errors.Wrap(err, "pull funding from admin")
		}
	case held > target:
		if err := l.transfer(db, custody, admin, ticker, held-target); err != nil {
			return errors.Wrap(err, "return excess to admin")
		}
	}
	return nil
}

// toCoin converts an amount of fractional units into a coin.
func toCoin(ticker string, amount int64) coin.Coin {
	return coin.NewCoin(amount/coin.FracUnit, amount%coin.FracUnit, ticker)
}

// fromCoin converts a coin into an amount of fractional units.
func fromCoin(c coin.Coin) (int64, error) {
	const max = int64(^uint64(0) >> 1)
	if c.Whole < 0 || c.Fractional < 0 {
		return 0, errors.Wrapf(errors.ErrAmount, "negative value %s", c)
	}
	if c.Whole > (max-c.Fractional)/coin.FracUnit {
		return 0, errors.Wrapf(errors.ErrOverflow, "%s", c)
	}
	return c.Whole*coin.FracUnit + c.Fractional, nil
}
