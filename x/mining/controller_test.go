package mining

import (
	"context"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
	. "github.com/smartystreets/goconvey/convey"
)

func TestController(t *testing.T) {
	Convey("Test controller works as intended", t, func() {
		var (
			admin    = weavetest.NewCondition().Address()
			operator = weavetest.NewCondition().Address()
			receiver = weavetest.NewCondition().Address()
		)

		db := store.MemStore()
		migration.MustInitPkg(db, "mining", "cash")
		cashctrl := cash.NewController(cash.NewBucket())
		mint(t, db, cashctrl, admin, 100)
		poolID := createTestPool(t, db, cashctrl, admin, receiver, operator, 100, 30)
		ctrl := NewController(cashctrl)

		Convey("A new pool has no rounds", func() {
			rounds, err := ctrl.PullRoundInfos(db, poolID)
			So(err, ShouldBeNil)
			So(rounds, ShouldBeEmpty)

			surplus, err := ctrl.ObtainSurplus(db, poolID)
			So(err, ShouldBeNil)
			So(surplus, ShouldEqual, 100)

			debt, err := ctrl.ObtainTotalDebt(db, poolID)
			So(err, ShouldBeNil)
			So(debt, ShouldEqual, 0)

			_, err = ctrl.RoundInfo(db, poolID, 1)
			So(errors.ErrNotFound.Is(err), ShouldBeTrue)
		})

		Convey("Operators are reported", func() {
			ok, err := ctrl.IsOperator(db, poolID, operator)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			ok, err = ctrl.IsOperator(db, poolID, admin)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Unknown pool is not found", func() {
			_, err := ctrl.IsOperator(db, weavetest.SequenceID(999), operator)
			So(errors.ErrNotFound.Is(err), ShouldBeTrue)

			_, err = ctrl.ObtainSurplus(db, weavetest.SequenceID(999))
			So(errors.ErrNotFound.Is(err), ShouldBeTrue)
		})

		Convey("When mining started", func() {
			ctx := weave.WithHeight(context.Background(), 100)
			_, err := ctrl.Withdraw(ctx, db, poolID, operator)
			So(err, ShouldBeNil)

			Convey("Round accounting is exposed", func() {
				first, err := ctrl.RoundInfo(db, poolID, 1)
				So(err, ShouldBeNil)
				So(first.Amount, ShouldEqual, 50)
				So(first.Debt, ShouldEqual, 30)

				_, err = ctrl.RoundInfo(db, poolID, 0)
				So(errors.ErrNotFound.Is(err), ShouldBeTrue)

				debt, err := ctrl.ObtainTotalDebt(db, poolID)
				So(err, ShouldBeNil)
				So(debt, ShouldEqual, 30)

				surplus, err := ctrl.ObtainSurplus(db, poolID)
				So(err, ShouldBeNil)
				So(surplus, ShouldEqual, 70)
			})

			Convey("Second withdraw clips and opens the next round", func() {
				events, err := ctrl.Withdraw(ctx, db, poolID, operator)
				So(err, ShouldBeNil)
				So(events, ShouldResemble, []Event{
					WithdrawEvent{PoolID: poolID, Receiver: receiver, Ticker: "IOV", Amount: 20, Round: 1},
					OpenNextRoundEvent{PoolID: poolID, NextRound: 2, Amount: 25},
				})

				rounds, err := ctrl.PullRoundInfos(db, poolID)
				So(err, ShouldBeNil)
				So(len(rounds), ShouldEqual, 2)
				So(rounds[1].Debt, ShouldEqual, 0)
			})

			Convey("Token can no longer be changed", func() {
				pool, err := ctrl.Pool(db, poolID)
				So(err, ShouldBeNil)
				err = ctrl.checkSetToken(weave.WithHeight(context.Background(), 10), db, poolID, pool)
				So(ErrMiningStarted.Is(err), ShouldBeTrue)
			})

			Convey("Non operator cannot withdraw", func() {
				_, err := ctrl.Withdraw(ctx, db, poolID, admin)
				So(ErrOperationNotAllowed.Is(err), ShouldBeTrue)
			})
		})

		Convey("Before start height", func() {
			ctx := weave.WithHeight(context.Background(), 99)
			_, err := ctrl.Withdraw(ctx, db, poolID, operator)
			So(ErrNotStartedYet.Is(err), ShouldBeTrue)

			pool, err := ctrl.Pool(db, poolID)
			So(err, ShouldBeNil)
			So(ctrl.checkSetToken(ctx, db, poolID, pool), ShouldBeNil)
		})
	})
}
