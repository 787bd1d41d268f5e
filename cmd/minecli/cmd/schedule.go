package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/iov-one/weave-mining/x/mining"
	"github.com/iov-one/weave/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// roundPlan describes a single round of a previewed schedule.
type roundPlan struct {
	Index       int   `yaml:"index"`
	Capacity    int64 `yaml:"capacity"`
	Withdrawals int64 `yaml:"withdrawals"`
	Allocated   int64 `yaml:"allocated"`
}

// schedulePlan is a preview of how a pool funding is split into rounds.
type schedulePlan struct {
	TotalFunding     int64       `yaml:"total_funding"`
	PerOperateAmount int64       `yaml:"per_operate_amount"`
	Rounds           []roundPlan `yaml:"rounds"`
	Withdrawals      int64       `yaml:"withdrawals"`
	Undistributed    int64       `yaml:"undistributed"`
}

func newSchedulePlan(funding, perOperate int64) (*schedulePlan, error) {
	if funding < 0 {
		return nil, errors.Wrap(errors.ErrInput, "funding must not be negative")
	}
	if perOperate <= 0 {
		return nil, errors.Wrap(errors.ErrInput, "per operate amount must be positive")
	}

	plan := schedulePlan{
		TotalFunding:     funding,
		PerOperateAmount: perOperate,
		Rounds:           []roundPlan{},
	}
	var allocated int64
	for i, capacity := range mining.Plan(funding) {
		allocated += capacity
		// The last withdrawal of a round is clipped to the remaining
		// capacity.
		withdrawals := capacity / perOperate
		if capacity%perOperate != 0 {
			withdrawals++
		}
		plan.Withdrawals += withdrawals
		plan.Rounds = append(plan.Rounds, roundPlan{
			Index:       i + 1,
			Capacity:    capacity,
			Withdrawals: withdrawals,
			Allocated:   allocated,
		})
	}
	plan.Undistributed = funding - allocated
	return &plan, nil
}

func (p *schedulePlan) writeTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "round\tcapacity\twithdrawals\tallocated\t")
	for _, r := range p.Rounds {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n",
			r.Index,
			humanize.Comma(r.Capacity),
			humanize.Comma(r.Withdrawals),
			humanize.Comma(r.Allocated))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d rounds, %s withdrawals, %s never distributed\n",
		len(p.Rounds), humanize.Comma(p.Withdrawals), humanize.Comma(p.Undistributed))
	return err
}

func newScheduleCmd() *cobra.Command {
	var (
		funding    int64
		perOperate int64
		asYAML     bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Preview the halving rounds of a pool.",
		Long: "`schedule --funding N --per-operate M` prints the capacity of " +
			"every round and the number of withdrawals needed to drain it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := newSchedulePlan(funding, perOperate)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !asYAML {
				return plan.writeTable(out)
			}
			enc := yaml.NewEncoder(out)
			if err := enc.Encode(plan); err != nil {
				return errors.Wrap(err, "encode yaml")
			}
			return enc.Close()
		},
	}
	cmd.Flags().Int64Var(&funding, "funding", 0, "total pool funding in fractional units")
	cmd.Flags().Int64Var(&perOperate, "per-operate", 0, "amount paid by a single withdrawal")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the schedule as YAML")
	return cmd
}
