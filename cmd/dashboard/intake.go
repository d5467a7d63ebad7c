package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/intake"
)

func intakeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Inspect and edit the daily intake ledger",
	}

	cmd.AddCommand(
		intakeShowCmd(a),
		intakeAddCmd(a),
		intakeRemoveCmd(a),
		intakeClearCmd(a),
		intakeGoalCmd(a),
	)
	return cmd
}

// withLedger opens the ledger for the duration of fn
func (a *app) withLedger(cmd *cobra.Command, fn func(l *intake.Ledger) error) error {
	ledger, closer, err := openLedger(cmd.Context(), a.cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	return fn(ledger)
}

func intakeShowCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a day's ledger (today by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *intake.Ledger) error {
				if date == "" {
					snap, err := l.Snapshot(cmd.Context())
					if err != nil {
						return err
					}
					return printJSON(snap)
				}

				day, err := intake.ParseDate(date)
				if err != nil {
					return err
				}
				snap, err := l.Day(cmd.Context(), day)
				if err != nil {
					return err
				}
				return printJSON(snap)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show as YYYY-M-D")
	return cmd
}

func intakeAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <amount_ml>",
		Short: "Record an intake for today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil {
				return intake.ErrInvalidAmount
			}
			return a.withLedger(cmd, func(l *intake.Ledger) error {
				result, err := l.Add(cmd.Context(), amount)
				if err != nil {
					return err
				}
				if result.GoalJustReached {
					fmt.Fprintln(cmd.ErrOrStderr(), "Daily goal reached!")
				}
				return printJSON(result)
			})
		},
	}
}

func intakeRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry_id>",
		Short: "Remove one of today's entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			return a.withLedger(cmd, func(l *intake.Ledger) error {
				total, err := l.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(map[string]int{"total_ml": total})
			})
		},
	}
}

func intakeClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all of today's entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *intake.Ledger) error {
				if err := l.Clear(cmd.Context()); err != nil {
					return err
				}
				snap, err := l.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(snap)
			})
		},
	}
}

func intakeGoalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "goal [goal_ml]",
		Short: "Print the daily goal, or set it when a value is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *intake.Ledger) error {
				if len(args) == 1 {
					goal, err := strconv.Atoi(args[0])
					if err != nil {
						return intake.ErrGoalOutOfRange
					}
					if err := l.SetGoal(cmd.Context(), goal); err != nil {
						return err
					}
				}
				return printJSON(map[string]int{"goal_ml": l.Goal()})
			})
		},
	}
}
