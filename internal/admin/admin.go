// Package admin holds the operator commands run against the registration
// database outside the web flow.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"zignasa/internal/team"

	"github.com/spf13/cobra"
)

// Store is the subset of team.Repository the operator commands need.
type Store interface {
	GetTeam(ctx context.Context, id int64) (*team.Team, error)
	ListRegistrations(ctx context.Context, teamID int64) ([]team.Registration, error)
	MarkRefunded(ctx context.Context, id int64) error
}

// Opener connects to the store. The returned func releases it.
type Opener func(ctx context.Context) (Store, func() error, error)

// NewRootCommand builds the zignasactl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "zignasactl",
		Short:         "Operator tools for ZIGNASA registrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	teamCmd := &cobra.Command{
		Use:   "team",
		Short: "Inspect and manage registered teams",
	}

	teamCmd.AddCommand(
		&cobra.Command{
			Use:   "show <team-id>",
			Short: "Print a team and its members",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, open, args, showTeam)
			},
		},
		&cobra.Command{
			Use:   "refund <team-id>",
			Short: "Mark a completed team as refunded",
			Long: `Mark a completed team as refunded after the payment was returned
through the gateway dashboard. Only Completed teams can be refunded.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, open, args, refundTeam)
			},
		},
	)

	root.AddCommand(teamCmd)
	return root
}

func withStore(cmd *cobra.Command, open Opener, args []string, run func(context.Context, io.Writer, Store, int64) error) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid team id %q", args[0])
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeFn, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = closeFn() }()

	return run(ctx, cmd.OutOrStdout(), store, id)
}

func showTeam(ctx context.Context, out io.Writer, store Store, id int64) error {
	t, err := store.GetTeam(ctx, id)
	if err != nil {
		return err
	}
	regs, err := store.ListRegistrations(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Team %d: %s\n", t.ID, t.TeamName)
	fmt.Fprintf(out, "Domain:  %s\n", t.Domain)
	fmt.Fprintf(out, "Status:  %s\n", t.PaymentStatus)
	if t.RazorpayOrderID != nil {
		fmt.Fprintf(out, "Order:   %s\n", *t.RazorpayOrderID)
	}
	if t.RazorpayPaymentID != nil {
		fmt.Fprintf(out, "Payment: %s\n", *t.RazorpayPaymentID)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tNAME\tEMAIL\tPHONE\tCOLLEGE\tROLL")
	for _, r := range regs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Role, r.Name, r.Email, r.Phone, r.College, r.RollNumber)
	}
	return w.Flush()
}

func refundTeam(ctx context.Context, out io.Writer, store Store, id int64) error {
	if err := store.MarkRefunded(ctx, id); err != nil {
		if errors.Is(err, team.ErrInvalidTransition) {
			return fmt.Errorf("team %d is not Completed: %w", id, err)
		}
		return err
	}
	fmt.Fprintf(out, "Team %d marked Refunded\n", id)
	return nil
}
