package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewJobCommand groups the job lifecycle subcommands.
func NewJobCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Submit, inspect and transition jobs",
	}
	cmd.AddCommand(newJobSubmitCommand(rootOpts))
	cmd.AddCommand(newJobGetCommand(rootOpts))
	cmd.AddCommand(newJobListCommand(rootOpts))
	cmd.AddCommand(newJobReadyCommand(rootOpts))
	cmd.AddCommand(newJobStatusCommand(rootOpts))
	cmd.AddCommand(newJobRemoveCommand(rootOpts))
	return cmd
}

func newJobSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		metadata string
		deps     []uint
		deadline uint64
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			depIDs := make([]uint64, len(deps))
			for i, dep := range deps {
				depIDs[i] = uint64(dep)
			}
			job, err := rootOpts.Client().SubmitJob(cmd.Context(), []byte(metadata), depIDs, deadline)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}

	cmd.Flags().StringVar(&metadata, "metadata", "", "opaque job metadata")
	cmd.Flags().UintSliceVar(&deps, "dep", nil, "dependency job id (repeatable)")
	cmd.Flags().Uint64Var(&deadline, "deadline", 0, "deadline height, must be in the future")
	cmd.MarkFlagRequired("deadline")

	return cmd
}

func newJobGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			job, err := rootOpts.Client().GetJob(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}
}

func newJobListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		owner  string
		status string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, total, err := rootOpts.Client().ListJobs(cmd.Context(), owner, status, limit, offset)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), jobs); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", total)
			return err
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "filter by owner account")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 10, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	return cmd
}

func newJobReadyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "List pending jobs whose dependencies are satisfied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := rootOpts.Client().ReadyJobs(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), jobs)
		},
	}
}

func newJobStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Transition a job to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			job, err := rootOpts.Client().TransitionJob(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}
}

func newJobRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a terminal job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := rootOpts.Client().RemoveJob(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "job %d removed\n", id)
			return err
		},
	}
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be an unsigned integer", s)
	}
	return id, nil
}
