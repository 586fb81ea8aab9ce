package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milanv/jobhub/pkg/client"
)

// NewTriggerCommand groups the trigger subcommands.
func NewTriggerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Register, inspect and deactivate triggers",
	}
	cmd.AddCommand(newTriggerRegisterCommand(rootOpts))
	cmd.AddCommand(newTriggerGetCommand(rootOpts))
	cmd.AddCommand(newTriggerListCommand(rootOpts))
	cmd.AddCommand(newTriggerDeactivateCommand(rootOpts))
	return cmd
}

func newTriggerRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		eventID   uint64
		action    string
		jobID     uint64
		condition string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a trigger on an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trigger, err := rootOpts.Client().RegisterTrigger(
				cmd.Context(),
				eventID,
				client.TriggerAction{Kind: action, JobID: jobID},
				[]byte(condition),
			)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), trigger)
		},
	}

	cmd.Flags().Uint64Var(&eventID, "event", 0, "watched event id")
	cmd.Flags().StringVar(&action, "action", "CUSTOM", "action kind (START_JOB, EXTERNAL_MESSAGE, CUSTOM)")
	cmd.Flags().Uint64Var(&jobID, "job", 0, "job id for START_JOB actions")
	cmd.Flags().StringVar(&condition, "condition", "", "opaque condition bytes")
	cmd.MarkFlagRequired("event")

	return cmd
}

func newTriggerGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			trigger, err := rootOpts.Client().GetTrigger(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), trigger)
		},
	}
}

func newTriggerListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the account's trigger ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Account == "" {
				return fmt.Errorf("--account is required")
			}
			ids, err := rootOpts.Client().ListTriggers(cmd.Context(), rootOpts.Account)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ids)
		},
	}
}

func newTriggerDeactivateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a trigger permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := rootOpts.Client().DeactivateTrigger(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "trigger %d deactivated\n", id)
			return err
		},
	}
}
