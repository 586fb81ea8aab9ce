package cli

import (
	"github.com/spf13/cobra"
)

// NewEventCommand groups the event subcommands.
func NewEventCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Submit, inspect and process events",
	}
	cmd.AddCommand(newEventSubmitCommand(rootOpts))
	cmd.AddCommand(newEventGetCommand(rootOpts))
	cmd.AddCommand(newEventPendingCommand(rootOpts))
	cmd.AddCommand(newEventProcessCommand(rootOpts))
	return cmd
}

func newEventSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		kind         string
		payload      string
		originDomain uint32
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var origin *uint32
			if cmd.Flags().Changed("origin-domain") {
				origin = &originDomain
			}
			event, err := rootOpts.Client().SubmitEvent(cmd.Context(), kind, []byte(payload), origin)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), event)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "LOCAL", "event kind (LOCAL, CROSS_ORIGIN, TIMER, CONDITION)")
	cmd.Flags().StringVar(&payload, "payload", "", "event payload bytes")
	cmd.Flags().Uint32Var(&originDomain, "origin-domain", 0, "origin domain for cross-origin events")

	return cmd
}

func newEventGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			event, err := rootOpts.Client().GetEvent(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), event)
		},
	}
}

func newEventPendingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List the pending event queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := rootOpts.Client().PendingEvents(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ids)
		},
	}
}

func newEventProcessCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process <id>",
		Short: "Process an event, firing its triggers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fired, err := rootOpts.Client().ProcessEvent(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fired)
		},
	}
}
