// Package cli implements the jobhubctl command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/milanv/jobhub/pkg/client"
)

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	Addr       string
	Account    string
	AdminToken string
	Timeout    time.Duration
}

// Client builds the API client from the global flags.
func (o *RootOptions) Client() *client.Client {
	opts := []client.Option{client.WithTimeout(o.Timeout)}
	if o.AdminToken != "" {
		opts = append(opts, client.WithAdminToken(o.AdminToken))
	}
	return client.New(o.Addr, o.Account, opts...)
}

// NewRootCommand creates the root command for jobhubctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "jobhubctl",
		Short:         "Control a jobhub orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", "http://localhost:8080", "orchestrator base URL")
	cmd.PersistentFlags().StringVar(&opts.Account, "account", "", "account identity sent with each request")
	cmd.PersistentFlags().StringVar(&opts.AdminToken, "admin-token", "", "administrative token for privileged commands")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")

	cmd.AddCommand(NewJobCommand(opts))
	cmd.AddCommand(NewProofCommand(opts))
	cmd.AddCommand(NewEventCommand(opts))
	cmd.AddCommand(NewTriggerCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// printJSON renders any API response as indented JSON.
func printJSON(w io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
