package cli

import (
	"github.com/spf13/cobra"

	"github.com/milanv/jobhub/internal/orchestrator/core"
)

// NewProofCommand groups the verification subcommands.
func NewProofCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proof",
		Short: "Submit and verify job proofs",
	}
	cmd.AddCommand(newProofSubmitCommand(rootOpts))
	cmd.AddCommand(newProofGetCommand(rootOpts))
	cmd.AddCommand(newProofVerifyCommand(rootOpts))
	cmd.AddCommand(newProofForceVerifyCommand(rootOpts))
	return cmd
}

func newProofSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		scheme     string
		proof      string
		resultHash string
	)

	cmd := &cobra.Command{
		Use:   "submit <job-id>",
		Short: "Submit a proof for a job",
		Long: `Submit a proof for a job.

With --result-hash empty and the HASH scheme, the hash is computed from the
proof bytes, which makes the proof self-consistent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			hash := resultHash
			if hash == "" {
				hash = core.HashBytes([]byte(proof)).String()
			}
			result, err := rootOpts.Client().SubmitProof(cmd.Context(), id, hash, scheme, []byte(proof))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "HASH", "proof scheme (SIGNATURE, MERKLE_ROOT, HASH)")
	cmd.Flags().StringVar(&proof, "proof", "", "proof bytes")
	cmd.Flags().StringVar(&resultHash, "result-hash", "", "declared result hash, hex; derived from the proof when empty")

	return cmd
}

func newProofGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Show a job's result record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := rootOpts.Client().GetResult(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newProofVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <job-id>",
		Short: "Run proof verification for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := rootOpts.Client().VerifyProof(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newProofForceVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "force-verify <job-id>",
		Short: "Mark a result verified without running a scheme (requires --admin-token)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := rootOpts.Client().MarkVerified(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}
