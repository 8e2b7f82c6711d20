package cmd

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored requests",
	Long: `List stored requests, newest first, with the status of their latest response.

Examples:
  resptag list
  resptag list -v
  resptag list -o json`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	summaries, err := s.ListRequests(cmd.Context())
	if err != nil {
		return &ExitError{Code: ExitStoreError, Err: err}
	}

	formatter.FormatList(summaries)
	return nil
}
