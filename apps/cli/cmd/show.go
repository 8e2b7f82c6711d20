package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/resptag/packages/charset"
	"github.com/spf13/cobra"
)

var showNoBodyFlag bool

var showCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show a stored request and its latest response",
	Long: `Show a stored request with the status, headers and decoded body of its
latest response. JSON bodies are pretty-printed.

Examples:
  resptag show req_1a2b
  resptag show req_1a2b --no-body
  resptag show req_1a2b -o json`,
	Args: cobra.ExactArgs(1),
	RunE: showCommand,
}

func init() {
	showCmd.Flags().BoolVar(&showNoBodyFlag, "no-body", false, "Do not print the response body")
}

func showCommand(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	req, err := s.RequestByID(ctx, args[0])
	if err != nil {
		return &ExitError{Code: ExitStoreError, Err: err}
	}
	if req == nil {
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("could not find request %s", args[0])}
	}

	resp, err := s.LatestResponse(ctx, req.ID)
	if err != nil {
		return &ExitError{Code: ExitStoreError, Err: err}
	}

	var body string
	if resp != nil && !showNoBodyFlag {
		raw, err := s.ResponseBody(ctx, resp)
		if err != nil {
			return &ExitError{Code: ExitStoreError, Err: err}
		}
		body = charset.Resolve(resp.ContentType, raw)
	}

	formatter.FormatExchange(req, resp, body)
	return nil
}
