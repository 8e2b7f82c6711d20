package cmd

import (
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/abdul-hamid-achik/resptag/packages/import/curl"
	"github.com/abdul-hamid-achik/resptag/packages/import/insomnia"
	"github.com/spf13/cobra"
)

var importSendFlag bool

var importCmd = &cobra.Command{
	Use:   "import <curl|insomnia> <file>",
	Short: "Import requests into the store",
	Long: `Import requests from a file of curl commands or an Insomnia export and
store them. With --send every imported request is also sent and its
response stored, so it can be extracted from right away.

Insomnia request ids are kept, so re-importing an export updates the same
requests and an extraction configured in Insomnia keeps working.

Examples:
  resptag import curl requests.sh
  resptag import insomnia Insomnia_export.json
  resptag import insomnia export.yaml --send`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"curl", "insomnia"},
	RunE:      importCommand,
}

func init() {
	importCmd.Flags().BoolVar(&importSendFlag, "send", false, "Send each imported request and store the response")
	rootCmd.AddCommand(importCmd)
}

func importCommand(cmd *cobra.Command, args []string) error {
	var (
		requests []*http.Request
		err      error
	)
	switch args[0] {
	case "curl":
		requests, err = curl.ParseFile(args[1])
	case "insomnia":
		requests, err = insomnia.ConvertFile(args[1])
	default:
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("unknown import source %q (expected curl or insomnia)", args[0])}
	}
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	client := newClient()
	failed := 0
	for _, req := range requests {
		if !importSendFlag {
			if err := s.SaveRequest(cmd.Context(), req); err != nil {
				return &ExitError{Code: ExitStoreError, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", req.ID, req.DisplayName())
			continue
		}

		resp, sendErr := sendImported(cmd, client, req)
		if sendErr != nil {
			failed++
			resp = &http.Response{Status: sendErr.Error(), CreatedAt: time.Now()}
		}
		if err := s.SaveExchange(cmd.Context(), req, resp); err != nil {
			return &ExitError{Code: ExitStoreError, Err: err}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", req.ID, req.DisplayName(), resp.StatusCode)
	}

	logger.Info().Int("requests", len(requests)).Int("failed", failed).Str("source", args[0]).Msg("import finished")

	if failed > 0 {
		return &ExitError{Code: ExitNetworkError, Err: fmt.Errorf("%d of %d requests failed", failed, len(requests))}
	}
	return nil
}

func sendImported(cmd *cobra.Command, client *http.Client, req *http.Request) (*http.Response, error) {
	if err := http.ValidateURL(req.URL); err != nil {
		logger.Warn().Err(err).Str("request", req.DisplayName()).Msg("skipping send")
		return nil, err
	}
	logger.Debug().Str("method", req.Method).Str("url", req.URL).Msg("sending imported request")

	resp, err := client.Do(cmd.Context(), req)
	if err != nil {
		logger.Warn().Err(err).Str("url", req.URL).Msg("request failed")
	}
	return resp, err
}
