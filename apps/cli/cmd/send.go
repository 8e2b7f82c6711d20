package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sendHeaderFlags []string
	sendDataFlag    string
	sendNameFlag    string
	sendTimeoutFlag string
)

var sendCmd = &cobra.Command{
	Use:   "send <method> <url>",
	Short: "Send a request and store the exchange",
	Long: `Send an HTTP request and store the request and its response. The request
id is printed on stdout so it can be used with extract.

A request that fails before any response arrives is stored with status 0,
so extractions against it report that no successful response exists.

Examples:
  resptag send GET https://api.example.com/users
  resptag send POST https://api.example.com/users -H 'Content-Type: application/json' -d '{"name":"ada"}'
  resptag send GET https://example.com/feed.xml --name feed --timeout 5s
  id=$(resptag send GET https://api.example.com/me) && resptag extract body "$id" '$.id'`,
	Args: cobra.ExactArgs(2),
	RunE: sendCommand,
}

func init() {
	sendCmd.Flags().StringArrayVarP(&sendHeaderFlags, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	sendCmd.Flags().StringVarP(&sendDataFlag, "data", "d", "", "Request body (prefix with @ to read a file)")
	sendCmd.Flags().StringVarP(&sendNameFlag, "name", "n", "", "Name to store the request under")
	sendCmd.Flags().StringVar(&sendTimeoutFlag, "timeout", "", "Request timeout (e.g., 30s, 1m); defaults to the config timeout")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	req := http.NewRequest(args[0], args[1])
	req.Name = sendNameFlag

	for _, line := range sendHeaderFlags {
		h, err := http.ParseHeader(line)
		if err != nil {
			return &ExitError{Code: ExitUsageError, Err: err}
		}
		req.SetHeader(h.Name, h.Value)
	}

	body, err := readBody(sendDataFlag)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}
	req.SetBody(body)

	if sendTimeoutFlag != "" {
		d, err := time.ParseDuration(sendTimeoutFlag)
		if err != nil {
			return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("invalid timeout: %w", err)}
		}
		req.SetTimeout(d)
	}

	if err := http.ValidateURL(req.URL); err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Debug().Str("method", req.Method).Str("url", req.URL).Msg("sending request")

	resp, sendErr := newClient().Do(cmd.Context(), req)
	if sendErr != nil {
		logger.Warn().Err(sendErr).Str("url", req.URL).Msg("request failed")
		resp = &http.Response{Status: sendErr.Error(), CreatedAt: time.Now()}
	}

	if err := s.SaveExchange(cmd.Context(), req, resp); err != nil {
		return &ExitError{Code: ExitStoreError, Err: err}
	}

	fmt.Fprintln(cmd.OutOrStdout(), req.ID)

	if sendErr != nil {
		return &ExitError{Code: ExitNetworkError, Err: sendErr}
	}

	if appConfig.GetVerbose() {
		status := color.New(color.FgGreen).SprintFunc()
		if !resp.IsSuccess() {
			status = color.New(color.FgYellow).SprintFunc()
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s (%dms)\n", req.Method, req.URL, status(resp.Status), resp.DurationMs())
	}
	return nil
}

func readBody(data string) (string, error) {
	if !strings.HasPrefix(data, "@") {
		return data, nil
	}
	content, err := os.ReadFile(strings.TrimPrefix(data, "@"))
	if err != nil {
		return "", fmt.Errorf("failed to read body file: %w", err)
	}
	return string(content), nil
}
