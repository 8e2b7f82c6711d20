package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abdul-hamid-achik/resptag/packages/proxy"
	"github.com/spf13/cobra"
)

var (
	recordPortFlag     int
	recordTargetFlag   string
	recordExcludeFlag  string
	recordSanitizeFlag string
	recordDedupeFlag   bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Start a recording proxy that stores HTTP exchanges",
	Long: `Start an HTTP proxy that forwards requests to a target and stores every
request and response, ready for extract.

The proxy:
- Forwards all requests to the target server
- Stores requests and responses in the request store
- Sanitizes sensitive headers (Authorization, Cookie, etc.)

Examples:
  resptag record --port 8080 --target https://api.example.com
  resptag record --port 8080 --target https://api.example.com --exclude "/health,/metrics"
  resptag record --port 8080 --target https://api.example.com --dedupe`,
	RunE: recordCommand,
}

func init() {
	recordCmd.Flags().IntVarP(&recordPortFlag, "port", "p", getEnvInt("RESPTAG_RECORD_PORT", 8080), "Port to run the proxy on (env: RESPTAG_RECORD_PORT)")
	recordCmd.Flags().StringVarP(&recordTargetFlag, "target", "t", "", "Target URL to proxy to (required)")
	recordCmd.Flags().StringVar(&recordExcludeFlag, "exclude", "", "Paths to exclude from recording (comma-separated)")
	recordCmd.Flags().StringVar(&recordSanitizeFlag, "sanitize", "", "Headers to redact (comma-separated, replaces the default list)")
	recordCmd.Flags().BoolVar(&recordDedupeFlag, "dedupe", false, "Skip duplicate requests (same method+path)")

	_ = recordCmd.MarkFlagRequired("target")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func recordCommand(cmd *cobra.Command, args []string) error {
	if recordTargetFlag == "" {
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("target URL is required (--target or -t)")}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	opts := []proxy.Option{
		proxy.WithPort(recordPortFlag),
		proxy.WithTargetURL(recordTargetFlag),
		proxy.WithLogger(logger),
		proxy.WithExclude(splitList(recordExcludeFlag)),
		proxy.WithDeduplicate(recordDedupeFlag),
	}
	if recordSanitizeFlag != "" {
		opts = append(opts, proxy.WithSanitize(splitList(recordSanitizeFlag)))
	}
	recorder := proxy.NewRecorder(s, opts...)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Recording http://localhost:%d -> %s into %s (press Ctrl+C to stop)\n",
		recordPortFlag, recordTargetFlag, s.Path())

	if err := recorder.StartWithContext(ctx); err != nil {
		return &ExitError{Code: ExitNetworkError, Err: err}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nRecorded %d requests\n", recorder.Count())
	return nil
}
