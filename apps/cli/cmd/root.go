package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/resptag/packages/core/config"
	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/abdul-hamid-achik/resptag/packages/logx"
	"github.com/abdul-hamid-achik/resptag/packages/output"
	"github.com/abdul-hamid-achik/resptag/packages/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	dbFlag       string
	configFlag   string
	verboseFlag  bool
	noColorFlag  bool
	logFileFlag  string
	logLevelFlag string
	outputFlag   string
)

// Shared state set up before every command runs.
var (
	appConfig *config.Config
	logger    = zerolog.Nop()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "resptag",
	Short: "Pull single values out of recorded HTTP responses.",
	Long: `resptag records HTTP exchanges in a local store and extracts exactly one
value from the latest response of a request: a header, a JSONPath or XPath
match in the body, or the whole decoded body.

Examples:
  resptag send GET https://api.example.com/users --name users
  resptag extract body req_1a2b '$.items[0].id'
  resptag extract header req_1a2b X-Request-Id
  resptag extract body req_1a2b '//title' --fn SUB_STRING --params 0,10`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if !exitErr.Reported {
				printError(exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}
		printError(err)
		os.Exit(ExitUsageError)
	}
}

func printError(err error) {
	f, ferr := output.New(outputFlag, output.WithNoColor(noColorFlag))
	if ferr != nil {
		f = output.NewConsoleFormatter(output.WithNoColor(noColorFlag))
	}
	f.FormatError(err)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbFlag, "db", getEnvString("RESPTAG_DB", ""), "Path to the request store (env: RESPTAG_DB)")
	flags.StringVar(&configFlag, "config", getEnvString("RESPTAG_CONFIG", ""), "Path to config file (env: RESPTAG_CONFIG)")
	flags.BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("RESPTAG_VERBOSE", false), "Verbose output and debug logging (env: RESPTAG_VERBOSE)")
	flags.BoolVar(&noColorFlag, "no-color", getEnvBool("RESPTAG_NO_COLOR", false), "Disable colored output (env: RESPTAG_NO_COLOR)")
	flags.StringVar(&logFileFlag, "log-file", getEnvString("RESPTAG_LOG_FILE", ""), "Also write logs to a rotating file (env: RESPTAG_LOG_FILE)")
	flags.StringVar(&logLevelFlag, "log-level", getEnvString("RESPTAG_LOG_LEVEL", ""), "Log level: trace, debug, info, warn, error (env: RESPTAG_LOG_LEVEL)")
	flags.StringVarP(&outputFlag, "output", "o", getEnvString("RESPTAG_OUTPUT", "console"), "Output format: console, json (env: RESPTAG_OUTPUT)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the config, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("failed to load config: %w", err)}
	}

	overrides := &config.Config{
		Database: dbFlag,
		LogFile:  logFileFlag,
		LogLevel: logLevelFlag,
	}
	if changed(cmd, "verbose") || verboseFlag {
		overrides.Verbose = config.BoolPtr(verboseFlag)
	}
	if changed(cmd, "no-color") || noColorFlag {
		overrides.NoColor = config.BoolPtr(noColorFlag)
	}
	appConfig = cfg.Merge(overrides)
	noColorFlag = appConfig.GetNoColor()

	l, closer, err := logx.New(logx.Options{
		Level:   appConfig.LogLevel,
		Verbose: appConfig.GetVerbose(),
		NoColor: appConfig.GetNoColor(),
		File:    appConfig.LogFile,
	})
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	logger = l
	logCloser = closer
	logx.SetGlobal(l)

	logger.Debug().Str("database", appConfig.Database).Str("command", cmd.Name()).Msg("config loaded")
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func openStore() (*store.Store, error) {
	s, err := store.Open(appConfig.Database)
	if err != nil {
		return nil, &ExitError{Code: ExitStoreError, Err: err}
	}
	return s, nil
}

func newFormatter() (output.Formatter, error) {
	f, err := output.New(outputFlag,
		output.WithVerbose(appConfig.GetVerbose()),
		output.WithNoColor(appConfig.GetNoColor()),
	)
	if err != nil {
		return nil, &ExitError{Code: ExitUsageError, Err: err}
	}
	return f, nil
}

func newClient() *http.Client {
	return http.NewClient(
		http.WithTimeout(appConfig.TimeoutDuration()),
		http.WithFollowRedirects(appConfig.GetFollowRedirects()),
		http.WithMaxRedirects(appConfig.MaxRedirects),
		http.WithValidateSSL(appConfig.GetValidateSSL()),
		http.WithProxy(appConfig.Proxy),
		http.WithDefaultHeaders(appConfig.Headers),
		http.WithRetries(appConfig.Retries, appConfig.RetryDelayDuration()),
	)
}
