package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/resptag/packages/capture"
	"github.com/abdul-hamid-achik/resptag/packages/output"
	"github.com/abdul-hamid-achik/resptag/packages/query"
	"github.com/abdul-hamid-achik/resptag/packages/transform"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const (
	// WatchDebounceDelay is the debounce delay for store change events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	extractFnFlag     string
	extractParamsFlag string
	extractModeFlag   string
	extractParserFlag string
	extractStrictFlag bool
	extractWatchFlag  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <body|raw|header> <request-id> [filter]",
	Short: "Extract one value from the latest response of a request",
	Long: `Extract exactly one value from the latest stored response of a request.

Fields:
  body    query the decoded body; filters starting with "$" are JSONPath,
          anything else is XPath. The match is passed through --fn.
  raw     the entire decoded body; the filter is ignored
  header  the value of the named header, ignoring case

A query that matches nothing or more than one node is an error.

Functions:
  NONE        return the match unchanged (default)
  SUB_STRING  --params startIndex,endIndex returns the match in [start, end)

Examples:
  resptag extract body req_1a2b '$.items[0].id'
  resptag extract body req_1a2b '//book[@id="7"]/title'
  resptag extract header req_1a2b X-Request-Id
  resptag extract raw req_1a2b
  resptag extract body req_1a2b '$.token' --fn SUB_STRING --params 0,8
  resptag extract body req_1a2b '$.status' --watch`,
	Args: cobra.RangeArgs(2, 3),
	RunE: extractCommand,
}

func init() {
	extractCmd.Flags().StringVar(&extractFnFlag, "fn", string(transform.None), "Post-transform function: NONE, SUB_STRING")
	extractCmd.Flags().StringVar(&extractParamsFlag, "params", "", "Post-transform parameters (SUB_STRING: startIndex,endIndex)")
	extractCmd.Flags().StringVar(&extractModeFlag, "mode", "", "Query engine: auto, jsonpath, xpath (default from config)")
	extractCmd.Flags().StringVar(&extractParserFlag, "parser", "", "Markup parser for XPath: auto, xml, html (default from config)")
	extractCmd.Flags().BoolVar(&extractStrictFlag, "strict", false, "Report invalid function params as an error instead of the result")
	extractCmd.Flags().BoolVarP(&extractWatchFlag, "watch", "w", false, "Re-run the extraction whenever the store changes")

	_ = extractCmd.RegisterFlagCompletionFunc("fn", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(transform.Names()))
		for _, n := range transform.Names() {
			names = append(names, string(n))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	extractCmd.ValidArgsFunction = func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		fields := make([]string, 0, len(capture.Fields()))
		for _, f := range capture.Fields() {
			fields = append(fields, string(f))
		}
		return fields, cobra.ShellCompDirectiveNoFileComp
	}
}

func extractOptions(cmd *cobra.Command) ([]capture.Option, error) {
	modeName := appConfig.QueryMode
	if extractModeFlag != "" {
		modeName = extractModeFlag
	}
	mode, err := query.ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	parserName := appConfig.MarkupParser
	if extractParserFlag != "" {
		parserName = extractParserFlag
	}
	parser, err := query.ParseParser(parserName)
	if err != nil {
		return nil, err
	}

	strict := appConfig.GetStrictTransforms()
	if changed(cmd, "strict") {
		strict = extractStrictFlag
	}

	return []capture.Option{
		capture.WithLogger(logger),
		capture.WithQueryMode(mode),
		capture.WithMarkupParser(parser),
		capture.WithStrictTransforms(strict),
	}, nil
}

func extractCommand(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	opts, err := extractOptions(cmd)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	params := capture.Params{
		Field:          capture.Field(args[0]),
		RequestID:      args[1],
		Function:       transform.Name(extractFnFlag),
		FunctionParams: extractParamsFlag,
	}
	if len(args) == 3 {
		params.Filter = args[2]
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	extractor := capture.NewExtractor(s, opts...)

	run := func(ctx context.Context) error {
		start := time.Now()
		value, err := extractor.Extract(ctx, params)
		formatter.FormatExtraction(output.Extraction{
			Field:     string(params.Field),
			RequestID: params.RequestID,
			Filter:    params.Filter,
			Value:     value,
			Err:       err,
			Duration:  time.Since(start),
		})
		return err
	}

	if !extractWatchFlag {
		if err := run(cmd.Context()); err != nil {
			return &ExitError{Code: ExitExtractError, Err: err, Reported: true}
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = run(ctx)
	return watchStore(ctx, cmd, s.Path(), run)
}

// watchStore calls run after writes to the store file settle, until ctx is
// done. Runs happen on the watch loop, one at a time, and never after return.
func watchStore(ctx context.Context, cmd *cobra.Command, path string, run func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: sqlite may replace the journal files next to the store.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching %s for changes... (press Ctrl+C to stop)\n", path)

	target := filepath.Clean(path)
	debounceTimer := time.NewTimer(WatchDebounceDelay)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) {
				continue
			}
			debounceTimer.Reset(WatchDebounceDelay)

		case <-debounceTimer.C:
			if ctx.Err() != nil {
				return nil
			}
			logger.Debug().Str("store", path).Msg("store changed, re-running extraction")
			_ = run(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}
