package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/resptag/packages/capture"
	"github.com/abdul-hamid-achik/resptag/packages/transform"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	describeFormatFlag string
	describeFieldFlag  string
	describeFnFlag     string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the extraction arguments for building a UI",
	Long: `Print the arguments an extraction takes, with their choices, labels and
visibility for the given field and function. Hosts use this to render an
input form; extract validates its inputs on its own.

Examples:
  resptag describe
  resptag describe --field raw
  resptag describe --field body --fn SUB_STRING --format yaml`,
	Args: cobra.NoArgs,
	RunE: describeCommand,
}

func init() {
	describeCmd.Flags().StringVar(&describeFormatFlag, "format", "json", "Output format: json, yaml")
	describeCmd.Flags().StringVar(&describeFieldFlag, "field", string(capture.FieldBody), "Field the labels are resolved for")
	describeCmd.Flags().StringVar(&describeFnFlag, "fn", string(transform.None), "Function the labels are resolved for")
}

func describeCommand(cmd *cobra.Command, args []string) error {
	views := capture.Describe(capture.Params{
		Field:    capture.Field(describeFieldFlag),
		Function: transform.Name(describeFnFlag),
	})

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(describeFormatFlag) {
	case "json":
		data, err = json.MarshalIndent(views, "", "  ")
		data = append(data, '\n')
	case "yaml", "yml":
		data, err = yaml.Marshal(views)
	default:
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("unknown format %q (expected json or yaml)", describeFormatFlag)}
	}
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
