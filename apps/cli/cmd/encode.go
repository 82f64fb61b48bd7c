package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

var encodeURLFlag string

var encodeCmd = &cobra.Command{
	Use:   "encode <name=value>...",
	Short: "Form-encode parameters",
	Long: `Print parameters as an application/x-www-form-urlencoded string, or
appended to a URL's query with --url.

Examples:
  httpcall encode a=1 "b=c d"
  httpcall encode --url "https://example.com/search?x=9" q=go page=2`,
	RunE: encodeCommand,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeURLFlag, "url", "", "Append the parameters to this URL")
}

func encodeCommand(cmd *cobra.Command, args []string) error {
	params, err := parsePairs(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	if encodeURLFlag == "" {
		fmt.Fprintln(cmd.OutOrStdout(), http.ParamsToString(params))
		return nil
	}

	out, err := http.AppendParamsToURL(encodeURLFlag, params)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
