package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

var (
	buildURLFlag     string
	buildMethodFlag  string
	buildHeaderFlags []string
	buildParamFlags  []string
	buildBodyFlag    string
	buildSendFlag    bool
	buildTimeoutFlag time.Duration
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Print the request a method, url, headers, parameters and body produce",
	Long: `Build a request without a job file and print it in wire form.

Parameters are appended to the URL. For methods that carry an entity the body
is used when given, otherwise the parameters are form-encoded into it.

Examples:
  httpcall build --url https://api.example.com/users -p page=2
  httpcall build --method POST --url https://api.example.com/users \
    -H "Content-Type: application/json" --body '{"name":"ada"}'
  httpcall build --method DELETE --url https://api.example.com/users/7 --send`,
	Args: cobra.NoArgs,
	RunE: buildCommand,
}

func init() {
	buildCmd.Flags().StringVar(&buildURLFlag, "url", "", "Request URL")
	buildCmd.Flags().StringVarP(&buildMethodFlag, "method", "X", "GET", "HTTP method; unknown methods become POST")
	buildCmd.Flags().StringArrayVarP(&buildHeaderFlags, "header", "H", nil, "Header as name:value (repeatable)")
	buildCmd.Flags().StringArrayVarP(&buildParamFlags, "param", "p", nil, "Parameter as name=value (repeatable)")
	buildCmd.Flags().StringVar(&buildBodyFlag, "body", "", "Raw request body")
	buildCmd.Flags().BoolVar(&buildSendFlag, "send", false, "Also send the request and print the response status")
	buildCmd.Flags().DurationVar(&buildTimeoutFlag, "timeout", http.DefaultTimeout, "Timeout when sending")
	_ = buildCmd.MarkFlagRequired("url")
}

func buildCommand(cmd *cobra.Command, args []string) error {
	spec, err := specFromFlags()
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	req, err := http.BuildRequest(spec)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), req.String())

	if !buildSendFlag {
		return nil
	}

	client := http.NewClient(http.WithTimeout(buildTimeoutFlag))
	resp, err := http.Execute(cmd.Context(), client, req, http.NewWriterSink(cmd.ErrOrStderr()))
	if err != nil {
		return exitWith(ExitNetworkError, err)
	}
	defer resp.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s (%dms)\n", resp.StatusLine(), resp.DurationMs())
	return nil
}

func specFromFlags() (*http.RequestSpec, error) {
	spec := http.NewRequestSpec(http.ParseMethod(buildMethodFlag), buildURLFlag)

	for _, h := range buildHeaderFlags {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (want name:value)", h)
		}
		spec.AddHeader(name, strings.TrimSpace(value))
	}

	params, err := parsePairs(buildParamFlags)
	if err != nil {
		return nil, err
	}
	spec.Parameters = params

	return spec.SetBody(buildBodyFlag), nil
}

// parsePairs turns name=value arguments into pairs. A missing "=" means an
// empty value.
func parsePairs(args []string) ([]http.NameValuePair, error) {
	pairs := make([]http.NameValuePair, 0, len(args))
	for _, arg := range args {
		name, value, _ := strings.Cut(arg, "=")
		if name == "" {
			return nil, fmt.Errorf("invalid parameter %q (want name=value)", arg)
		}
		pairs = append(pairs, http.Pair(name, value))
	}
	return pairs, nil
}
