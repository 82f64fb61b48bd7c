package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/httpcall/packages/core/job"
	"github.com/abdul-hamid-achik/httpcall/packages/import/curl"
)

var (
	importOutFlag           string
	importCommandFlag       string
	importExpectSuccessFlag bool
)

var importCmd = &cobra.Command{
	Use:   "import [file|-]",
	Short: "Convert curl commands into a job file",
	Long: `Convert curl commands into an httpcall job file. Commands are read from a
file (one per line, trailing backslashes continue a command), from stdin
with "-", or from --command.

Examples:
  httpcall import requests.sh -o api.yaml
  httpcall import --command "curl -u admin:secret https://api.example.com/admin"
  pbpaste | httpcall import -`,
	Args: cobra.MaximumNArgs(1),
	RunE: importCommand,
}

func init() {
	importCmd.Flags().StringVarP(&importOutFlag, "out", "o", "", "Write the job file here (default: stdout)")
	importCmd.Flags().StringVarP(&importCommandFlag, "command", "c", "", "A single curl command to convert")
	importCmd.Flags().BoolVar(&importExpectSuccessFlag, "expect-success", false, "Accept only 2xx responses in the generated requests")
	rootCmd.AddCommand(importCmd)
}

func importCommand(cmd *cobra.Command, args []string) error {
	var src io.Reader
	switch {
	case importCommandFlag != "":
		src = strings.NewReader(importCommandFlag)
	case len(args) == 1 && args[0] == "-":
		src = cmd.InOrStdin()
	case len(args) == 1:
		f, err := os.Open(args[0])
		if err != nil {
			return exitWith(ExitUsageError, err)
		}
		defer f.Close()
		src = f
	default:
		return exitWith(ExitUsageError, errors.New("give a file, - for stdin, or --command"))
	}

	converter := curl.NewConverter(curl.WithExpectSuccess(importExpectSuccessFlag))
	file, err := converter.ConvertReader(src)
	if err != nil {
		return exitWith(ExitParseError, err)
	}

	data, err := job.Marshal(file)
	if err != nil {
		return err
	}

	if importOutFlag == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(importOutFlag, data, 0644); err != nil {
		return fmt.Errorf("writing job file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d request(s) to %s\n", len(file.Requests), importOutFlag)
	return nil
}
