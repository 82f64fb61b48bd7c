package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/httpcall/packages/core/job"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List the requests in job files",
	Long: `List the requests defined in YAML job files.

Examples:
  httpcall list api.yaml
  httpcall list ./jobs/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := job.CollectFiles(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	if len(files) == 0 {
		return exitWith(ExitUsageError, errors.New("no job files found"))
	}

	for _, file := range files {
		f, err := job.Load(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for _, req := range f.Requests {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (line %d)\n", req.DisplayName(), req.Line)
			if req.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", req.Description)
			}
			if len(req.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %s\n", strings.Join(req.Tags, ", "))
			}
		}
	}

	return nil
}
