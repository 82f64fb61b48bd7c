package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/httpcall/packages/core/env"
	"github.com/abdul-hamid-achik/httpcall/packages/core/job"
	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate job files without sending requests",
	Long: `Load and validate job files without executing them. Every request is
also built, so malformed URLs are reported here.

Examples:
  httpcall validate api.yaml
  httpcall validate ./jobs/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := job.CollectFiles(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	if len(files) == 0 {
		return exitWith(ExitUsageError, errors.New("no job files found"))
	}

	hasErrors := false
	for _, file := range files {
		if err := validateFile(file); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return exitWith(ExitParseError, errors.New("validation failed"))
	}

	return nil
}

// validateFile builds each request with the file's own variables. Requests whose
// URL depends on captures, environments or the process environment are skipped,
// since those values only exist at run time.
func validateFile(path string) error {
	f, err := job.Load(path)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}

	resolver := env.NewResolver()
	resolver.SetVariables(f.Variables)

	var errs []error
	for _, req := range f.Requests {
		if resolver.HasUnresolvedVariables(req.URL) || strings.Contains(req.URL, "{{$") {
			continue
		}
		if _, err := http.BuildRequest(req.ToSpec(resolver.Resolve)); err != nil {
			errs = append(errs, fmt.Errorf("request %s (line %d): %w", req.DisplayName(), req.Line, err))
		}
	}
	return errors.Join(errs...)
}
