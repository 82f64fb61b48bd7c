package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/httpcall/packages/core/config"
	"github.com/abdul-hamid-achik/httpcall/packages/core/job"
	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new httpcall project",
	Long: `Initialize a new httpcall project in the current directory.

This creates:
  - httpcall.config.json - Configuration file with client defaults
  - example.yaml         - Example job file

Examples:
  httpcall init
  httpcall init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "httpcall.config.json")
	exampleFile := filepath.Join(cwd, "example.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return exitWith(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{"User-Agent": "httpcall/" + version}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	data, err := job.Marshal(exampleJob())
	if err != nil {
		return fmt.Errorf("failed to render example job: %w", err)
	}
	if err := os.WriteFile(exampleFile, data, 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhttpcall project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'httpcall run example.yaml --env dev' to execute the example requests.\n")

	return nil
}

func exampleJob() *job.File {
	return &job.File{
		Variables: map[string]any{"baseUrl": "http://localhost:3000"},
		Environments: map[string]map[string]any{
			"dev":     {"baseUrl": "http://localhost:3000"},
			"staging": {"baseUrl": "https://staging.api.example.com"},
		},
		Requests: []*job.Request{
			{
				Name:        "healthCheck",
				Description: "Check that the API is up",
				Tags:        []string{"smoke"},
				URL:         "{{baseUrl}}/health",
			},
			{
				Name:        "createResource",
				Tags:        []string{"crud"},
				URL:         "{{baseUrl}}/resources",
				HTTPMode:    string(http.MethodPost),
				ContentType: "application/json",
				AcceptType:  "application/json",
				RequestBody: `{"name": "Test Resource"}`,

				ValidResponseCodes:   "201",
				ValidResponseContent: "Test Resource",
				Captures:             map[string]string{"resourceId": "id"},
			},
			{
				Name: "getResource",
				Tags: []string{"crud"},
				URL:  "{{baseUrl}}/resources/{{createResource.resourceId}}",
				Parameters: []http.NameValuePair{
					http.Pair("expand", "owner"),
				},
				ValidResponseCodes: "200",
			},
		},
	}
}
