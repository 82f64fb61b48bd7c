// Package cmd implements the httpcall CLI commands using Cobra.
//
// Available commands:
//   - run: Execute the requests in one or more job files
//   - build: Print the request a set of flags would produce
//   - encode: Form-encode parameters, optionally onto a URL
//   - validate: Check job files without sending anything
//   - list: Display the requests defined in job files
//   - import: Convert curl commands into a job file
//   - init: Write an example job file and config
//   - version: Show httpcall version information
//
// Commands return *ExitError to choose the process exit code.
package cmd
