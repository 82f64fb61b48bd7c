package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/httpcall/packages/core/runner"
	"github.com/abdul-hamid-achik/httpcall/packages/http"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case []string:
		return strings.Join(val, "; ")
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Running: "+result.File))

	for _, r := range result.Results {
		if r.Skipped {
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), r.Name)
			if r.SkipReason != "" && r.SkipReason != "filtered out" {
				fmt.Fprintf(f.writer, " (%s)", r.SkipReason)
			}
			fmt.Fprintf(f.writer, "\n")
			if r.Request != nil {
				f.writeIndented(r.Request.String(), "      ")
			}
			continue
		}

		if r.Error != nil {
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("x"), r.Name, red(fmt.Sprintf("(%v)", r.Error)))
			continue
		}

		symbol := green("✓")
		if !r.Passed {
			symbol = red("✗")
		}

		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

		if f.verbose && r.Request != nil {
			fmt.Fprintf(f.writer, "    %s %s\n", r.Request.Method, r.Request.URI)
		}
		if f.verbose && r.Response != nil {
			fmt.Fprintf(f.writer, "    Status: %s\n", statusColor(r.Response).Sprint(r.Response.StatusLine()))
		}

		if !r.Passed {
			for _, c := range r.Checks {
				if c.Passed {
					continue
				}
				fmt.Fprintf(f.writer, "    %s %s\n", red("→"), c.Subject)
				fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(c.Expected, 100))
				fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(c.Actual, 100))
				if c.Message != "" {
					fmt.Fprintf(f.writer, "      %s\n", c.Message)
				}
			}
		}

		if f.verbose && len(r.Captures) > 0 {
			fmt.Fprintf(f.writer, "    Captures:\n")
			names := make([]string, 0, len(r.Captures))
			for name := range r.Captures {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(f.writer, "      %s = %s\n", name, formatValue(r.Captures[name], 100))
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Requests: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	total := result.Passed + result.Failed + result.Skipped
	fmt.Fprintf(f.writer, "%d total\n", total)
	fmt.Fprintf(f.writer, "Time:     %dms\n", result.Duration.Milliseconds())
	if l := result.Latency; l != nil && l.Count > 1 {
		fmt.Fprintf(f.writer, "Latency:  p50 %dms, p95 %dms, max %dms\n",
			l.P50.Milliseconds(), l.P95.Milliseconds(), l.Max.Milliseconds())
	}
	fmt.Fprintf(f.writer, "\n")
}

// statusColor picks the status line color by response class.
func statusColor(resp *http.Response) *color.Color {
	switch {
	case resp.IsSuccess():
		return color.New(color.FgGreen)
	case resp.IsRedirect():
		return color.New(color.FgCyan)
	case resp.IsClientError():
		return color.New(color.FgYellow)
	case resp.IsServerError():
		return color.New(color.FgRed)
	}
	return color.New(color.Reset)
}

func (f *ConsoleFormatter) writeIndented(text, indent string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(f.writer, "%s%s\n", indent, line)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("httpcall"), version)
}
