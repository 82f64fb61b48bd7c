package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/httpcall/packages/core/config"
	"github.com/abdul-hamid-achik/httpcall/packages/core/env"
	"github.com/abdul-hamid-achik/httpcall/packages/core/job"
	"github.com/abdul-hamid-achik/httpcall/packages/core/runner"
	"github.com/abdul-hamid-achik/httpcall/packages/http"
	"github.com/abdul-hamid-achik/httpcall/packages/logger"
	"github.com/abdul-hamid-achik/httpcall/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run the requests in httpcall job files",
	Long: `Run the requests defined in YAML job files.

Examples:
  httpcall run api.yaml
  httpcall run api.yaml --env staging
  httpcall run ./jobs/ --tags smoke
  httpcall run api.yaml --name "create*" --dry-run
  httpcall run api.yaml -o json --output-file results.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	envFlag        string
	envFileFlag    string
	configFlag     string
	nameFlag       string
	tagsFlag       string
	verboseFlag    int
	quietFlag      bool
	noColorFlag    bool
	outputFlag     string
	outputFileFlag string
	bailFlag       bool
	timeoutFlag    string
	proxyFlag      string
	insecureFlag   bool
	dryRunFlag     bool
	rateFlag       float64
	watchFlag      bool
	logLevelFlag   string
	logFormatFlag  string
)

func init() {
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("HTTPCALL_ENV", ""), "Job file environment to use (env: HTTPCALL_ENV)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HTTPCALL_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HTTPCALL_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HTTPCALL_CONFIG", ""), "Path to config file (env: HTTPCALL_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only requests matching name pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("HTTPCALL_TAGS", ""), "Run only requests with specified tags (comma-separated) (env: HTTPCALL_TAGS)")

	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("HTTPCALL_QUIET", false), "Suppress request progress lines (env: HTTPCALL_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HTTPCALL_NO_COLOR", false), "Disable colored output (env: HTTPCALL_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HTTPCALL_OUTPUT", "console"), "Output format: console, json (env: HTTPCALL_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("HTTPCALL_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: HTTPCALL_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&logLevelFlag, "log-level", getEnvString("HTTPCALL_LOG_LEVEL", ""), "Diagnostic log level: debug, info, warn, error (env: HTTPCALL_LOG_LEVEL)")
	runCmd.Flags().StringVar(&logFormatFlag, "log-format", getEnvString("HTTPCALL_LOG_FORMAT", ""), "Diagnostic log format: console, json; json also logs progress lines at info (env: HTTPCALL_LOG_FORMAT)")

	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("HTTPCALL_BAIL", false), "Stop on first failure (env: HTTPCALL_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HTTPCALL_TIMEOUT", "30s"), "Request timeout (e.g., 30s, 1m) (env: HTTPCALL_TIMEOUT)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Build and show requests without sending them")
	runCmd.Flags().Float64Var(&rateFlag, "rate", 0, "Maximum requests per second (0 = unlimited)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run")

	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HTTPCALL_PROXY", ""), "Proxy URL for HTTP requests (env: HTTPCALL_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HTTPCALL_INSECURE", false), "Disable SSL certificate validation (env: HTTPCALL_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// runSettings is the file config with command line flags applied on top.
type runSettings struct {
	cfg     *config.Config
	timeout time.Duration
	tags    []string
}

func loadRunSettings(cmd *cobra.Command) (*runSettings, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	flags := &config.Config{
		Proxy:     proxyFlag,
		EnvFile:   envFileFlag,
		LogLevel:  logLevelFlag,
		LogFormat: logFormatFlag,
	}
	if cmd.Flags().Changed("output") || os.Getenv("HTTPCALL_OUTPUT") != "" {
		flags.Output = strings.ToLower(outputFlag)
	}
	if insecureFlag {
		flags.ValidateSSL = config.BoolPtr(false)
	}
	if bailFlag {
		flags.Bail = config.BoolPtr(true)
	}
	if verboseFlag > 0 {
		flags.Verbose = config.BoolPtr(true)
	}
	if noColorFlag {
		flags.NoColor = config.BoolPtr(true)
	}

	cfg := fileConfig.Merge(flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	settings := &runSettings{cfg: cfg, timeout: cfg.TimeoutDuration()}
	if cmd.Flags().Changed("timeout") || settings.timeout == 0 {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		settings.timeout = timeout
	}

	for _, t := range strings.Split(tagsFlag, ",") {
		if t = strings.TrimSpace(t); t != "" {
			settings.tags = append(settings.tags, t)
		}
	}

	return settings, nil
}

// VarEnvPrefix marks process environment variables exposed to job files,
// e.g. HTTPCALL_VAR_token becomes {{token}}.
const VarEnvPrefix = "HTTPCALL_VAR_"

// runVariables collects HTTPCALL_VAR_* variables, then the .env file on top.
func runVariables(envFile string) (map[string]any, error) {
	variables := env.LoadSystemEnv(VarEnvPrefix)
	if envFile == "" {
		return variables, nil
	}

	vars, err := env.LoadAndExportDotEnv(envFile)
	if err != nil {
		return nil, err
	}
	dotenv := make(map[string]any, len(vars))
	for k, v := range vars {
		dotenv[k] = v
	}
	return env.MergeVariables(variables, dotenv), nil
}

func newFormatter(format string, w io.Writer, verbose, noColor bool) Formatter {
	if format == "json" {
		return output.NewJSONFormatter(output.JSONWithWriter(w))
	}
	return output.NewConsoleFormatter(
		output.WithWriter(w),
		output.WithVerbose(verbose),
		output.WithNoColor(noColor),
	)
}

func runCommand(cmd *cobra.Command, args []string) error {
	settings, err := loadRunSettings(cmd)
	if err != nil {
		return exitWith(ExitConfigError, err)
	}
	cfg := settings.cfg

	log, err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return exitWith(ExitConfigError, err)
	}
	defer logger.Close()

	// Setup output writer
	outWriter := cmd.OutOrStdout()
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return exitWith(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		outWriter = f
	}

	variables, err := runVariables(cfg.EnvFile)
	if err != nil {
		return exitWith(ExitConfigError, err)
	}
	log.Debugw("runner variables loaded", "env_file", cfg.EnvFile, "variables", len(variables))

	var progress http.ProgressSink
	switch {
	case quietFlag:
	case cfg.LogFormat == "json":
		progress = logger.NewSink(log, "component", "http")
	default:
		progress = http.NewWriterSink(cmd.ErrOrStderr())
	}

	r := runner.NewRunner(&runner.Config{
		Environment:    envFlag,
		Timeout:        settings.timeout,
		FollowRedirect: cfg.GetFollowRedirects(),
		MaxRedirects:   cfg.MaxRedirects,
		ValidateSSL:    cfg.GetValidateSSL(),
		Proxy:          cfg.Proxy,
		DefaultHeaders: cfg.Headers,
		Bail:           cfg.GetBail(),
		NameFilter:     nameFlag,
		TagsFilter:     settings.tags,
		DryRun:         dryRunFlag,
		Rate:           rateFlag,
		Variables:      variables,
		Progress:       progress,
		Logger:         log,
	})
	defer r.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := job.CollectFiles(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}
	if len(files) == 0 {
		return exitWith(ExitUsageError, errors.New("no job files found"))
	}

	// watch mode re-runs from timer goroutines; runs share outWriter
	run := serialized(func() int {
		formatter := newFormatter(cfg.Output, outWriter, cfg.GetVerbose(), cfg.GetNoColor())
		formatter.FormatHeader(version)
		code, duration := runFiles(ctx, r, files, formatter, cfg.GetBail(), log)
		if flushable, ok := formatter.(Flushable); ok {
			if err := flushable.Flush(duration); err != nil {
				log.Errorw("writing output", "error", err)
			}
		}
		return code
	})

	code := run()
	if !watchFlag {
		if code != ExitSuccess {
			return exitWith(code, nil)
		}
		return nil
	}

	return watch(ctx, cmd, args, files, run, log)
}

// serialized wraps fn so that concurrent calls run one at a time.
func serialized(fn func() int) func() int {
	var mu sync.Mutex
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		return fn()
	}
}

// runFiles runs every file and returns the exit code the outcome maps to.
// Load errors outrank network errors, which outrank failed checks.
func runFiles(ctx context.Context, r *runner.Runner, files []string, formatter Formatter, bail bool, log *zap.SugaredLogger) (int, time.Duration) {
	start := time.Now()
	var parseErrors, networkErrors, failed int

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		result, err := r.RunFile(ctx, file)
		if err != nil {
			formatter.FormatError(err)
			log.Debugw("job file rejected", "file", file, "error", err)
			parseErrors++
			if bail {
				break
			}
			continue
		}

		formatter.FormatResult(result)
		failed += result.Failed
		for _, res := range result.Results {
			if res.Error != nil && res.Request != nil && res.Response == nil {
				networkErrors++
			}
		}

		if bail && result.Failed > 0 {
			break
		}
	}

	switch {
	case parseErrors > 0:
		return ExitParseError, time.Since(start)
	case networkErrors > 0:
		return ExitNetworkError, time.Since(start)
	case failed > 0:
		return ExitTestFailure, time.Since(start)
	}
	return ExitSuccess, time.Since(start)
}

func watch(ctx context.Context, cmd *cobra.Command, args, files []string, run func() int, log *zap.SugaredLogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				log.Warnw("cannot watch directory", "dir", dir, "error", err)
			}
			watchedDirs[dir] = true
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			continue
		}
		_ = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && !watchedDirs[path] {
				_ = watcher.Add(path)
				watchedDirs[path] = true
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) || !job.IsJobFile(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\nRe-running...\n\n", event.Name)
				log.Infow("re-running after change", "file", event.Name, "exit_code", run())
				fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorw("watcher error", "error", err)
		}
	}
}
