// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package cmd provides the root command for the ennio CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ennio-run/ennio"
	"github.com/ennio-run/ennio/actions"
	"github.com/ennio-run/ennio/config"
	configv0 "github.com/ennio-run/ennio/config/v0"
	"github.com/ennio-run/ennio/fetch"
	"github.com/ennio-run/ennio/schema"
)

// NewRootCmd creates the root command for the ennio CLI.
func NewRootCmd() *cobra.Command {
	var (
		level      string
		ver        bool
		list       bool
		explain    bool
		from       string
		policy     = config.DefaultFetchPolicy // VarP does not allow you to set a default value
		s          string
		timeout    time.Duration
		dir        string
		configPath string
		output     string
		gc         bool
	)

	var cfg *configv0.Config // cfg is not set via CLI flag

	// closure initializer
	loadConfig := func(cmd *cobra.Command) error {
		p, err := config.Path(configPath)
		if err != nil {
			return err
		}
		cfg, err = configv0.LoadConfigFile(afero.NewOsFs(), p)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}

		// default < cfg < flags
		if !cmd.Flags().Changed("fetch-policy") && cfg.FetchPolicy != policy {
			if err := policy.Set(cfg.FetchPolicy.String()); err != nil {
				return err
			}
		}

		return nil
	}

	root := &cobra.Command{
		Use:   "ennio [workflow...]",
		Short: "Run workflows of actions declared in YAML",
		Long: `
 ███████╗███╗   ██╗███╗   ██╗██╗ ██████╗
 ██╔════╝████╗  ██║████╗  ██║██║██╔═══██╗
 █████╗  ██╔██╗ ██║██╔██╗ ██║██║██║   ██║
 ██╔══╝  ██║╚██╗██║██║╚██╗██║██║██║   ██║
 ███████╗██║ ╚████║██║ ╚████║██║╚██████╔╝
 ╚══════╝╚═╝  ╚═══╝╚═╝  ╚═══╝╚═╝ ╚═════╝
`,
		Example: `
ennio build

ennio -f ../other.yaml lint test -o json

ennio -f "pkg:github/ennio-run/ennio@main#testdata/simple.yaml" --list
`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := log.ParseLevel(level)
			if err != nil {
				return err
			}
			log.FromContext(cmd.Context()).SetLevel(l)

			if dir != "" {
				if err := os.Chdir(dir); err != nil {
					return err
				}
			}

			return loadConfig(cmd)
		},
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			svc, err := fetch.NewService(
				fetch.WithClient(&http.Client{
					Timeout: 500 * time.Millisecond,
				}),
			)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}

			// PersistentPreRun is not run during completions
			if err := loadConfig(cmd); err != nil {
				return nil, cobra.ShellCompDirectiveError
			}

			uri, err := fetch.Parse(from, cfg.Aliases)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}

			f, err := fetch.LoadFile(cmd.Context(), svc, uri)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}

			names := make([]string, 0, len(f.Workflows))
			for _, name := range f.Workflows.OrderedNames() {
				names = append(names, strings.Join([]string{name, firstLine(f.Workflows[name].Description)}, "\t"))
			}

			return names, cobra.ShellCompDirectiveNoFileComp
		},
		PreRunE: func(_ *cobra.Command, _ []string) error {
			switch output {
			case "", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported output format: %q", output)
			}
		},
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			if ver && len(args) == 0 {
				v, err := version()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}

			fs := afero.NewOsFs()

			createDir := true
			if !cmd.Flags().Changed("store") {
				localStorePath := filepath.Join(".ennio", "store")
				if fi, err := fs.Stat(localStorePath); err == nil && fi.IsDir() {
					s = localStorePath
					createDir = false
				}
			}

			s = filepath.Clean(os.ExpandEnv(s))
			if s == "." {
				s = filepath.Join(".ennio", "store")
			}

			if createDir {
				if err := fs.MkdirAll(s, 0o744); err != nil {
					return err
				}
			}

			store, err := fetch.NewLocalStore(afero.NewBasePathFs(fs, s))
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}

			svc, err := fetch.NewService(
				fetch.WithStorage(store),
				fetch.WithFetchPolicy(policy),
			)
			if err != nil {
				return fmt.Errorf("failed to initialize fetcher service: %w", err)
			}

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
				cmd.SetContext(ctx)
			}

			uri, err := fetch.Parse(from, cfg.Aliases)
			if err != nil {
				return fmt.Errorf("failed to resolve %q: %w", from, err)
			}

			f, err := fetch.LoadFile(ctx, svc, uri)
			if err != nil {
				return fmt.Errorf("failed to fetch %q: %w", uri, err)
			}

			if list {
				printList(cmd.OutOrStdout(), f)
				return nil
			}

			if explain {
				md, err := renderMarkdown(f.Explain(args...))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), md)
				return nil
			}

			if len(args) == 0 {
				args = append(args, schema.DefaultWorkflowName)
			}

			// keep stdout parseable when outputs are printed
			stdout := cmd.OutOrStdout()
			if output != "" {
				stdout = cmd.ErrOrStderr()
			}

			results := orderedmap.New[string, *ennio.Outputs]()
			var runErr error
			for _, name := range args {
				wf, ok := f.Workflows.Find(name)
				if !ok {
					runErr = fmt.Errorf("workflow %q not found in %s", name, uri)
					break
				}

				compiled, err := actions.Compile(name, wf, actions.WithStreams(stdout, cmd.ErrOrStderr()))
				if err != nil {
					runErr = err
					break
				}

				outputs := compiled.Run(ctx)
				results.Set(name, outputs)

				if err := checkFailed(ctx, name, outputs); err != nil {
					runErr = err
					break
				}
			}

			if output != "" {
				if err := printOutputs(cmd.OutOrStdout(), output, results); err != nil {
					return errors.Join(runErr, err)
				}
			}

			if runErr != nil {
				return runErr
			}

			if gc {
				removed, err := store.GC()
				if err != nil {
					return err
				}
				logger.Info("collected garbage", "store", s, "removed", removed)
			}

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&level, "log-level", "l", "info", "Set log level")
	_ = root.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{log.DebugLevel.String(), log.InfoLevel.String(), log.WarnLevel.String(), log.ErrorLevel.String(), log.FatalLevel.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	root.Flags().BoolVarP(&ver, "version", "V", false, "Print version number and exit")
	root.Flags().BoolVar(&list, "list", false, "Print list of available workflows and exit")
	root.Flags().BoolVar(&explain, "explain", false, "Print explanation of the workflow file or the named workflow(s) and exit")
	root.Flags().StringVarP(&from, "from", "f", fetch.DefaultFileName, "Read location as workflow file")
	root.Flags().DurationVarP(&timeout, "timeout", "t", time.Hour, "Maximum time allowed for execution")
	root.PersistentFlags().StringVarP(&dir, "directory", "C", "", "Change to directory before doing anything")
	_ = root.MarkPersistentFlagDirname("directory")
	root.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("Path to ennio config file (default $%s or ${HOME}/.ennio/config.yaml)", config.EnvConfigPath))
	_ = root.MarkPersistentFlagFilename("config", "yaml", "yml")
	root.Flags().VarP(&policy, "fetch-policy", "p", fmt.Sprintf(`Set fetch policy ("%s")`, strings.Join(config.AvailablePolicies(), `", "`)))
	_ = root.RegisterFlagCompletionFunc("fetch-policy", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.AvailablePolicies(), cobra.ShellCompDirectiveNoFileComp
	})
	root.Flags().StringVarP(&s, "store", "s", "${HOME}/.ennio/store", "Set storage directory")
	_ = root.MarkFlagDirname("store")
	root.Flags().BoolVar(&gc, "gc", false, "Perform garbage collection on the store")
	root.Flags().StringVarP(&output, "output", "o", "", `Print the outputs of every action to stdout ("json", "yaml")`)
	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(NewPublishCmd())

	return root
}

// FailedError is returned when actions of a workflow finished with a failed status
type FailedError struct {
	Workflow string
	Actions  []string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("workflow %q: failed actions: %s", e.Workflow, strings.Join(e.Actions, ", "))
}

func checkFailed(ctx context.Context, workflow string, outputs *ennio.Outputs) error {
	logger := log.FromContext(ctx)

	var failed []string
	for name, out := range outputs.All() {
		if out.Status() != ennio.StatusFailed {
			continue
		}
		failed = append(failed, name)
		if stderr, ok := out.Value("stderr"); ok && ennio.Text(stderr) != "" {
			logger.Error(strings.TrimSpace(ennio.Text(stderr)), "workflow", workflow, "action", name)
		}
	}

	if len(failed) == 0 {
		return nil
	}
	return &FailedError{Workflow: workflow, Actions: failed}
}

func version() (string, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", fmt.Errorf("version information not available")
	}
	if bi.Main.Path == "github.com/ennio-run/ennio" {
		return bi.Main.Version, nil
	}
	for _, dep := range bi.Deps {
		if dep.Path == "github.com/ennio-run/ennio" {
			return dep.Version, nil
		}
	}
	return bi.Main.Version, nil
}

// Main executes the root command for the ennio CLI.
//
// It returns 0 on success, 1 on failure and logs any errors.
func Main() int {
	cli := NewRootCmd()

	ctx := context.Background()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	logger.SetStyles(DefaultStyles())

	ctx = log.WithContext(ctx, logger)
	cmd, err := cli.ExecuteContextC(ctx)
	if err != nil {
		logger.Print("")

		switch {
		case errors.Is(cmd.Context().Err(), context.DeadlineExceeded):
			logger.Error("workflow timed out")
		case errors.Is(cmd.Context().Err(), context.Canceled):
			err = errors.Join(context.Canceled, err)
		}

		logger.Error(err)
	}
	return ParseExitCode(err)
}

// ParseExitCode calculates the exit code from a given error
//
// 0 - the error was nil
// 130 - the run was interrupted
// 1 - there was some other error, including failed actions
func ParseExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
