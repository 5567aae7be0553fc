package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/macropower/patsub/pkg/config"
	"github.com/macropower/patsub/pkg/log"
	"github.com/macropower/patsub/pkg/mcp"
	"github.com/macropower/patsub/pkg/regex"
	"github.com/macropower/patsub/pkg/rule"
	"github.com/macropower/patsub/pkg/stream"
	"github.com/macropower/patsub/pkg/watch"
)

const (
	cmdLong = `patsub reads lines from stdin and rewrites each line with the first rule
whose pattern matches it. Lines that no rule matches are dropped.

A pattern is literal text with placeholders. {name} captures a group using a
regex inferred from the name, {name:regex} uses an explicit regex, and {}
or {:regex} capture without a name. A template refers to groups with {name}
and to the pseudo-variables {^} (text before the match), {%} (the match),
{$} (text after the match) and {@} (the whole line).`

	cmdExamples = `  # Reformat dates:
  echo 2024-01-15 | patsub '{y}-{m}-{d}' '{d}/{m}/{y}'

  # Several rules, tried in order. A trailing pattern prints the whole line:
  patsub 'GET {path}' 'read {path}' 'POST {path}' 'write {path}' 'ERROR{}' < access.log

  # Rules given as flags, using the pcre engine:
  patsub --engine pcre --rule "'{user:\w+(?=@)}@{host}' '{user} on {host}'"

  # Load rules from a file and reload it when it changes:
  tail -f app.log | patsub --config rules.yaml --watch

  # Print the regexes compiled from the patterns:
  patsub --print '{key}={value}'

  # Serve the MCP tools over stdio:
  patsub --config rules.yaml --serve-mcp stdio`
)

var (
	ErrNoRules            = errors.New("no rules")
	ErrWatchWithoutConfig = errors.New("--watch requires --config")
)

type RunArgs struct {
	*RootArgs

	ConfigPath   string
	Engine       string
	DefaultRegex string
	ServeMCP     string
	Rules        []string
	Pairs        []string
	MatchTimeout time.Duration
	Buffered     bool
	Print        bool
	Watch        bool
	ShowConfig   bool
	PrintSchema  bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&ra.ConfigPath, "config", "c", "", "Path to a rules file")
	f.StringArrayVar(&ra.Rules, "rule", nil, "Add a rule written as 'PATTERN [TEMPLATE]', may be repeated")
	f.StringVar(&ra.Engine, "engine", "", fmt.Sprintf("Regex engine, one of: %s", regex.AllEngines))
	f.StringVarP(&ra.DefaultRegex, "default-regex", "d", "", "Regex for placeholders with alphabetic names")
	f.DurationVar(&ra.MatchTimeout, "match-timeout", 0, "Maximum duration of a single match (pcre only)")
	f.BoolVarP(&ra.Buffered, "buffered", "b", false, "Do not flush after every output line")
	f.BoolVarP(&ra.Print, "print", "p", false, "Print the compiled regexes and exit")
	f.BoolVarP(&ra.Watch, "watch", "w", false, "Reload the rules file when it changes")
	f.StringVar(&ra.ServeMCP, "serve-mcp", "", "Serve the MCP server at an HTTP address, or over stdio when empty")
	f.BoolVar(&ra.ShowConfig, "show-config", false, "Print the effective configuration and exit")
	f.BoolVar(&ra.PrintSchema, "print-schema", false, "Print the configuration JSON schema and exit")

	err := cmd.MarkFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}

	err = cmd.RegisterFlagCompletionFunc("engine",
		cobra.FixedCompletions(regex.AllEngines, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func run(cmd *cobra.Command, ra *RunArgs) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()

	if ra.PrintSchema {
		b, err := config.Schema()
		if err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}

		mustN(fmt.Fprintln(out, string(b)))

		return nil
	}

	specs, err := ra.ruleSpecs()
	if err != nil {
		return err
	}

	if ra.ConfigPath == "" && len(specs) == 0 {
		err = ra.discoverConfig()
		if err != nil {
			return err
		}
	}

	if ra.Watch && ra.ConfigPath == "" {
		return ErrWatchWithoutConfig
	}

	cfg, err := ra.loadConfig(cmd)
	if err != nil {
		return err
	}

	if ra.ShowConfig {
		return showConfig(out, cfg, specs)
	}

	set, err := buildSet(ctx, cfg, specs)
	if err != nil {
		return err
	}

	if ra.Print {
		for _, rx := range set.Regexes() {
			mustN(fmt.Fprintln(out, rx))
		}

		return nil
	}

	holder := rule.NewHolder(set)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if ra.Watch {
		w, err := watch.New(ra.ConfigPath, holder, func(ctx context.Context) (*rule.Set, error) {
			cfg, err := ra.loadConfig(cmd)
			if err != nil {
				return nil, err
			}

			return buildSet(ctx, cfg, specs)
		})
		if err != nil {
			return fmt.Errorf("watch %q: %w", ra.ConfigPath, err)
		}

		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	if cmd.Flags().Changed("serve-mcp") {
		opts, err := cfg.RuleOptions()
		if err != nil {
			return err
		}

		srv := mcp.NewServer(ra.ServeMCP, holder, opts...)

		g.Go(func() error {
			defer cancel()

			return srv.Serve(ctx)
		})
	} else {
		g.Go(func() error {
			defer cancel()

			return processLines(ctx, cmd, holder, cfg.Buffered)
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err //nolint:wrapcheck // Errors are wrapped by each task.
	}

	return nil
}

// discoverConfig sets ConfigPath to the nearest rules file, if there is one.
func (ra *RunArgs) discoverConfig() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	path, err := config.Discover(wd)
	if err != nil {
		return fmt.Errorf("discover rules file: %w", err)
	}

	if path != "" {
		slog.Debug("using discovered rules file", slog.String("path", path))
	}

	ra.ConfigPath = path

	return nil
}

// loadConfig reads the rules file, if any, and applies flag overrides.
func (ra *RunArgs) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if ra.ConfigPath != "" {
		cl, err := config.NewLoaderFromFile(ra.ConfigPath, config.WithColor(isTerminal(cmd.ErrOrStderr())))
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}

		cfg, err = cl.ValidateAndLoad()
		if err != nil {
			return nil, fmt.Errorf("invalid config %q: %w", ra.ConfigPath, err)
		}
	}

	err := ra.applyFlags(cmd.Flags(), cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (ra *RunArgs) applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("engine") {
		engine, err := regex.GetEngine(ra.Engine)
		if err != nil {
			return fmt.Errorf("--engine: %w", err)
		}

		cfg.Engine = string(engine)
	}
	if flags.Changed("default-regex") {
		cfg.DefaultRegex = ra.DefaultRegex
	}
	if flags.Changed("match-timeout") {
		cfg.MatchTimeout = ra.MatchTimeout.String()
	}
	if flags.Changed("buffered") {
		cfg.Buffered = ra.Buffered
	}

	return nil
}

func buildSet(ctx context.Context, cfg *config.Config, specs []rule.Spec) (*rule.Set, error) {
	set, err := cfg.BuildSet(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: pass PATTERN [TEMPLATE] arguments, --rule or --config", ErrNoRules)
	}

	return set, nil
}

// processLines runs the line loop over the command's input and output. It
// returns as soon as ctx is done, even while a read is blocked.
func processLines(ctx context.Context, cmd *cobra.Command, eval stream.Evaluator, buffered bool) error {
	in := cmd.InOrStdin()
	if isTerminal(in) {
		mustN(fmt.Fprintln(cmd.ErrOrStderr(), "Reading lines from the terminal, press Ctrl+D to finish."))
	}

	type result struct {
		err   error
		stats stream.Stats
	}

	p := stream.NewProcessor(eval, stream.WithBuffered(buffered))
	done := make(chan result, 1)

	go func() {
		stats, err := p.Run(ctx, in, cmd.OutOrStdout())
		done <- result{stats: stats, err: err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // Checked by the caller.

	case res := <-done:
		log.WithContext(ctx).InfoContext(ctx, "finished", slog.Any("stats", res.stats))

		if res.err != nil {
			return fmt.Errorf("process input: %w", res.err)
		}

		return nil
	}
}

func showConfig(w io.Writer, cfg *config.Config, specs []rule.Spec) error {
	cfg.Rules = append(cfg.Rules, specs...)

	b, err := cfg.MarshalYAML()
	if err != nil {
		return fmt.Errorf("show config: %w", err)
	}

	if !isTerminal(w) {
		mustN(w.Write(b))

		return nil
	}

	err = quick.Highlight(w, string(b), "yaml", "terminal16m", "monokai")
	if err != nil {
		slog.Debug("highlight config", slog.Any("err", err))
		mustN(w.Write(b))
	}

	return nil
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })

	return ok && term.IsTerminal(int(f.Fd()))
}
