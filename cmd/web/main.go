package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inserview.studio/web/internal/config"
	"inserview.studio/web/internal/observability"
	"inserview.studio/web/internal/routing"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "web",
		Short:         "Inserview Studio web server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with local overrides (empty disables)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), envFile)
			},
		},
		&cobra.Command{
			Use:   "routes",
			Short: "Print the route table in match order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printRoutes(cmd.OutOrStdout(), routing.Default())
			},
		},
		&cobra.Command{
			Use:   "resolve <path>",
			Short: "Show which page a path resolves to",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printResolve(cmd.OutOrStdout(), routing.Default(), args[0])
			},
		},
	)
	return root
}

func runServe(parent context.Context, envFile string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.WithEnvFile(envFile))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(observability.LoggerOptions{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close", zap.Error(err))
		}
	}()
	return a.serve(ctx)
}

func printRoutes(w io.Writer, table *routing.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPATTERN\tPAGE\tPARAMS")
	for i, rt := range table.Routes() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, rt.Pattern, rt.Page, routeParams(rt))
	}
	return tw.Flush()
}

// routeParams lists a route's parameter names, optional ones marked with "?".
func routeParams(rt routing.Route) string {
	if rt.IsWildcard() {
		return "*"
	}
	var names []string
	for _, seg := range rt.Segments() {
		if seg.Kind != routing.Param {
			continue
		}
		name := seg.Value
		if seg.Optional {
			name += "?"
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

func printResolve(w io.Writer, table *routing.Table, raw string) error {
	path := routing.Normalize(raw)
	m := table.Resolve(path)
	fmt.Fprintf(w, "path:    %s\n", path)
	fmt.Fprintf(w, "page:    %s\n", m.Page)
	fmt.Fprintf(w, "pattern: %s\n", m.Route.Pattern)
	if len(m.Params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m.Params))
	for k := range m.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+m.Params[k])
	}
	fmt.Fprintf(w, "params:  %s\n", strings.Join(pairs, " "))
	return nil
}
