package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/cncf/landscape2/go/explorer/pkg/config"
	"github.com/cncf/landscape2/go/explorer/pkg/loader"
)

var Cmd = &cobra.Command{
	Use:               "landscape-explorer",
	Long:              "Filter, classify and search the entries of a landscape catalog",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var args struct {
	baseSource  string
	fullSource  string
	token       string
	output      string
	searchLimit int
}

var cfg config.Config

func main() {
	if err := Cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup fills every flag the user did not set from the environment.
func setup(cmd *cobra.Command, argv []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("base-source") {
		args.baseSource = cfg.BaseSource
	}
	if !flags.Changed("full-source") {
		args.fullSource = cfg.FullSource
	}
	if !flags.Changed("github-token") {
		args.token = cfg.GitHubToken
	}
	if !flags.Changed("output") {
		args.output = cfg.Output
	}
	if !flags.Changed("search-limit") {
		args.searchLimit = cfg.SearchLimit
	}
	if args.output != "json" && args.output != "yaml" {
		return fmt.Errorf("unsupported output format %q, expected json or yaml", args.output)
	}

	buildInfo, _ := debug.ReadBuildInfo()
	log := klog.FromContext(cmd.Context())
	log.V(2).Info("starting landscape-explorer", "buildInfo", buildInfo)
	return nil
}

// newSession wires the configured sources into a loader.
func newSession(ctx context.Context) (*session, error) {
	base, err := loader.ParseSource(ctx, args.baseSource, args.token)
	if err != nil {
		return nil, fmt.Errorf("base source: %w", err)
	}
	full, err := loader.ParseSource(ctx, args.fullSource, args.token)
	if err != nil {
		return nil, fmt.Errorf("full source: %w", err)
	}
	if base == nil && full == nil {
		return nil, fmt.Errorf("no catalog source configured, set --full-source or LANDSCAPE_FULL_SOURCE")
	}
	return newSessionWithLoader(loader.New(base, full), args.searchLimit), nil
}

// withTimeout bounds a command by the configured fetch timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if cfg.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.FetchTimeout)
}

func init() {
	flags := Cmd.PersistentFlags()

	flags.StringVar(
		&args.baseSource,
		"base-source",
		"",
		"Base catalog tier: file path, http(s) URL or github:owner/repo/path[@ref]",
	)
	flags.StringVar(
		&args.fullSource,
		"full-source",
		"",
		"Full catalog tier: file path, http(s) URL or github:owner/repo/path[@ref]",
	)
	flags.StringVar(
		&args.token,
		"github-token",
		"",
		"Token used for github: sources",
	)
	flags.StringVarP(
		&args.output,
		"output",
		"o",
		"json",
		"Output format: json or yaml",
	)
	flags.IntVar(
		&args.searchLimit,
		"search-limit",
		0,
		"Maximum number of search results",
	)

	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	flags.AddGoFlagSet(klogFlags)

	Cmd.AddCommand(queryCmd, facetsCmd, searchCmd, itemCmd, mcpCmd)
}
