package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cncf/landscape2/go/explorer/pkg/urlcodec"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter and classify the catalog",
	Long: `Filter and classify the catalog. The view state is read from a query string
as found in explorer URLs, e.g. "group=projects&maturity=foundation&view=card",
and the explicit flags override it.`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

var queryArgs struct {
	query     string
	group     string
	view      string
	classify  string
	sort      string
	direction string
}

func runQuery(cmd *cobra.Command, argv []string) error {
	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	q, err := buildQuery(queryArgs.query, map[string]string{
		urlcodec.ParamGroup:         queryArgs.group,
		urlcodec.ParamView:          queryArgs.view,
		urlcodec.ParamClassify:      queryArgs.classify,
		urlcodec.ParamSort:          queryArgs.sort,
		urlcodec.ParamSortDirection: queryArgs.direction,
	})
	if err != nil {
		return err
	}
	res, err := s.query(ctx, q)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), args.output, res)
}

var facetsCmd = &cobra.Command{
	Use:   "facets [group]",
	Short: "List the filter options, classify dimensions and sort fields of a group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		s, err := newSession(ctx)
		if err != nil {
			return err
		}
		group := ""
		if len(argv) == 1 {
			group = argv[0]
		}
		opts, err := s.listFacets(ctx, group)
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), args.output, opts)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <text>...",
	Short: "Search entries by name, description and topics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		s, err := newSession(ctx)
		if err != nil {
			return err
		}
		results, err := s.search(ctx, strings.Join(argv, " "), 0)
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), args.output, results)
	},
}

var itemCmd = &cobra.Command{
	Use:   "item <id>",
	Short: "Show one catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		s, err := newSession(ctx)
		if err != nil {
			return err
		}
		item, err := s.item(ctx, argv[0])
		if err != nil {
			return err
		}
		return write(cmd.OutOrStdout(), args.output, item)
	},
}

func init() {
	flags := queryCmd.Flags()

	flags.StringVarP(
		&queryArgs.query,
		"query",
		"q",
		"",
		"View state as a URL query string",
	)
	flags.StringVar(
		&queryArgs.group,
		"group",
		"",
		"Group to select",
	)
	flags.StringVar(
		&queryArgs.view,
		"view",
		"",
		"View mode: grid or card",
	)
	flags.StringVar(
		&queryArgs.classify,
		"classify",
		"",
		"Card classification: none, category, maturity or tag",
	)
	flags.StringVar(
		&queryArgs.sort,
		"sort",
		"",
		"Card sort field: name, stars, contributors, funding or date",
	)
	flags.StringVar(
		&queryArgs.direction,
		"sort-direction",
		"",
		"Card sort direction: asc or desc",
	)
}
