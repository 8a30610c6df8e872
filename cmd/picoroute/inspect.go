package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	router "github.com/pedia/picoroute"
	"github.com/pedia/picoroute/internal/app"
	"github.com/pedia/picoroute/internal/config"
)

func loadManifestRouter(path string) (*router.Router, error) {
	if path == "" {
		return nil, errors.New("a route manifest is required (--routes)")
	}

	m, err := config.LoadManifest(path)
	if err != nil {
		return nil, err
	}

	r := router.New()
	if err := app.RegisterManifest(r, m); err != nil {
		return nil, err
	}
	return r, nil
}

func routesCmd() *cobra.Command {
	var routesFile string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes of a manifest in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadManifestRouter(routesFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, route := range r.Routes() {
				fmt.Fprintf(out, "%-16s %s\n", route.Key(), route.Pattern())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&routesFile, "routes", "r", "", "YAML route manifest")

	return cmd
}

func matchCmd() *cobra.Command {
	var routesFile string

	cmd := &cobra.Command{
		Use:   "match PATH...",
		Short: "Resolve request paths against a manifest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadManifestRouter(routesFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range args {
				route, params, ok := r.MatchRoute(path)
				if !ok {
					fmt.Fprintf(out, "%s\tno match\n", path)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", path, route.Pattern(), formatParams(params))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&routesFile, "routes", "r", "", "YAML route manifest")

	return cmd
}

func formatParams(params router.Params) string {
	if len(params) == 0 {
		return "{}"
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + "=" + params[name]
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}
