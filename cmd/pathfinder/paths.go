package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/terra-clan/pathfinder/internal/catalog"
	"github.com/terra-clan/pathfinder/internal/filter"
	"github.com/terra-clan/pathfinder/internal/models"
)

func newPathsCmd() *cobra.Command {
	var (
		query      string
		levels     []string
		durations  []string
		categories []string
		dir        string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the learning-path catalog, optionally filtered",
		Example: `  pathfinder paths --level Advanced
  pathfinder paths --duration short,medium --query design --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := catalog.NewLoader()
			if dir != "" {
				if err := loader.LoadFromDir(dir); err != nil {
					return fmt.Errorf("load catalog: %w", err)
				}
			}

			v := url.Values{}
			v.Set("q", query)
			v["level"] = levels
			v["duration"] = durations
			v["category"] = categories
			state := filter.ParseState(v)

			all := loader.LearningPaths()
			matched := filter.Apply(all, state)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(models.LearningPathList{
					LearningPaths: matched,
					Total:         len(matched),
					CatalogSize:   len(all),
				})
			}
			return printPaths(cmd.OutOrStdout(), matched, len(all))
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "free-text search over title, description and category")
	cmd.Flags().StringSliceVar(&levels, "level", nil, "levels to include (Beginner, Intermediate, Advanced)")
	cmd.Flags().StringSliceVar(&durations, "duration", nil, "duration buckets to include (short, medium, long)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "categories to include")
	cmd.Flags().StringVar(&dir, "catalog-dir", "", "load the catalog from this directory instead of the built-in one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printPaths(out io.Writer, paths []*models.LearningPath, catalogSize int) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLEVEL\tMONTHS\tBUCKET\tCATEGORY\tCOURSES")
	for _, lp := range paths {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%d\n",
			lp.ID, lp.Title, lp.Level, lp.DurationMonths, filter.BucketFor(lp.DurationMonths), lp.Category, lp.CourseCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d of %d learning paths\n", len(paths), catalogSize)
	return err
}
