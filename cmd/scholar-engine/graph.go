// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-engine/internal/citewalk"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

var citedByCmd = &cobra.Command{
	Use:   "cited-by [work-id]",
	Short: "List papers that cite a work",
	Long: `Cited-by lists papers citing the given OpenAlex work ID, following
result pages up to --max results. An interrupted listing still prints what
was gathered, with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWalk(cmd, args[0], func(ctx context.Context, ref types.EntityRef, max int) ([]types.Paper, error) {
			eng, err := newEngine()
			if err != nil {
				return nil, err
			}
			defer eng.Close()
			return eng.CitedBy(ctx, ref, max)
		})
	},
}

var relatedCmd = &cobra.Command{
	Use:   "related [work-id]",
	Short: "List papers related to a work",
	Long: `Related lists papers OpenAlex considers related to the given work ID,
up to --max results.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWalk(cmd, args[0], func(ctx context.Context, ref types.EntityRef, max int) ([]types.Paper, error) {
			eng, err := newEngine()
			if err != nil {
				return nil, err
			}
			defer eng.Close()
			return eng.RelatedWorks(ctx, ref, max)
		})
	},
}

func runWalk(cmd *cobra.Command, workID string, walk func(context.Context, types.EntityRef, int) ([]types.Paper, error)) error {
	max, _ := cmd.Flags().GetInt("max")

	papers, err := walk(context.Background(), types.EntityRef{ID: workID, Kind: types.KindPaper}, max)
	if err != nil {
		var partial *citewalk.PartialError
		if !errors.As(err, &partial) {
			return err
		}
		fmt.Fprintf(os.Stderr, "warning: listing interrupted after %d results: %v\n",
			len(partial.Papers), partial.Err)
	}

	if handled, err := emit(cmd, papers); handled {
		return err
	}
	printPapers(papers)
	return nil
}

var referencesCmd = &cobra.Command{
	Use:   "references [work-id]",
	Short: "List the works a paper cites",
	Args:  cobra.ExactArgs(1),
	RunE:  runReferences,
}

func runReferences(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	refs, err := eng.References(context.Background(), types.EntityRef{ID: args[0], Kind: types.KindPaper})
	if err != nil {
		return err
	}

	if handled, err := emit(cmd, refs); handled {
		return err
	}
	if len(refs) == 0 {
		fmt.Println("No references found.")
		return nil
	}
	for _, ref := range refs {
		fmt.Println(ref.ID)
	}
	fmt.Fprintf(os.Stdout, "\n%d references\n", len(refs))
	return nil
}

func init() {
	citedByCmd.Flags().Int("max", 0, "maximum results to gather across pages (default 200)")
	addOutputFlags(citedByCmd)

	relatedCmd.Flags().Int("max", 0, "maximum results to gather across pages (default 200)")
	addOutputFlags(relatedCmd)

	addOutputFlags(referencesCmd)

	rootCmd.AddCommand(citedByCmd)
	rootCmd.AddCommand(relatedCmd)
	rootCmd.AddCommand(referencesCmd)
}
