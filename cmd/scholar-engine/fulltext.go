// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

var fulltextCmd = &cobra.Command{
	Use:   "fulltext [work-id]",
	Short: "Fetch the readable full text of a work",
	Long: `Fulltext resolves the readable text of the given OpenAlex work ID,
trying its open-access URL first and reader extraction second. The text is
printed to stdout; a paper with no retrievable text exits non-zero with the
attempts listed on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runFulltext,
}

func runFulltext(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	result, err := eng.ResolveFullText(context.Background(), types.EntityRef{ID: args[0], Kind: types.KindPaper})
	if err != nil {
		return err
	}

	if handled, err := emit(cmd, result); handled {
		return err
	}

	if !result.Resolved() {
		for _, attempt := range result.Attempts {
			fmt.Fprintf(os.Stderr, "%s: %s\n", attempt.Strategy, attempt.Failure)
		}
		return fmt.Errorf("no full text available for %s", args[0])
	}

	fmt.Fprintf(os.Stderr, "resolved via %s\n", result.Source)
	fmt.Println(result.Text)
	return nil
}

func init() {
	addOutputFlags(fulltextCmd)
	rootCmd.AddCommand(fulltextCmd)
}
