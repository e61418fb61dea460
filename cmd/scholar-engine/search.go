// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search papers, authors, or institutions",
	Long: `Search queries OpenAlex for entities matching keyword text. Use the
papers, authors, or institutions subcommand to pick the entity type.
Results are one page; pass --cursor with the printed cursor to continue.`,
}

var searchPapersCmd = &cobra.Command{
	Use:   "papers [query]",
	Short: "Search papers by keyword",
	Long: `Papers searches works by keyword. --field narrows matching to title or
title_and_abstract; --institution filters by affiliation name; --from and
--to bound the publication date.`,
	RunE: runSearchPapers,
}

func runSearchPapers(cmd *cobra.Command, args []string) error {
	q, err := paperQueryFromFlags(cmd, args)
	if err != nil {
		return err
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	page, err := eng.Search(context.Background(), q)
	if err != nil {
		return err
	}

	if handled, err := emit(cmd, page); handled {
		return err
	}
	printPaperPage(page)
	return nil
}

var searchAuthorsCmd = &cobra.Command{
	Use:   "authors [query]",
	Short: "Search authors by name",
	Long: `Authors searches author profiles by name. --institution-id restricts
results to authors affiliated with the given OpenAlex institution.`,
	RunE: runSearchAuthors,
}

func runSearchAuthors(cmd *cobra.Command, args []string) error {
	institutionID, _ := cmd.Flags().GetString("institution-id")
	pageSize, _ := cmd.Flags().GetInt("limit")
	cursor, _ := cmd.Flags().GetString("cursor")

	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	page, err := eng.SearchAuthors(context.Background(), types.SearchQuery{
		Text:        strings.Join(args, " "),
		Institution: institutionID,
		PageSize:    pageSize,
		Cursor:      cursor,
	})
	if err != nil {
		return err
	}

	if handled, err := emit(cmd, page); handled {
		return err
	}
	printAuthorPage(page)
	return nil
}

var searchInstitutionsCmd = &cobra.Command{
	Use:   "institutions [query]",
	Short: "Search institutions by name",
	RunE:  runSearchInstitutions,
}

func runSearchInstitutions(cmd *cobra.Command, args []string) error {
	pageSize, _ := cmd.Flags().GetInt("limit")
	cursor, _ := cmd.Flags().GetString("cursor")

	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	page, err := eng.SearchInstitutions(context.Background(), types.SearchQuery{
		Text:     strings.Join(args, " "),
		PageSize: pageSize,
		Cursor:   cursor,
	})
	if err != nil {
		return err
	}

	if handled, err := emit(cmd, page); handled {
		return err
	}
	printInstitutionPage(page)
	return nil
}

var authorPapersCmd = &cobra.Command{
	Use:   "author-papers [author-id]",
	Short: "List papers by an OpenAlex author ID",
	Long: `Author-papers lists works written by the given author, most cited
first by default. Use --sort to order by publication-date or relevance.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthorPapers,
}

func runAuthorPapers(cmd *cobra.Command, args []string) error {
	sortKey, _ := cmd.Flags().GetString("sort")
	if sortKey == "" {
		sortKey = string(types.SortCitations)
	}
	pageSize, _ := cmd.Flags().GetInt("limit")
	cursor, _ := cmd.Flags().GetString("cursor")

	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	page, err := eng.PapersByAuthor(context.Background(), args[0], types.SearchQuery{
		Sort:     types.SortKey(sortKey),
		PageSize: pageSize,
		Cursor:   cursor,
	})
	if err != nil {
		return err
	}

	if handled, err := emit(cmd, page); handled {
		return err
	}
	printPaperPage(page)
	return nil
}

// paperQueryFromFlags assembles a paper search query from command flags and
// positional query text.
func paperQueryFromFlags(cmd *cobra.Command, args []string) (types.SearchQuery, error) {
	field, _ := cmd.Flags().GetString("field")
	institution, _ := cmd.Flags().GetString("institution")
	sortKey, _ := cmd.Flags().GetString("sort")
	ascending, _ := cmd.Flags().GetBool("ascending")
	pageSize, _ := cmd.Flags().GetInt("limit")
	cursor, _ := cmd.Flags().GetString("cursor")

	q := types.SearchQuery{
		Text:        strings.Join(args, " "),
		Kind:        types.KindPaper,
		Field:       types.SearchField(field),
		Institution: institution,
		Sort:        types.SortKey(sortKey),
		Ascending:   ascending,
		PageSize:    pageSize,
		Cursor:      cursor,
	}

	var err error
	if q.From, err = dateFlag(cmd, "from"); err != nil {
		return types.SearchQuery{}, err
	}
	if q.To, err = dateFlag(cmd, "to"); err != nil {
		return types.SearchQuery{}, err
	}
	return q, nil
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return t, nil
}

func init() {
	searchPapersCmd.Flags().String("field", "", "search field: title or title_and_abstract (default: all fields)")
	searchPapersCmd.Flags().String("institution", "", "filter by affiliation name")
	searchPapersCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchPapersCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchPapersCmd.Flags().String("sort", "", "sort key: relevance, citation-count, or publication-date")
	searchPapersCmd.Flags().Bool("ascending", false, "sort ascending instead of descending")
	searchPapersCmd.Flags().Int("limit", 0, "results per page (default 10, max 200)")
	searchPapersCmd.Flags().String("cursor", "", "resume from a previous page's cursor")
	addOutputFlags(searchPapersCmd)

	searchAuthorsCmd.Flags().String("institution-id", "", "filter by OpenAlex institution ID")
	searchAuthorsCmd.Flags().Int("limit", 0, "results per page (default 10, max 200)")
	searchAuthorsCmd.Flags().String("cursor", "", "resume from a previous page's cursor")
	addOutputFlags(searchAuthorsCmd)

	searchInstitutionsCmd.Flags().Int("limit", 0, "results per page (default 10, max 200)")
	searchInstitutionsCmd.Flags().String("cursor", "", "resume from a previous page's cursor")
	addOutputFlags(searchInstitutionsCmd)

	authorPapersCmd.Flags().String("sort", "", "sort key: relevance, citation-count, or publication-date")
	authorPapersCmd.Flags().Int("limit", 0, "results per page (default 10, max 200)")
	authorPapersCmd.Flags().String("cursor", "", "resume from a previous page's cursor")
	addOutputFlags(authorPapersCmd)

	searchCmd.AddCommand(searchPapersCmd)
	searchCmd.AddCommand(searchAuthorsCmd)
	searchCmd.AddCommand(searchInstitutionsCmd)

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(authorPapersCmd)
}
