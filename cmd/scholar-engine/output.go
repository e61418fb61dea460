// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

// emit writes v as JSON or YAML when the corresponding flag is set and
// reports whether it handled the output.
func emit(cmd *cobra.Command, v any) (bool, error) {
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	}
	if yamlOut, _ := cmd.Flags().GetBool("yaml"); yamlOut {
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return true, enc.Encode(v)
	}
	return false, nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "output results as JSON")
	cmd.Flags().Bool("yaml", false, "output results as YAML")
}

func printPapers(papers []types.Paper) {
	if len(papers) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-50s  %-6s  %-9s  %s\n",
		"Rank", "Title", "Year", "Citations", "ID")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, p := range papers {
		title := p.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		year := ""
		if p.Year != 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-50s  %-6s  %-9d  %s\n",
			i+1, title, year, p.CitedByCount, shortID(p.ID))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(papers))
}

func printPaperPage(page types.SearchPage) {
	printPapers(page.Papers())
	if page.NextCursor != "" {
		fmt.Fprintf(os.Stdout, "next cursor: %s\n", page.NextCursor)
	}
}

func printAuthorPage(page types.SearchPage) {
	if len(page.Entities) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-30s  %-7s  %-9s  %s\n",
		"Rank", "Name", "Works", "Citations", "ID")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	rank := 0
	for _, entity := range page.Entities {
		author, ok := entity.(types.Author)
		if !ok {
			continue
		}
		rank++
		name := author.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-30s  %-7d  %-9d  %s\n",
			rank, name, author.WorksCount, author.CitedByCount, shortID(author.ID))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", rank)
	if page.NextCursor != "" {
		fmt.Fprintf(os.Stdout, "next cursor: %s\n", page.NextCursor)
	}
}

func printInstitutionPage(page types.SearchPage) {
	if len(page.Entities) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-7s  %-7s  %s\n",
		"Rank", "Name", "Country", "Works", "ID")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	rank := 0
	for _, entity := range page.Entities {
		inst, ok := entity.(types.Institution)
		if !ok {
			continue
		}
		rank++
		name := inst.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-7s  %-7d  %s\n",
			rank, name, inst.Country, inst.WorksCount, shortID(inst.ID))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", rank)
	if page.NextCursor != "" {
		fmt.Fprintf(os.Stdout, "next cursor: %s\n", page.NextCursor)
	}
}

// shortID strips the OpenAlex URL prefix for table display.
func shortID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
