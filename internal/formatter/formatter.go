// package formatter renders match reports and reorder plans to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"plexorder/internal/tasks"
)

// ReportToCSV converts a reorder plan's match results to CSV with columns:
// Position, Title, Artist, Tier, Score, MatchedItem
func ReportToCSV(plan *tasks.ReorderPlan) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Tier", "Score", "MatchedItem"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, res := range plan.Results {
		matched := ""
		if res.Item != nil {
			matched = fmt.Sprintf("%s - %s", res.Item.Artist, res.Item.Title)
		}
		record := []string{
			strconv.Itoa(i + 1),
			res.Imported.Title,
			res.Imported.Artist,
			res.Tier.String(),
			strconv.FormatFloat(res.Score, 'f', 3, 64),
			matched,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown converts a reorder plan to a Markdown match report
func ReportToMarkdown(plan *tasks.ReorderPlan) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", plan.Playlist.Title))
	buf.WriteString(fmt.Sprintf("**Imported**: %d\n", len(plan.Results)))
	buf.WriteString(fmt.Sprintf("**Matched**: %d\n", plan.Matched))
	buf.WriteString(fmt.Sprintf("**Unmatched**: %d\n", plan.Unmatched()))
	buf.WriteString(fmt.Sprintf("**Moves planned**: %d\n\n", len(plan.Moves)))

	buf.WriteString("## Matches\n\n")
	buf.WriteString("| # | Imported | Tier | Score | Playlist item |\n")
	buf.WriteString("|---|----------|------|-------|---------------|\n")
	for i, res := range plan.Results {
		imported := res.Imported.Title
		if res.Imported.Artist != "" {
			imported = fmt.Sprintf("%s - %s", res.Imported.Artist, res.Imported.Title)
		}
		matched := ""
		if res.Item != nil {
			matched = fmt.Sprintf("%s - %s", res.Item.Artist, res.Item.Title)
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %.3f | %s |\n",
			i+1, imported, res.Tier.String(), res.Score, matched))
	}

	return buf.Bytes(), nil
}

// ReportToText converts a reorder plan to a plain text match report
func ReportToText(plan *tasks.ReorderPlan) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", plan.Playlist.Title))
	buf.WriteString(fmt.Sprintf("Matched: %d/%d\n", plan.Matched, len(plan.Results)))
	buf.WriteString(fmt.Sprintf("Moves planned: %d\n\n", len(plan.Moves)))

	for i, res := range plan.Results {
		marker := "  "
		if res.Item == nil {
			marker = "??"
		}
		line := res.Imported.Title
		if res.Imported.Artist != "" {
			line = fmt.Sprintf("%s - %s", res.Imported.Artist, res.Imported.Title)
		}
		buf.WriteString(fmt.Sprintf("%s %d. %s [%s]\n", marker, i+1, line, res.Tier.String()))
	}

	return buf.Bytes(), nil
}

// WriteCSVReport writes the CSV match report to disk.
//
// Defaults to {playlist key}_report.csv as the filename
func WriteCSVReport(plan *tasks.ReorderPlan, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_report.csv", plan.Playlist.Key)
	}

	csvData, err := ReportToCSV(plan)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownReport writes the Markdown match report to disk.
//
// Defaults to {playlist key}_report.md as the filename
func WriteMarkdownReport(plan *tasks.ReorderPlan, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_report.md", plan.Playlist.Key)
	}

	mdData, err := ReportToMarkdown(plan)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}
