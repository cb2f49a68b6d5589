package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/plowcrawl/result"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// categoryOrder defines the display order for error categories (most to least actionable).
var categoryOrder = []result.ErrorCategory{
	result.CategoryDNSFailure,
	result.CategoryConnectionRefused,
	result.CategoryTLSFailure,
	result.CategoryTimeout,
	result.CategoryUnknown,
}

// RenderSummary produces a Lip Gloss styled summary of a crawl.
func RenderSummary(stats *result.Stats) string {
	if stats == nil {
		return errorStyle.Render("No results available.") + "\n"
	}

	var builder strings.Builder

	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Found %d resources (%d links, %d scripts)",
		stats.Resources(), stats.Links, stats.Scripts,
	)))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"Fetched %d pages, skipped %d entries in %s",
		stats.PagesFetched, stats.Skipped,
		stats.Duration.Round(1_000_000), // round to ms
	)))
	builder.WriteString("\n")

	if stats.FetchErrors == 0 {
		builder.WriteString(successStyle.Render("Every page was retrieved."))
		builder.WriteString("\n")
		return builder.String()
	}

	builder.WriteString("\n")
	builder.WriteString(categoryStyle.Render(fmt.Sprintf("## Retrieval failures (%d)", stats.FetchErrors)))
	builder.WriteString("\n")

	rows := make([][]string, 0, len(categoryOrder))
	for _, cat := range categoryOrder {
		if n := stats.ErrorCategories[cat]; n > 0 {
			rows = append(rows, []string{result.FormatCategory(cat), strconv.Itoa(n)})
		}
	}

	catTable := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Category", "Pages").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return countStyle
			}
			return lipgloss.NewStyle()
		}).
		Rows(rows...)

	builder.WriteString(catTable.Render())
	builder.WriteString("\n")

	return builder.String()
}
