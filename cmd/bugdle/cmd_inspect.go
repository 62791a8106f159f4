package main

import (
	"fmt"
	"strings"

	"bugdle/internal/dataset"
	"bugdle/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var inspectShow int

// inspectCmd summarizes a generated dataset
var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Summarize a generated dataset file",
	Long: `Reads a JSON or JSON Lines file written by generate (default: the
configured output path) and prints record counts, hint coverage and the
category, level and language breakdowns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectShow, "show", "n", 0, "Also print the slug and hint of the first N records")
}

var (
	inspectTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	inspectSection = lipgloss.NewStyle().Bold(true).MarginTop(1)
	inspectName    = lipgloss.NewStyle().Width(24)
	inspectCount   = lipgloss.NewStyle().Width(6).Align(lipgloss.Right).Foreground(lipgloss.Color("#04B575"))
	inspectMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	inspectBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(0, 1)
)

func runInspect(cmd *cobra.Command, args []string) error {
	path := cfg.Output.Path
	if len(args) == 1 {
		path = args[0]
	}

	records, err := store.ReadJSON(path)
	if err != nil {
		return err
	}

	hintField := cfg.Hints.Field
	summary := store.Summarize(records, hintField)
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(path, summary))

	if inspectShow > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderHints(records, hintField, inspectShow))
	}
	return nil
}

func renderSummary(path string, s store.Summary) string {
	var sb strings.Builder
	sb.WriteString(inspectTitle.Render(path))
	sb.WriteString("\n")
	sb.WriteString(countLine("records", s.Total))
	sb.WriteString(countLine("with hint", s.Hinted))

	sections := []struct {
		title  string
		counts []store.Count
	}{
		{"Categories", s.ByCategory},
		{"Levels", s.ByLevel},
		{"Languages", s.ByLanguage},
	}
	for _, sec := range sections {
		if len(sec.counts) == 0 {
			continue
		}
		sb.WriteString(inspectSection.Render(sec.title))
		sb.WriteString("\n")
		for _, c := range sec.counts {
			sb.WriteString(countLine(c.Name, c.Count))
		}
	}

	return inspectBox.Render(strings.TrimRight(sb.String(), "\n"))
}

func countLine(name string, n int) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		inspectName.Render(name),
		inspectCount.Render(fmt.Sprint(n))) + "\n"
}

func renderHints(records []dataset.Record, hintField string, n int) string {
	var sb strings.Builder
	for i, rec := range dataset.First(records, n) {
		h := strings.TrimSpace(rec.String(hintField))
		if h == "" {
			h = inspectMuted.Render("(no hint)")
		}
		fmt.Fprintf(&sb, "%s  %s\n", inspectTitle.Render(rec.Label(i)), h)
	}
	return strings.TrimRight(sb.String(), "\n")
}
