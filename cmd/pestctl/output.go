package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	lowStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	mediumStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	highStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// render prints v as JSON or YAML when requested, otherwise calls human.
func render(w io.Writer, opts *options, v any, human func(io.Writer) error) error {
	switch {
	case opts.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case opts.yaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return human(w)
	}
}

func field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), value)
}

func threatStyle(level string) lipgloss.Style {
	switch level {
	case "high":
		return highStyle
	case "medium":
		return mediumStyle
	default:
		return lowStyle
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headingStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
