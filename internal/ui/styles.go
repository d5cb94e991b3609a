package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/todone/internal/client"
	"github.com/adanyl0v/todone/internal/models"
)

const progressBarWidth = 30

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("245"))
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("63"))
	barFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("70")),
	}
)

func writeProgress(b *strings.Builder, stats models.TaskStats) {
	filled := stats.Percentage * progressBarWidth / 100
	fmt.Fprintf(b, "%d of %d done, %d%%\n", stats.Completed, stats.Total, stats.Percentage)
	b.WriteString(barFillStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", progressBarWidth-filled)))
	b.WriteString("\n\n")
}

func writeFilters(b *strings.Builder, current client.Filter) {
	filters := []client.Filter{client.FilterAll, client.FilterActive, client.FilterCompleted}
	tabs := make([]string, len(filters))
	for i, f := range filters {
		label := fmt.Sprintf("%d %s", i, f)
		if f == current {
			tabs[i] = activeTab.Render(label)
		} else {
			tabs[i] = mutedStyle.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, "   "))
	b.WriteString("\n\n")
}

func writeTask(b *strings.Builder, task models.Task, selected bool) {
	pointer := "  "
	if selected {
		pointer = cursorStyle.Render("> ")
	}

	check := "[ ]"
	title := task.Title
	if task.Completed {
		check = "[x]"
		title = doneStyle.Render(title)
	}

	priority := string(task.Priority)
	if style, ok := priorityStyles[task.Priority]; ok {
		priority = style.Render(priority)
	}

	fmt.Fprintf(b, "%s%s %s  %s\n", pointer, check, title, priority)
	if task.Description != nil && *task.Description != "" {
		fmt.Fprintf(b, "        %s\n", mutedStyle.Render(*task.Description))
	}
}

func writeHelp(b *strings.Builder, mode inputMode) {
	help := "a add • e edit • p priority • space toggle • d delete • r refresh • 0/1/2 filter • q quit"
	if mode != modeBrowse {
		help = "enter save • esc cancel"
	}
	b.WriteString(mutedStyle.Render(help))
	b.WriteString("\n")
}
