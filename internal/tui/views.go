package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/decision-queue/internal/cli"
	"github.com/Veraticus/decision-queue/internal/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	top := m.stack[len(m.stack)-1]

	sections := []string{m.renderHeader(top), m.renderList(top)}
	if item, ok := m.Selected(); ok {
		sections = append(sections, m.renderDetail(item))
	}
	if m.showHelp {
		sections = append(sections, m.help.View(m.keymap))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(top frame) string {
	crumbs := make([]string, len(m.stack))
	for i, f := range m.stack {
		crumbs[i] = f.title
	}

	subtitle := fmt.Sprintf("%d items", len(top.rows))
	if m.Depth() > 0 {
		subtitle += " · esc to go back"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.UnsetMarginBottom().Render(strings.Join(crumbs, " › ")),
		m.theme.Subtitle.Render(subtitle),
		"",
	)
}

func (m Model) renderList(top frame) string {
	if len(top.rows) == 0 {
		return m.theme.Subtitle.Render("Nothing needs a decision.")
	}

	titleWidth := max(m.width-30, 20)

	lines := make([]string, len(top.rows))
	for i, r := range top.rows {
		cursor := "  "
		titleStyle := m.theme.Normal
		if i == top.cursor {
			cursor = "> "
			titleStyle = m.theme.Selected
		}

		marker := m.theme.Severity(r.item.Severity).Render("●")
		title := cli.Truncate(r.item.Title, titleWidth)
		if r.item.IsRollup() {
			title = cli.RollupIcon + " " + cli.Truncate(r.item.Title, titleWidth-2)
		}

		meta := string(r.item.Tier)
		if r.pass != "" {
			meta += " · " + string(r.pass)
		}

		lines[i] = fmt.Sprintf("%s%s %s  %s  %s",
			cursor,
			marker,
			titleStyle.Render(title),
			m.theme.Subtitle.Render(meta),
			m.theme.Subtitle.Render(cli.FormatAge(r.item.AgeDays(m.now))),
		)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetail(item model.DecisionItem) string {
	var parts []string

	parts = append(parts, m.theme.Bold.Render(item.Title))
	if item.Description != "" {
		parts = append(parts, item.Description)
	}

	facts := []string{
		"tier " + orDash(string(item.Tier)),
		"severity " + orDash(string(item.Severity)),
		"category " + orDash(string(item.Category)),
		fmt.Sprintf("score %d", item.SortScore),
	}
	parts = append(parts, m.theme.Subtitle.Render(strings.Join(facts, " · ")))

	if len(item.Chips) > 0 {
		chips := make([]string, len(item.Chips))
		for i, c := range item.Chips {
			chips[i] = m.theme.Chip.Render(fmt.Sprintf("%s %s", c.Label, c.Value))
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	}

	if len(item.CTAs) > 0 {
		ctas := make([]string, len(item.CTAs))
		for i, c := range item.CTAs {
			ctas[i] = m.theme.CTA.Render(c.Label)
		}
		parts = append(parts, strings.Join(ctas, "  "))
	}

	if item.IsRollup() {
		parts = append(parts, m.theme.Subtitle.Render(
			fmt.Sprintf("enter to see %d grouped items", len(item.Children))))
	}

	box := m.theme.Box
	if m.width > 4 {
		box = box.Width(m.width - 4)
	}
	return "\n" + box.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
