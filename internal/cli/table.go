package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/decision-queue/internal/dashboard"
	"github.com/Veraticus/decision-queue/internal/model"
	"github.com/Veraticus/decision-queue/internal/rollup"
	"github.com/Veraticus/decision-queue/internal/service"
)

const maxTitleWidth = 48

// column is one table column.
type column struct {
	header string
	width  int
}

// table renders fixed-width rows. Cells are pre-styled strings.
type table struct {
	columns []column
	rows    [][]string
}

func newTable(headers ...string) *table {
	cols := make([]column, len(headers))
	for i, h := range headers {
		cols[i] = column{header: h, width: lipgloss.Width(h)}
	}
	return &table{columns: cols}
}

func (t *table) add(cells ...string) {
	for i, c := range cells {
		if w := lipgloss.Width(c); i < len(t.columns) && w > t.columns[i].width {
			t.columns[i].width = w
		}
	}
	t.rows = append(t.rows, cells)
}

func (t *table) render() string {
	var b strings.Builder

	header := make([]string, len(t.columns))
	for i, c := range t.columns {
		header[i] = TableHeaderStyle.Inherit(TableCellStyle).Width(c.width + 1).Render(c.header)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	for _, row := range t.rows {
		cells := make([]string, len(t.columns))
		for i := range t.columns {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = TableCellStyle.Width(t.columns[i].width + 1).Render(cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderItems renders ranked items as a table.
func RenderItems(items []model.DecisionItem, now time.Time) string {
	if len(items) == 0 {
		return SubtleStyle.Render("No items.") + "\n"
	}

	t := newTable("#", "Score", "Tier", "Severity", "Category", "Title", "Age", "Breakdown")
	for i, item := range items {
		t.add(itemCells(i+1, item, now)...)
	}
	return t.render()
}

// RenderPicks renders dashboard picks with the pass that chose each one.
func RenderPicks(picks []dashboard.Pick, now time.Time) string {
	if len(picks) == 0 {
		return SubtleStyle.Render("Nothing needs a decision.") + "\n"
	}

	t := newTable("#", "Score", "Tier", "Severity", "Category", "Title", "Age", "Breakdown", "Pass")
	for i, p := range picks {
		t.add(append(itemCells(i+1, p.Item, now), SubtleStyle.Render(string(p.Pass)))...)
	}
	return t.render()
}

func itemCells(pos int, item model.DecisionItem, now time.Time) []string {
	title := Truncate(item.Title, maxTitleWidth)
	if item.IsRollup() {
		title = RollupIcon + " " + Truncate(item.Title, maxTitleWidth-2)
	}
	return []string{
		fmt.Sprintf("%d", pos),
		fmt.Sprintf("%d", item.SortScore),
		TierStyle(item.Tier).Render(orDash(string(item.Tier))),
		SeverityStyle(item.Severity).Render(orDash(string(item.Severity))),
		orDash(string(item.Category)),
		title,
		FormatAge(item.AgeDays(now)),
		FormatChips(item.Chips),
	}
}

// RenderRuns renders a list of recorded runs.
func RenderRuns(runs []service.Run) string {
	if len(runs) == 0 {
		return SubtleStyle.Render("No recorded runs.") + "\n"
	}

	t := newTable("Run", "Evaluated", "Actions")
	for _, r := range runs {
		t.add(r.ID, r.EvaluatedAt.Format(time.RFC3339), fmt.Sprintf("%d", r.ActionCount))
	}
	return t.render()
}

// RenderRun renders one run and the rows it showed.
func RenderRun(run service.Run) string {
	var b strings.Builder
	b.WriteString(FormatTitle(fmt.Sprintf("Run %s", run.ID)))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("Evaluated %s from %d action items",
		run.EvaluatedAt.Format(time.RFC3339), run.ActionCount)))
	b.WriteString("\n\n")

	if len(run.Items) == 0 {
		b.WriteString(SubtleStyle.Render("Nothing was shown.") + "\n")
		return b.String()
	}

	t := newTable("#", "Score", "Tier", "Severity", "Title", "Children", "Pass")
	for _, item := range run.Items {
		children := ""
		if item.ChildCount > 0 {
			children = fmt.Sprintf("%d", item.ChildCount)
		}
		t.add(
			fmt.Sprintf("%d", item.Position+1),
			fmt.Sprintf("%d", item.SortScore),
			TierStyle(item.Tier).Render(orDash(string(item.Tier))),
			SeverityStyle(item.Severity).Render(orDash(string(item.Severity))),
			Truncate(item.Title, maxTitleWidth),
			children,
			SubtleStyle.Render(item.Pass),
		)
	}
	b.WriteString(t.render())
	return b.String()
}

// RenderPolicies renders the registered rollup policies.
func RenderPolicies(policies []rollup.Policy) string {
	if len(policies) == 0 {
		return SubtleStyle.Render("No rollup policies.") + "\n"
	}

	t := newTable("Title key", "Rollup id", "Min", "Label", "Category", "Severity", "Breakdown")
	for _, p := range policies {
		t.add(
			string(p.TitleKey),
			p.RollupID,
			fmt.Sprintf("%d", p.MinCount),
			p.Label(p.MinCount),
			orText(string(p.Category), "from children"),
			orText(string(p.Severity), "most severe"),
			string(p.Breakdown),
		)
	}
	return t.render()
}

// FormatChips renders chips as "Label (n), Label (n)".
func FormatChips(chips []model.Chip) string {
	parts := make([]string, len(chips))
	for i, c := range chips {
		parts[i] = fmt.Sprintf("%s (%s)", c.Label, c.Value)
	}
	return strings.Join(parts, ", ")
}

// FormatAge renders a day count.
func FormatAge(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// Truncate shortens s to at most width runes, ending with an ellipsis.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func orDash(s string) string {
	return orText(s, "-")
}

func orText(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
