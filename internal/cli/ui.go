package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/ollama"
	"github.com/dyike/CortexHedge/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	headerCellStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	inProgressStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
}

func renderAnalysts(agents []models.AgentInfo) string {
	t := newTable("#", "Key", "Name", "Style")
	for _, a := range agents {
		t.Row(strconv.Itoa(a.Order), a.Key, a.DisplayName, a.InvestingStyle)
	}
	return titleStyle.Render("Analysts") + "\n" + t.Render()
}

func renderSwarms(swarms []models.SwarmInfo) string {
	t := newTable("Swarm", "Analysts")
	for _, s := range swarms {
		t.Row(s.Name, strings.Join(s.Agents, ", "))
	}
	return titleStyle.Render("Swarms") + "\n" + t.Render()
}

func actionStyle(action string) lipgloss.Style {
	switch action {
	case consts.Action_Buy:
		return okStyle
	case consts.Action_Sell:
		return errorStyle
	default:
		return warnStyle
	}
}

func renderDecisions(result *models.HedgeFundResult) string {
	if result == nil || len(result.Decisions) == 0 {
		return mutedStyle.Render("no decisions")
	}
	tickers := make([]string, 0, len(result.Decisions))
	for t := range result.Decisions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	t := newTable("Ticker", "Action", "Quantity", "Confidence", "Reasoning")
	for _, ticker := range tickers {
		d := result.Decisions[ticker]
		t.Row(ticker,
			actionStyle(d.Action).Render(strings.ToUpper(d.Action)),
			strconv.FormatInt(d.Quantity, 10),
			fmt.Sprintf("%.1f%%", d.Confidence),
			d.Reasoning,
		)
	}
	return titleStyle.Render("Decisions") + "\n" + t.Render()
}

// formatEvent renders one progress line. Start and complete events print
// nothing because the decisions table follows.
func formatEvent(ev models.Event) string {
	switch ev.Type {
	case consts.Event_Progress:
		label := ev.Agent
		if ev.Ticker != "" {
			label += " [" + ev.Ticker + "]"
		}
		var status string
		switch ev.Status {
		case consts.Progress_Done:
			status = okStyle.Render("✓ " + ev.Status)
		case consts.Progress_Error:
			status = errorStyle.Render("✗ " + ev.Status)
		default:
			status = inProgressStyle.Render("… " + ev.Status)
		}
		line := fmt.Sprintf("%-40s %s", label, status)
		if ev.Message != "" {
			line += " " + mutedStyle.Render(ev.Message)
		}
		return line
	case consts.Event_Error:
		return errorStyle.Render("run failed: " + ev.Message)
	default:
		return ""
	}
}

func renderOllamaStatus(st ollama.Status) string {
	yesNo := func(b bool) string {
		if b {
			return okStyle.Render("yes")
		}
		return errorStyle.Render("no")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Server:    %s\n", st.ServerURL)
	fmt.Fprintf(&b, "Installed: %s\n", yesNo(st.Installed))
	fmt.Fprintf(&b, "Running:   %s\n", yesNo(st.Running))
	if len(st.AvailableModels) > 0 {
		fmt.Fprintf(&b, "Models:    %s\n", strings.Join(st.AvailableModels, ", "))
	}
	if st.Error != "" {
		fmt.Fprintf(&b, "Error:     %s\n", mutedStyle.Render(st.Error))
	}
	return strings.TrimRight(b.String(), "\n")
}
