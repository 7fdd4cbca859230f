// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonathan/brandbot/internal/db"
	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/orchestrator"
	"github.com/jonathan/brandbot/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Printer handles formatted CLI output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintLog writes one run log entry, colored by type. label distinguishes
// concurrent runs and may be empty.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintLog(label string, entry orchestrator.LogEntry) {
	prefix := ""
	if label != "" {
		prefix = fmt.Sprintf("[%s] ", label)
	}
	ts := faint.Sprint(entry.Timestamp.Format("15:04:05"))
	line := fmt.Sprintf("%s%-8s %s", prefix, entry.Service, entry.Message)

	switch entry.Type {
	case orchestrator.LogSuccess:
		fmt.Fprintf(p.out, "%s %s\n", ts, green.Sprintf("✓ %s", line))
	case orchestrator.LogWarning:
		fmt.Fprintf(p.out, "%s %s\n", ts, yellow.Sprintf("⚠ %s", line))
	case orchestrator.LogError:
		fmt.Fprintf(p.out, "%s %s\n", ts, red.Sprintf("✗ %s", line))
	default:
		fmt.Fprintf(p.out, "%s %s\n", ts, cyan.Sprintf("→ %s", line))
	}
}

// PrintProgress writes a one-line progress bar for a run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(label string, state orchestrator.ProgressState) {
	const width = 20
	filled := state.Overall * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if label != "" {
		label += " "
	}
	fmt.Fprintf(p.out, "%s%s %3d%%\n", label, bar, state.Overall)
}

// PrintBrandKit outputs the generated assets of a brief.
func (p *Printer) PrintBrandKit(brief *types.BrandBrief) {
	if brief == nil {
		return
	}
	a := brief.GeneratedAssets

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Brand:    %s\n", brief.ResolvedName()))
	if brief.BasicInfo.Industry != "" {
		sb.WriteString(fmt.Sprintf("Industry: %s\n", brief.BasicInfo.Industry))
	}

	if len(a.Names) > 0 && brief.BasicInfo.BusinessName == "" {
		sb.WriteString("\nName options:\n")
		writeList(&sb, a.Names, maxItemsToShow)
	}
	if len(a.Taglines) > 0 {
		sb.WriteString("\nTaglines:\n")
		writeList(&sb, a.Taglines, 3)
	}
	if a.Mission != "" {
		sb.WriteString(fmt.Sprintf("\nMission:  %s\n", a.Mission))
	}
	if len(a.Values) > 0 {
		sb.WriteString(fmt.Sprintf("Values:   %s\n", strings.Join(a.Values, ", ")))
	}
	if len(a.Colors) > 0 {
		sb.WriteString(fmt.Sprintf("Colors:   %s\n", strings.Join(a.Colors, " ")))
	}
	if a.Typography != "" {
		sb.WriteString(fmt.Sprintf("Type:     %s\n", a.Typography))
	}
	if a.VisualStyle != "" {
		sb.WriteString(fmt.Sprintf("Style:    %s\n", a.VisualStyle))
	}
	if a.LogoURL != "" {
		sb.WriteString(fmt.Sprintf("Logo:     %s\n", a.LogoURL))
	} else {
		sb.WriteString("Logo:     (none)\n")
	}

	p.printBox("BRAND KIT", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintRunSummary renders the outcome of several runs as a table.
func (p *Printer) PrintRunSummary(states []orchestrator.State) {
	tw := p.newTable()
	tw.AppendHeader(table.Row{"Brief", "Brand", "Status", "Progress", "Duration", "Error"})
	for _, st := range states {
		brand := ""
		briefID := ""
		if st.Brief != nil {
			brand = st.Brief.ResolvedName()
			briefID = shortID(st.Brief.ID.String())
		}
		duration := ""
		if !st.FinishedAt.IsZero() {
			duration = st.FinishedAt.Sub(st.StartedAt).Round(time.Millisecond).String()
		}
		tw.AppendRow(table.Row{briefID, brand, statusText(string(st.Status)), fmt.Sprintf("%d%%", st.Progress.Overall), duration, st.Error})
	}
	tw.Render()
}

// PrintRuns renders stored runs as a table.
func (p *Printer) PrintRuns(runs []db.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(p.out, "No runs found.") //nolint:errcheck
		return
	}
	tw := p.newTable()
	tw.AppendHeader(table.Row{"Run", "Brief", "Tier", "Status", "Started", "Duration", "Error"})
	for _, r := range runs {
		duration := ""
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		errMsg := ""
		if r.ErrorMessage != nil {
			errMsg = truncate(*r.ErrorMessage, 40)
		}
		tw.AppendRow(table.Row{
			shortID(r.ID.String()),
			shortID(r.BriefID.String()),
			gate.Tier(r.Tier).String(),
			statusText(r.Status),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			duration,
			errMsg,
		})
	}
	tw.Render()
}

// PrintTiers renders the subscription tiers and their concurrency limits.
func (p *Printer) PrintTiers(current gate.Tier) {
	tw := p.newTable()
	tw.AppendHeader(table.Row{"Tier", "Simultaneous runs", ""})
	for _, t := range gate.Tiers() {
		marker := ""
		if t == current {
			marker = "current"
		}
		tw.AppendRow(table.Row{t.String(), t.Limit(), marker})
	}
	tw.Render()
}

func (p *Printer) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(p.out)
	tw.SetStyle(table.StyleLight)
	return tw
}

func statusText(status string) string {
	switch orchestrator.Status(status) {
	case orchestrator.StatusCompleted:
		return green.Sprint(status)
	case orchestrator.StatusFailed:
		return red.Sprint(status)
	case orchestrator.StatusCancelled, orchestrator.StatusPaused:
		return yellow.Sprint(status)
	default:
		return status
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
