// Package tui renders plan and run reports for terminal output.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/flowprep/internal/domain/provision"
)

// Theme colors (Catppuccin Mocha inspired).
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"} // Blue
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"} // Green
	colorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"} // Yellow
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"} // Red
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"} // Overlay0
)

// Styles contains the lipgloss styles used by the reports.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the default report styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary),

		Success: lipgloss.NewStyle().
			Foreground(colorSuccess),

		Warning: lipgloss.NewStyle().
			Foreground(colorWarning),

		Error: lipgloss.NewStyle().
			Foreground(colorError),

		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),
	}
}

// Renderer renders plans and run results as styled text.
type Renderer struct {
	styles Styles
}

// NewRenderer creates a Renderer with the default styles.
func NewRenderer() *Renderer {
	return &Renderer{styles: DefaultStyles()}
}

// RenderPlan returns a human-readable preview of a plan.
func (r *Renderer) RenderPlan(plan *provision.Plan) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render("Provisioning Plan"))
	b.WriteString("\n\n")

	summary := plan.Summary()
	fmt.Fprintf(&b, "Steps: %d total, %d to apply, %d satisfied\n\n",
		summary.Total, summary.NeedsApply, summary.Satisfied)

	for _, entry := range plan.Entries() {
		switch entry.Status() {
		case provision.StatusSatisfied:
			fmt.Fprintf(&b, "  %s %s\n",
				r.styles.Success.Render("✓"), entry.Step().ID().String())
		case provision.StatusNeedsApply:
			fmt.Fprintf(&b, "  %s %s\n",
				r.styles.Warning.Render("+"), entry.Step().ID().String())
		default:
			fmt.Fprintf(&b, "  %s %s (%s)\n",
				r.styles.Muted.Render("?"), entry.Step().ID().String(), entry.Status())
		}
	}

	b.WriteString("\nRun 'flowprep apply' to execute this plan.\n")
	return b.String()
}

// RenderResults returns a human-readable run report. Output of quiet
// steps is replaced by a suppression notice.
func (r *Renderer) RenderResults(result provision.RunResult) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render("Provisioning Run"))
	fmt.Fprintf(&b, " %s\n\n", r.styles.Muted.Render(result.RunID.String()))

	var changed, satisfied, failed, skipped int
	for _, res := range result.Results {
		id := res.StepID().String()

		switch res.Status() {
		case provision.StatusSatisfied:
			if res.Changed() {
				changed++
				fmt.Fprintf(&b, "  %s %s (changed in %s)\n",
					r.styles.Success.Render("✓"), id, res.Duration().Round(time.Millisecond))
			} else {
				satisfied++
				fmt.Fprintf(&b, "  %s %s\n", r.styles.Success.Render("✓"), id)
			}
		case provision.StatusFailed:
			failed++
			fmt.Fprintf(&b, "  %s %s: %v\n", r.styles.Error.Render("✗"), id, res.Error())
		case provision.StatusSkipped:
			skipped++
			fmt.Fprintf(&b, "  %s %s (skipped)\n", r.styles.Muted.Render("-"), id)
		case provision.StatusNeedsApply:
			fmt.Fprintf(&b, "  %s %s (would apply)\n", r.styles.Warning.Render("+"), id)
		case provision.StatusUnknown:
			fmt.Fprintf(&b, "  %s %s (unknown)\n", r.styles.Muted.Render("?"), id)
		}

		if res.Quiet() && res.Output() != "" {
			fmt.Fprintf(&b, "      %s\n", r.styles.Muted.Render("(output suppressed)"))
		}
	}

	fmt.Fprintf(&b, "\nSummary: %d changed, %d satisfied, %d failed, %d skipped\n",
		changed, satisfied, failed, skipped)

	if result.Failed() && result.Failure != nil {
		fmt.Fprintf(&b, "\n%s %v\n",
			r.styles.Error.Render("Run failed:"), result.Failure)
	}

	if diag := strings.TrimSpace(result.Diagnostic); diag != "" && result.Completed() {
		b.WriteString("\n")
		b.WriteString(r.styles.Title.Render("Environment Status"))
		b.WriteString("\n")
		for _, line := range strings.Split(diag, "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	return b.String()
}

// RenderStatus returns the standalone status report.
func (r *Renderer) RenderStatus(report string) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render("Environment Status"))
	b.WriteString("\n")

	report = strings.TrimSpace(report)
	if report == "" {
		b.WriteString(r.styles.Muted.Render("  (no output)"))
		b.WriteString("\n")
		return b.String()
	}

	for _, line := range strings.Split(report, "\n") {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	return b.String()
}
