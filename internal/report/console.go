package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pfshell/internal/model"
)

// Severity colors follow the usual security-tool palette.
var severityColors = map[model.Severity]lipgloss.Color{
	model.SeverityHigh:   lipgloss.Color("#FF6B6B"),
	model.SeverityMedium: lipgloss.Color("#FFD93D"),
	model.SeverityLow:    lipgloss.Color("#6BCB77"),
}

// Console renders finding groups as human-readable tables under severity
// banners.
type Console struct {
	w     io.Writer
	color bool
}

func NewConsole(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

// Render writes every non-empty severity section. A severity with zero
// findings across all its criteria is omitted entirely.
func (c *Console) Render(hostname string, buckets map[model.CriterionID][]model.Finding) {
	fmt.Fprintf(c.w, "Audit results for %s\n", c.bold(hostname))

	for _, sev := range model.Severities {
		groups := SeverityGroups(buckets, sev)
		if len(groups) == 0 {
			continue
		}

		banner := fmt.Sprintf("======== %s severity ========", sev)
		fmt.Fprintf(c.w, "\n%s\n", c.severityStyle(sev, banner))

		for _, g := range groups {
			fmt.Fprintf(c.w, "\n%s\n%s\n", c.bold(g.Label), strings.Repeat("-", len(g.Label)))
			for _, f := range g.Findings {
				if f.Rule != nil {
					fmt.Fprintf(c.w, "%-6s %-8s %-18s %-34s -> %-34s %s\n",
						lineText(f.Rule),
						f.Rule.Interface,
						typeText(f.Rule),
						endpointText(f.Rule, f.Rule.Source),
						endpointText(f.Rule, f.Rule.Destination),
						f.Rule.Description)
				} else {
					fmt.Fprintf(c.w, "%s\n", snmpText(f.Snmp))
				}
			}
		}
	}
}

// Summary prints finding counts per severity.
func (c *Console) Summary(buckets map[model.CriterionID][]model.Finding) {
	parts := make([]string, 0, len(model.Severities))
	for _, sev := range model.Severities {
		n := 0
		for _, g := range SeverityGroups(buckets, sev) {
			n += len(g.Findings)
		}
		parts = append(parts, c.severityStyle(sev, fmt.Sprintf("%s: %d", sev, n)))
	}
	fmt.Fprintf(c.w, "\nFindings  %s\n", strings.Join(parts, "  "))
}

func (c *Console) severityStyle(sev model.Severity, s string) string {
	if !c.color {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Foreground(severityColors[sev]).Render(s)
}

func (c *Console) bold(s string) string {
	if !c.color {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Render(s)
}
