package report

import (
	"fmt"
	"strconv"

	"pfshell/internal/engine"
	"pfshell/internal/model"
	"pfshell/pkg/wellknown"
)

// Group is one criterion's findings, carrying the label the sinks render
// under.
type Group struct {
	ID       model.CriterionID
	Severity model.Severity
	Label    string
	Findings []model.Finding
}

// SeverityGroups returns the non-empty finding groups of one severity, in
// catalog order.
func SeverityGroups(buckets map[model.CriterionID][]model.Finding, sev model.Severity) []Group {
	var groups []Group
	for _, c := range engine.Catalog {
		if c.Severity == sev && len(buckets[c.ID]) > 0 {
			groups = append(groups, Group{ID: c.ID, Severity: sev, Label: c.Label, Findings: buckets[c.ID]})
		}
	}
	for _, c := range engine.SnmpCatalog {
		if c.Severity == sev && len(buckets[c.ID]) > 0 {
			groups = append(groups, Group{ID: c.ID, Severity: sev, Label: c.Label, Findings: buckets[c.ID]})
		}
	}
	return groups
}

// valueText is an endpoint's address or network with the negation marker
// applied.
func valueText(ep model.Endpoint) string {
	if ep.Negated {
		return "!" + ep.Value
	}
	return ep.Value
}

func lineText(r *model.Rule) string {
	if r.LineNumber == 0 {
		return "-"
	}
	return strconv.Itoa(r.LineNumber)
}

func typeText(r *model.Rule) string {
	if r.Disabled {
		return r.Type + " (disabled)"
	}
	return r.Type
}

// endpointText renders an endpoint as value:PROTO/port, with the negation
// marker and a well-known service label where one applies, e.g.
// "!10.0.0.0/24:TCP/22 (ssh)".
func endpointText(r *model.Rule, ep model.Endpoint) string {
	text := fmt.Sprintf("%s:%s/%s", valueText(ep), r.ProtocolLabel(), ep.Port)
	if label, ok := wellknown.PortLabel(ep.Port); ok {
		text += " (" + label + ")"
	}
	return text
}

func snmpText(s *model.SnmpConfig) string {
	return fmt.Sprintf("community=%q location=%q contact=%q port=%q",
		s.ROCommunity, s.SysLocation, s.SysContact, s.PollPort)
}
