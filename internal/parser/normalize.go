package parser

import (
	"strings"

	"pfshell/internal/model"
)

const (
	descrMaxLen   = 50
	noDescription = "No description"
)

// NormalizeRule converts a raw <rule> element into the canonical Rule.
// It never fails: every absent field resolves to its wildcard or
// placeholder default.
func NormalizeRule(raw FilterRule, ordinal int) model.Rule {
	return model.Rule{
		Type:        raw.Type,
		Interface:   raw.Interface,
		IPProtocol:  raw.IPProtocol,
		Protocol:    raw.Protocol,
		Source:      normalizeEndpoint(raw.Source),
		Destination: normalizeEndpoint(raw.Destination),
		Description: normalizeDescr(raw.Descr),
		Disabled:    raw.Disabled != nil,
		Ordinal:     ordinal,
	}
}

// normalizeEndpoint resolves address > network > wildcard. A negation
// marker only takes effect alongside a concrete value: negating the
// wildcard is not representable.
func normalizeEndpoint(n AddressNode) model.Endpoint {
	ep := model.Endpoint{Value: model.AnyValue, Port: model.AnyValue}
	switch {
	case n.Address != "":
		ep.Value = n.Address
	case n.Network != "":
		ep.Value = n.Network
	}
	if ep.Value != model.AnyValue && n.Not != nil {
		ep.Negated = true
	}
	if n.Port != "" {
		ep.Port = n.Port
	}
	return ep
}

func normalizeDescr(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return noDescription
	}
	if r := []rune(s); len(r) > descrMaxLen {
		return string(r[:descrMaxLen]) + "..."
	}
	return s
}

// NormalizeSnmp converts the raw snmpd node into an SnmpConfig. It returns
// nil unless the enable flag is present; the string fields are copied
// verbatim, absent ones staying empty.
func NormalizeSnmp(raw *SnmpNode) *model.SnmpConfig {
	if raw == nil || raw.Enable == nil {
		return nil
	}
	return &model.SnmpConfig{
		SysLocation: raw.SysLocation,
		SysContact:  raw.SysContact,
		ROCommunity: raw.ROCommunity,
		PollPort:    raw.PollPort,
	}
}
