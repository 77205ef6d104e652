package model

import "strings"

// AnyValue is the wildcard sentinel used when a rule omits an address,
// network, or port. It matches any traffic.
const AnyValue = "ANY"

type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Severities lists the severity levels in report order.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

type CriterionID string

const (
	AnyDestAnyPort      CriterionID = "AnyDestAnyPort"
	AnySrcDestMultiPort CriterionID = "AnySrcDestMultiPort"
	AnySrcSpecDestPort  CriterionID = "AnySrcSpecDestPort"
	AnyDestSpecSrcPort  CriterionID = "AnyDestSpecSrcPort"
	AnyPortSpecSrcDest  CriterionID = "AnyPortSpecSrcDest"
	LargePortRange      CriterionID = "LargePortRange"
	RejectRule          CriterionID = "RejectRule"
	WeakSnmpCommunity   CriterionID = "WeakSnmpCommunity"
	SnmpBelowV3         CriterionID = "SnmpBelowV3"
)

// Endpoint is the source or destination half of a Rule. Value and Port hold
// AnyValue when the config omitted them. Negated is only ever set alongside
// a concrete Value.
type Endpoint struct {
	Value   string
	Negated bool
	Port    string
}

func (e Endpoint) AnyAddr() bool {
	return e.Value == AnyValue
}

func (e Endpoint) AnyPort() bool {
	return e.Port == AnyValue
}

// Rule is one normalized firewall filter entry. Rules are built once from
// the config document and never mutated afterwards.
type Rule struct {
	Type        string // "pass", "block", "reject" (free-form from source)
	Interface   string
	IPProtocol  string // "inet", "inet6", "inet46"
	Protocol    string // "" means any transport
	Source      Endpoint
	Destination Endpoint
	Description string
	Disabled    bool
	LineNumber  int // 1-based line in the original file; 0 if unknown
	Ordinal     int // position in document order
}

// ProtocolLabel is the display form of the transport protocol, uppercased,
// with the wildcard sentinel standing in when the rule matches any
// transport. It prefixes port text in reports and plays no part in
// classification.
func (r *Rule) ProtocolLabel() string {
	if r.Protocol == "" {
		return AnyValue
	}
	return strings.ToUpper(r.Protocol)
}

// SnmpConfig holds the firewall's SNMP daemon settings. It exists only when
// the snmpd section carried an enable flag; fields are copied verbatim.
type SnmpConfig struct {
	SysLocation string
	SysContact  string
	ROCommunity string
	PollPort    string
}

// Finding associates a criterion with the rule or SNMP config that
// satisfied it. Exactly one of Rule and Snmp is non-nil; both are
// back-references to entities owned by the analysis run.
type Finding struct {
	Criterion CriterionID
	Severity  Severity
	Rule      *Rule
	Snmp      *SnmpConfig
}
