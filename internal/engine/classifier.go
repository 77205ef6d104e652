package engine

import (
	"strconv"
	"strings"
	"sync"

	"pfshell/internal/model"
)

// largeRangeSpan is the minimum end-start spread for a destination port
// range to be flagged.
const largeRangeSpan = 1000

// Criterion is one predicate of the audit catalog with its fixed severity
// and report label.
type Criterion struct {
	ID       model.CriterionID
	Severity model.Severity
	Label    string
	match    func(*model.Rule) bool
}

// Catalog holds the rule criteria in evaluation order. Buckets are
// non-exclusive: a rule is tested against every predicate and may land in
// several of them.
var Catalog = []Criterion{
	{
		ID:       model.AnyDestAnyPort,
		Severity: model.SeverityHigh,
		Label:    "Any destination with any port",
		match: func(r *model.Rule) bool {
			return r.Destination.AnyAddr() && r.Destination.AnyPort()
		},
	},
	{
		ID:       model.AnySrcDestMultiPort,
		Severity: model.SeverityHigh,
		Label:    "Any source to any destination",
		match: func(r *model.Rule) bool {
			return r.Source.AnyAddr() && r.Destination.AnyAddr() && r.Source.AnyPort()
		},
	},
	{
		ID:       model.AnySrcSpecDestPort,
		Severity: model.SeverityMedium,
		Label:    "Any source to specific destination port",
		match: func(r *model.Rule) bool {
			return r.Source.AnyAddr() && !r.Destination.AnyAddr() && !r.Destination.AnyPort()
		},
	},
	{
		ID:       model.AnyDestSpecSrcPort,
		Severity: model.SeverityMedium,
		Label:    "Any destination from specific source port",
		match: func(r *model.Rule) bool {
			return r.Destination.AnyAddr() && !r.Source.AnyAddr() && !r.Source.AnyPort()
		},
	},
	{
		ID:       model.AnyPortSpecSrcDest,
		Severity: model.SeverityMedium,
		Label:    "Any port between specific hosts",
		match: func(r *model.Rule) bool {
			return r.Destination.AnyPort() && !r.Source.AnyAddr() && !r.Destination.AnyAddr()
		},
	},
	{
		ID:       model.LargePortRange,
		Severity: model.SeverityMedium,
		Label:    "Large destination port range",
		match: func(r *model.Rule) bool {
			start, end, ok := parsePortRange(r.Destination.Port)
			return ok && end-start >= largeRangeSpan
		},
	},
	{
		ID:       model.RejectRule,
		Severity: model.SeverityLow,
		Label:    "Reject rule",
		match: func(r *model.Rule) bool {
			return r.Type == "reject"
		},
	},
}

// SnmpCriterion is a predicate over the SNMP configuration.
type SnmpCriterion struct {
	ID       model.CriterionID
	Severity model.Severity
	Label    string
	match    func(*model.SnmpConfig) bool
}

// SnmpCatalog holds the SNMP criteria. There is one SNMP config per
// document, so each bucket holds at most one finding.
var SnmpCatalog = []SnmpCriterion{
	{
		ID:       model.WeakSnmpCommunity,
		Severity: model.SeverityMedium,
		Label:    "Weak SNMP community string",
		match: func(s *model.SnmpConfig) bool {
			return s.ROCommunity == "public" || !IsSecure(s.ROCommunity)
		},
	},
	{
		ID:       model.SnmpBelowV3,
		Severity: model.SeverityLow,
		Label:    "SNMP below version 3",
		match: func(s *model.SnmpConfig) bool {
			return s.ROCommunity != "public" && IsSecure(s.ROCommunity)
		},
	},
}

// CriterionLabel returns the report label for id, falling back to the id
// itself.
func CriterionLabel(id model.CriterionID) string {
	for _, c := range Catalog {
		if c.ID == id {
			return c.Label
		}
	}
	for _, c := range SnmpCatalog {
		if c.ID == id {
			return c.Label
		}
	}
	return string(id)
}

// Classifier evaluates the catalog against a normalized rule set. Rules are
// independent of each other, so evaluation fans out across workers; buckets
// are assembled in ordinal order afterwards, keeping the output
// deterministic.
type Classifier struct {
	workers int
}

func NewClassifier(workers int) *Classifier {
	if workers < 1 {
		workers = 1
	}
	return &Classifier{workers: workers}
}

// Classify tests every rule against every catalog predicate and the SNMP
// config, if any, against the SNMP catalog. Findings within a bucket keep
// the document order of their rules. A malformed field (such as an
// unparsable port range) skips that one predicate for that one rule and
// never aborts the run.
func (c *Classifier) Classify(rules []model.Rule, snmp *model.SnmpConfig) map[model.CriterionID][]model.Finding {
	matched := make([][]bool, len(rules))

	var wg sync.WaitGroup
	idx := make(chan int)
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				matched[i] = evaluate(&rules[i])
			}
		}()
	}
	for i := range rules {
		idx <- i
	}
	close(idx)
	wg.Wait()

	buckets := make(map[model.CriterionID][]model.Finding)
	for ci, crit := range Catalog {
		for i := range rules {
			if matched[i][ci] {
				buckets[crit.ID] = append(buckets[crit.ID], model.Finding{
					Criterion: crit.ID,
					Severity:  crit.Severity,
					Rule:      &rules[i],
				})
			}
		}
	}

	if snmp != nil {
		for _, crit := range SnmpCatalog {
			if crit.match(snmp) {
				buckets[crit.ID] = append(buckets[crit.ID], model.Finding{
					Criterion: crit.ID,
					Severity:  crit.Severity,
					Snmp:      snmp,
				})
			}
		}
	}
	return buckets
}

func evaluate(r *model.Rule) []bool {
	hits := make([]bool, len(Catalog))
	for i, crit := range Catalog {
		hits[i] = crit.match(r)
	}
	return hits
}

// parsePortRange matches port text of the form "<start>-<end>", tolerating
// a non-digit prefix. Single ports and malformed ranges report !ok.
func parsePortRange(s string) (start, end int, ok bool) {
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	parts := strings.Split(s[i:], "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// IsSecure reports whether an SNMP community string is strong enough: at
// least 16 characters with a lowercase letter, an uppercase letter, a
// digit, and a character outside [A-Za-z0-9_]. All five conditions are
// mandatory.
func IsSecure(s string) bool {
	if len(s) < 16 {
		return false
	}
	var lower, upper, digit, special bool
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case c != '_':
			special = true
		}
	}
	return lower && upper && digit && special
}
