package engine

import (
	"fmt"
	"reflect"
	"testing"

	"pfshell/internal/model"
)

func anyEndpoint() model.Endpoint {
	return model.Endpoint{Value: model.AnyValue, Port: model.AnyValue}
}

func endpoint(value, port string) model.Endpoint {
	return model.Endpoint{Value: value, Port: port}
}

func ruleIDs(buckets map[model.CriterionID][]model.Finding) map[model.CriterionID]int {
	counts := make(map[model.CriterionID]int)
	for id, findings := range buckets {
		counts[id] = len(findings)
	}
	return counts
}

func TestClassifyRuleCatalog(t *testing.T) {
	tests := []struct {
		name string
		rule model.Rule
		want []model.CriterionID
	}{
		{
			name: "pass any to any lands in both high buckets",
			rule: model.Rule{Type: "pass", Source: anyEndpoint(), Destination: anyEndpoint()},
			want: []model.CriterionID{model.AnyDestAnyPort, model.AnySrcDestMultiPort},
		},
		{
			name: "any source to pinned destination port",
			rule: model.Rule{Type: "pass", Source: anyEndpoint(), Destination: endpoint("10.0.0.5", "443")},
			want: []model.CriterionID{model.AnySrcSpecDestPort},
		},
		{
			name: "any destination from pinned source port",
			rule: model.Rule{Type: "pass", Source: endpoint("lan", "1024"), Destination: anyEndpoint()},
			want: []model.CriterionID{model.AnyDestAnyPort, model.AnyDestSpecSrcPort},
		},
		{
			name: "open port between pinned hosts",
			rule: model.Rule{Type: "pass", Source: endpoint("lan", model.AnyValue), Destination: endpoint("10.0.0.5", model.AnyValue)},
			want: []model.CriterionID{model.AnyPortSpecSrcDest},
		},
		{
			name: "reject rule",
			rule: model.Rule{Type: "reject", Source: endpoint("lan", "80"), Destination: endpoint("10.0.0.5", "80")},
			want: []model.CriterionID{model.RejectRule},
		},
		{
			name: "reject is case-sensitive",
			rule: model.Rule{Type: "Reject", Source: endpoint("lan", "80"), Destination: endpoint("10.0.0.5", "80")},
			want: nil,
		},
		{
			name: "block matches nothing when fully pinned",
			rule: model.Rule{Type: "block", Source: endpoint("lan", "80"), Destination: endpoint("10.0.0.5", "80")},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets := NewClassifier(1).Classify([]model.Rule{tt.rule}, nil)
			for _, id := range tt.want {
				if len(buckets[id]) != 1 {
					t.Errorf("expected a finding in %s, got %v", id, ruleIDs(buckets))
				}
			}
			total := 0
			for _, findings := range buckets {
				total += len(findings)
			}
			if total != len(tt.want) {
				t.Errorf("unexpected extra findings: %v", ruleIDs(buckets))
			}
		})
	}
}

func TestLargePortRangeBoundary(t *testing.T) {
	tests := []struct {
		port string
		want bool
	}{
		{"8000-8999", false}, // span 999
		{"8000-9000", true},  // span 1000
		{"8000-9200", true},
		{"T8000-9000", true}, // non-digit prefix tolerated
		{"443", false},
		{"ANY", false},
		{"8000-", false},
		{"-9000", false},
		{"a-b", false},
		{"1-2-3", false},
	}

	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			rule := model.Rule{Type: "pass", Source: endpoint("lan", "80"), Destination: endpoint("10.0.0.5", tt.port)}
			buckets := NewClassifier(1).Classify([]model.Rule{rule}, nil)
			got := len(buckets[model.LargePortRange]) == 1
			if got != tt.want {
				t.Errorf("LargePortRange(%q): got %v, want %v", tt.port, got, tt.want)
			}
		})
	}
}

func TestIsSecure(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want bool
	}{
		{"length 15 with all classes", "Abcdefghij123!x", false},
		{"length 16 with all classes", "Abcdefghij123!xy", true},
		{"no lowercase", "ABCDEFGHIJ12345!", false},
		{"no uppercase", "abcdefghij12345!", false},
		{"no digit", "Abcdefghijklmno!", false},
		{"no special", "Abcdefghijkl1234", false},
		{"underscore is not special", "Abcdefghijkl123_", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSecure(tt.s); got != tt.want {
				t.Errorf("IsSecure(%q): got %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestClassifySnmp(t *testing.T) {
	tests := []struct {
		name     string
		snmp     *model.SnmpConfig
		wantWeak int
		wantV3   int
	}{
		{"no snmp config", nil, 0, 0},
		{"public community", &model.SnmpConfig{ROCommunity: "public"}, 1, 0},
		{"short community", &model.SnmpConfig{ROCommunity: "s3cret"}, 1, 0},
		{"strong community", &model.SnmpConfig{ROCommunity: "Abcdefghij123!xy"}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets := NewClassifier(1).Classify(nil, tt.snmp)
			if got := len(buckets[model.WeakSnmpCommunity]); got != tt.wantWeak {
				t.Errorf("WeakSnmpCommunity: got %d, want %d", got, tt.wantWeak)
			}
			if got := len(buckets[model.SnmpBelowV3]); got != tt.wantV3 {
				t.Errorf("SnmpBelowV3: got %d, want %d", got, tt.wantV3)
			}
		})
	}
}

func TestClassifyKeepsDocumentOrderAcrossWorkers(t *testing.T) {
	var rules []model.Rule
	for i := 0; i < 200; i++ {
		rules = append(rules, model.Rule{
			Type:        "pass",
			Source:      anyEndpoint(),
			Destination: anyEndpoint(),
			Ordinal:     i,
		})
	}

	for _, workers := range []int{1, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			buckets := NewClassifier(workers).Classify(rules, nil)
			findings := buckets[model.AnyDestAnyPort]
			if len(findings) != len(rules) {
				t.Fatalf("expected %d findings, got %d", len(rules), len(findings))
			}
			for i, f := range findings {
				if f.Rule.Ordinal != i {
					t.Fatalf("finding %d references ordinal %d; document order lost", i, f.Rule.Ordinal)
				}
			}
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	rules := []model.Rule{
		{Type: "pass", Source: anyEndpoint(), Destination: anyEndpoint(), Ordinal: 0},
		{Type: "reject", Source: endpoint("lan", "80"), Destination: endpoint("10.0.0.5", "8000-9200"), Ordinal: 1},
	}
	snmp := &model.SnmpConfig{ROCommunity: "public"}

	c := NewClassifier(4)
	first := c.Classify(rules, snmp)
	second := c.Classify(rules, snmp)
	if !reflect.DeepEqual(first, second) {
		t.Error("classification is not idempotent")
	}
}

func TestEndToEndSingleOpenRule(t *testing.T) {
	rules := []model.Rule{{Type: "pass", Source: anyEndpoint(), Destination: anyEndpoint()}}
	buckets := NewClassifier(2).Classify(rules, nil)

	if len(buckets[model.AnyDestAnyPort]) != 1 || len(buckets[model.AnySrcDestMultiPort]) != 1 {
		t.Errorf("open rule missing from high buckets: %v", ruleIDs(buckets))
	}
	for id, findings := range buckets {
		if id == model.AnyDestAnyPort || id == model.AnySrcDestMultiPort {
			continue
		}
		if len(findings) != 0 {
			t.Errorf("bucket %s should be empty, has %d findings", id, len(findings))
		}
	}
}

func TestCriterionLabel(t *testing.T) {
	if got := CriterionLabel(model.RejectRule); got != "Reject rule" {
		t.Errorf("got %q", got)
	}
	if got := CriterionLabel(model.WeakSnmpCommunity); got != "Weak SNMP community string" {
		t.Errorf("got %q", got)
	}
	if got := CriterionLabel(model.CriterionID("Bogus")); got != "Bogus" {
		t.Errorf("unknown id should fall back to itself, got %q", got)
	}
}
