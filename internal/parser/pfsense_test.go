package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `<pfsense>
	<version>21.0</version>
	<system>
		<hostname>fw1</hostname>
		<domain>localdomain</domain>
	</system>
	<filter>
		<rule>
			<type>pass</type>
			<interface>wan</interface>
			<ipprotocol>inet</ipprotocol>
			<source>
				<any/>
			</source>
			<destination>
				<any/>
			</destination>
		</rule>
		<rule>
			<type>block</type>
			<interface>lan</interface>
			<ipprotocol>inet</ipprotocol>
			<protocol>tcp</protocol>
			<source>
				<network>lan</network>
				<not/>
			</source>
			<destination>
				<address>10.0.0.5</address>
				<port>8000-9200</port>
			</destination>
			<descr>Block build farm</descr>
			<disabled/>
		</rule>
	</filter>
	<snmpd>
		<enable/>
		<rocommunity>public</rocommunity>
		<syslocation>dc1</syslocation>
	</snmpd>
</pfsense>
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadParsesFilterAndSnmp(t *testing.T) {
	doc, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if doc.Hostname != "fw1" {
		t.Errorf("hostname mismatch: got %q, want fw1", doc.Hostname)
	}
	if len(doc.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(doc.Rules))
	}

	first := doc.Rules[0]
	if first.Type != "pass" || first.Source.Any == nil || first.Destination.Any == nil {
		t.Errorf("first rule not parsed as pass any/any: %+v", first)
	}
	second := doc.Rules[1]
	if second.Source.Network != "lan" || second.Source.Not == nil {
		t.Errorf("negated network source not parsed: %+v", second.Source)
	}
	if second.Destination.Address != "10.0.0.5" || second.Destination.Port != "8000-9200" {
		t.Errorf("destination not parsed: %+v", second.Destination)
	}
	if second.Disabled == nil {
		t.Error("disabled flag not parsed")
	}

	if doc.Snmp == nil || doc.Snmp.Enable == nil {
		t.Fatal("snmpd section not parsed")
	}
	if doc.Snmp.ROCommunity != "public" || doc.Snmp.SysLocation != "dc1" {
		t.Errorf("snmp fields mismatch: %+v", doc.Snmp)
	}
	if len(doc.FilterXML) == 0 {
		t.Error("filter subtree markup not captured")
	}
}

func TestLoadMissingSectionsAreNotErrors(t *testing.T) {
	doc, err := Load(writeConfig(t, `<pfsense><system><hostname>fw2</hostname></system></pfsense>`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Rules) != 0 {
		t.Errorf("expected no rules, got %d", len(doc.Rules))
	}
	if doc.Snmp != nil {
		t.Error("expected no snmp node")
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.xml") },
			wantErr: ErrNotFound,
		},
		{
			name:    "malformed xml",
			path:    func(t *testing.T) string { return writeConfig(t, "<pfsense><system>") },
			wantErr: ErrParse,
		},
		{
			name:    "missing hostname",
			path:    func(t *testing.T) string { return writeConfig(t, `<pfsense><system></system></pfsense>`) },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "blank hostname",
			path:    func(t *testing.T) string { return writeConfig(t, "<pfsense><system><hostname>  </hostname></system></pfsense>") },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
