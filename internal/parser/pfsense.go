package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrNotFound      = errors.New("config file not found")
	ErrParse         = errors.New("config file is not well-formed XML")
	ErrInvalidConfig = errors.New("config has no system hostname")
)

// Document is the parsed form of a pfSense config.xml export. It is built
// once per run and read-only afterwards.
type Document struct {
	Hostname string
	// RawText is the file exactly as read; line provenance is recovered
	// against it.
	RawText []byte
	// FilterXML is the raw markup inside the <filter> element, empty if the
	// section is absent.
	FilterXML []byte
	Rules     []FilterRule
	// Snmp is nil when the config has no snmpd section.
	Snmp *SnmpNode
}

type pfSenseConfig struct {
	System struct {
		Hostname string `xml:"hostname"`
	} `xml:"system"`
	Filter filterSection `xml:"filter"`
	Snmpd  *SnmpNode     `xml:"snmpd"`
}

type filterSection struct {
	InnerXML []byte       `xml:",innerxml"`
	Rules    []FilterRule `xml:"rule"`
}

// FilterRule mirrors one <rule> element of the filter section.
type FilterRule struct {
	Type        string      `xml:"type"`       // "pass", "block", "reject"
	Interface   string      `xml:"interface"`  // "wan", "lan", "opt1", ...
	IPProtocol  string      `xml:"ipprotocol"` // "inet", "inet6", "inet46"
	Protocol    string      `xml:"protocol"`   // "tcp", "udp", ...; absent = any transport
	Source      AddressNode `xml:"source"`
	Destination AddressNode `xml:"destination"`
	Descr       string      `xml:"descr"`
	Disabled    *struct{}   `xml:"disabled"`
}

// AddressNode is the source or destination of a rule. <any/> and <not/> are
// presence elements, so they decode into pointers.
type AddressNode struct {
	Any     *struct{} `xml:"any"`
	Address string    `xml:"address"` // IP, CIDR, or alias name
	Network string    `xml:"network"` // "lan", "wanip", "(self)", ...
	Port    string    `xml:"port"`    // "80" or "80-443"
	Not     *struct{} `xml:"not"`
}

// SnmpNode mirrors the <snmpd> section.
type SnmpNode struct {
	Enable      *struct{} `xml:"enable"`
	SysLocation string    `xml:"syslocation"`
	SysContact  string    `xml:"syscontact"`
	ROCommunity string    `xml:"rocommunity"`
	PollPort    string    `xml:"pollport"`
}

// Load reads and parses a config export. The filter and snmpd sections may
// both be absent; a missing hostname is an error because it names the
// report output directory.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	var cfg pfSenseConfig
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	hostname := strings.TrimSpace(cfg.System.Hostname)
	if hostname == "" {
		return nil, ErrInvalidConfig
	}

	return &Document{
		Hostname:  hostname,
		RawText:   data,
		FilterXML: cfg.Filter.InnerXML,
		Rules:     cfg.Filter.Rules,
		Snmp:      cfg.Snmpd,
	}, nil
}
