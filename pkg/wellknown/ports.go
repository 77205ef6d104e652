package wellknown

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strconv"

	_ "embed"
)

//go:embed well_known_ports.csv
var wellKnownPortsData string

var portRegistry map[int]string

func init() {
	portRegistry = make(map[int]string)
	reader := csv.NewReader(bytes.NewBufferString(wellKnownPortsData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded well_known_ports.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded well_known_ports.csv: %v", err)
		}
		if len(record) < 2 {
			continue
		}
		port, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		if _, exists := portRegistry[port]; !exists {
			portRegistry[port] = record[1]
		}
	}
}

// PortLabel returns the service name for a literal port text, e.g. "22"
// yields "ssh". Ranges, wildcards, and unregistered ports report !ok.
func PortLabel(port string) (string, bool) {
	n, err := strconv.Atoi(port)
	if err != nil {
		return "", false
	}
	label, ok := portRegistry[n]
	return label, ok
}
