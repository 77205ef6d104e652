package parser

import (
	"bufio"
	"bytes"
	"os"
	"strings"
)

const (
	filterOpenMarker = "<filter>"
	ruleOpenMarker   = "<rule"
)

// MapLines recovers the original line number of each filter rule, keyed by
// rule ordinal. The canonical rules come from a parsed subtree, so line
// numbers cannot be read off the parse tree; instead the filter subtree is
// re-serialized to a scratch file and its rule boundaries are aligned
// against the physical start of the filter section in the raw text.
//
// The result may be partial: if the filter marker is never found the map is
// empty, and a rule whose boundary cannot be located in the scratch stream
// is simply left out. Callers must treat a missing ordinal as "no line
// number". Matching is sequential, so recovered lines are monotonically
// increasing across ordinals.
func MapLines(rawText, filterXML []byte) (map[int]int, error) {
	lines := make(map[int]int)

	sectionLine := markerLine(rawText, filterOpenMarker)
	if sectionLine == 0 {
		return lines, nil
	}

	scratch, err := os.CreateTemp("", "pfshell-filter-*.xml")
	if err != nil {
		return nil, err
	}
	defer os.Remove(scratch.Name())
	defer scratch.Close()

	// The scratch stream starts with the opening tag so that its first line
	// coincides with the section's physical start line.
	if _, err := scratch.Write([]byte(filterOpenMarker)); err != nil {
		return nil, err
	}
	if _, err := scratch.Write(filterXML); err != nil {
		return nil, err
	}
	if _, err := scratch.Seek(0, 0); err != nil {
		return nil, err
	}

	ordinal := 0
	lineNo := 0
	scanner := bufio.NewScanner(scratch)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		t := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(t, ruleOpenMarker+">") || strings.HasPrefix(t, ruleOpenMarker+" ") {
			lines[ordinal] = sectionLine + lineNo - 1
			ordinal++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// markerLine returns the 1-based number of the first raw line containing
// marker, or 0 if there is none.
func markerLine(raw []byte, marker string) int {
	n := 0
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		n++
		if strings.Contains(scanner.Text(), marker) {
			return n
		}
	}
	return 0
}
