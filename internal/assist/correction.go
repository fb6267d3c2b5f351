package assist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var changePattern = regexp.MustCompile(`Line (\d+):\s*"([^"]+)"\s*→\s*"([^"]+)"\s*\(([^)]+)\)`)

// Change is a single text fix reported by the model.
type Change struct {
	Line      int    `json:"line"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// Correction is a corrected SRT document and the fixes that produced it.
type Correction struct {
	SRT     string   `json:"correctedSrt"`
	Changes []Change `json:"changes"`
}

// splits a model response at the changes marker. Unmatched change lines
// are ignored.
func parseCorrection(response string) *Correction {
	body, changesText, _ := strings.Cut(response, ChangesMarker)

	correction := &Correction{
		SRT:     cleanResponse(body),
		Changes: []Change{},
	}

	for _, line := range strings.Split(changesText, "\n") {
		m := changePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		correction.Changes = append(correction.Changes, Change{
			Line:      n,
			Original:  m[2],
			Corrected: m[3],
			Reason:    m[4],
		})
	}

	return correction
}

// FormatChangeSummary renders changes for display.
func FormatChangeSummary(changes []Change) string {
	if len(changes) == 0 {
		return "No errors found. The lyrics are correct.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Corrected %d error(s):\n\n", len(changes)))

	for i, change := range changes {
		sb.WriteString(fmt.Sprintf("%d. Line %d:\n", i+1, change.Line))
		sb.WriteString(fmt.Sprintf("   - %q\n", change.Original))
		sb.WriteString(fmt.Sprintf("   + %q\n", change.Corrected))
		sb.WriteString(fmt.Sprintf("   %s\n\n", change.Reason))
	}

	return sb.String()
}
