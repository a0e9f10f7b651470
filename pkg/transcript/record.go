package transcript

import (
	"strings"
	"time"

	"jyotchat-be/pkg/store"
)

const (
	// Separator delimits the blocks of a record; two in a row end it.
	Separator = "------------------------------------------------------------------------"
	// TimeLayout is the microsecond timestamp prefixed to every block.
	TimeLayout = "2006-01-02 15:04:05.000000"
	// MaxEvidence is the number of evidence slots persisted per turn.
	MaxEvidence = 5
	// NotAvailable stands in for a missing page or file path.
	NotAvailable = "N/A"

	terminalMarker = "\n" + Separator + "\n" + Separator + "\n"
)

// Context is one evidence slot of a parsed record.
type Context struct {
	Text     string
	Page     string
	Resource string
}

// Record is one completed turn read back from a transcript.
type Record struct {
	Timestamp string
	Query     string
	Contexts  []Context
	Response  string
}

// Slots returns exactly MaxEvidence contexts, padded with empty slots.
func (r Record) Slots() [MaxEvidence]Context {
	var slots [MaxEvidence]Context
	copy(slots[:], r.Contexts)
	return slots
}

// Render produces the on-disk form of a turn. At most MaxEvidence evidence
// items are written; the record always ends with the terminal marker.
func Render(at time.Time, query string, evidence []store.Evidence, answer string) []byte {
	ts := at.Format(TimeLayout)
	if len(evidence) > MaxEvidence {
		evidence = evidence[:MaxEvidence]
	}

	var b strings.Builder
	b.WriteString(ts + " - User Query: " + query + "\n")
	b.WriteString(Separator + "\n")
	for _, ev := range evidence {
		b.WriteString(ts + " - Context Text: " + ev.Text +
			" - Page: " + orNotAvailable(ev.Page) +
			" FilePath: " + orNotAvailable(ev.ResourcePath) + "\n")
		b.WriteString(Separator + "\n")
	}
	b.WriteString(ts + " - Generated Response: " + answer)
	b.WriteString(terminalMarker)
	return []byte(b.String())
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
