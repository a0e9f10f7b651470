package transcript

import (
	"regexp"
	"strings"
)

const tsPattern = `\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{6}`

var (
	headerRe = regexp.MustCompile(`(?m)^` + tsPattern + ` - User Query: `)

	recordRe = regexp.MustCompile(`(?s)^(` + tsPattern + `) - User Query: (.*?)\n-+\n` +
		`((?:` + tsPattern + ` - Context Text: .*?\n-+\n)*)` +
		tsPattern + ` - Generated Response: (.*)$`)

	// Evidence text may itself contain dash-only lines, so blocks are split on
	// their timestamped headers rather than on separators.
	contextHeaderRe = regexp.MustCompile(`(?m)^` + tsPattern + ` - Context Text: `)

	blockTailRe = regexp.MustCompile(`\n-+\n$`)

	contextFieldsRe = regexp.MustCompile(`(?s)^(.*) - Page: (.*?) FilePath: (.*)$`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// ParseResult holds the complete records of a transcript and every fragment
// that did not form one (a crashed turn, stray bytes). Fragments are never
// parsed into records.
type ParseResult struct {
	Records   []Record
	Unmatched []string
}

// Parse extracts every complete record from a transcript. A record counts
// only once its terminal marker is present; anything after the last marker
// is returned as unmatched.
func Parse(content string) ParseResult {
	var res ParseResult

	rest := content
	for {
		idx := strings.Index(rest, terminalMarker)
		if idx < 0 {
			break
		}
		chunk := rest[:idx]
		rest = rest[idx+len(terminalMarker):]

		// A chunk may carry the remains of an earlier, never-finished turn;
		// the record proper starts at its last query header.
		starts := headerRe.FindAllStringIndex(chunk, -1)
		if len(starts) == 0 {
			res.addUnmatched(chunk)
			continue
		}
		start := starts[len(starts)-1][0]
		res.addUnmatched(chunk[:start])

		rec, ok := parseRecord(chunk[start:])
		if !ok {
			res.addUnmatched(chunk[start:])
			continue
		}
		res.Records = append(res.Records, rec)
	}
	res.addUnmatched(rest)
	return res
}

func (r *ParseResult) addUnmatched(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	r.Unmatched = append(r.Unmatched, s)
}

func parseRecord(body string) (Record, bool) {
	m := recordRe.FindStringSubmatch(body)
	if m == nil {
		return Record{}, false
	}
	rec := Record{
		Timestamp: m[1],
		Query:     strings.TrimSpace(m[2]),
		Response:  Normalize(m[4]),
	}
	for _, block := range splitContexts(m[3]) {
		rec.Contexts = append(rec.Contexts, parseContext(block))
	}
	return rec, true
}

// splitContexts cuts the evidence section into block bodies, each without
// its header and closing separator.
func splitContexts(section string) []string {
	locs := contextHeaderRe.FindAllStringIndex(section, -1)
	blocks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(section)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, blockTailRe.ReplaceAllString(section[loc[1]:end], ""))
	}
	return blocks
}

func parseContext(block string) Context {
	f := contextFieldsRe.FindStringSubmatch(block)
	if f == nil {
		return Context{Text: Normalize(block)}
	}
	return Context{
		Text:     Normalize(f[1]),
		Page:     field(f[2]),
		Resource: baseName(field(f[3])),
	}
}

// Normalize collapses whitespace runs to one space and trims the ends.
func Normalize(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func field(s string) string {
	s = strings.TrimSpace(s)
	if s == NotAvailable {
		return ""
	}
	return s
}

// baseName strips directories written with either path separator.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
