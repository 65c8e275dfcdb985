package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingBasePattern = regexp.MustCompile(`^([A-Za-z]+-\d+)`)
	suffixSplitPattern = regexp.MustCompile(`\s*\(`)
)

// FormatBase renders a fresh base such as "AGH-001"
func FormatBase(prefix string, count int64) string {
	return fmt.Sprintf("%s-%03d", prefix, count)
}

// FormatSuffixed renders a repeat invoice number such as "AGH-001 (2)"
func FormatSuffixed(base string, suffix int) string {
	return fmt.Sprintf("%s (%d)", base, suffix)
}

// ExtractBase derives the base from the oldest invoice number of a pair. It
// takes the leading letters-dash-digits token, else the text before the first
// parenthesis, else the whole string.
func ExtractBase(invoiceNo string) string {
	if m := leadingBasePattern.FindStringSubmatch(invoiceNo); m != nil {
		return m[1]
	}
	if loc := suffixSplitPattern.FindStringIndex(invoiceNo); loc != nil {
		return strings.TrimSpace(invoiceNo[:loc[0]])
	}
	return strings.TrimSpace(invoiceNo)
}

// SuffixMatcher recognises invoice numbers belonging to one base
type SuffixMatcher struct {
	re *regexp.Regexp
}

func NewSuffixMatcher(base string) *SuffixMatcher {
	return &SuffixMatcher{
		re: regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `(?:\s*\((\d+)\))?$`),
	}
}

// SuffixOf returns the numeric suffix of invoiceNo for this base. A bare base
// is suffix 0. ok is false when invoiceNo does not belong to the base.
func (m *SuffixMatcher) SuffixOf(invoiceNo string) (suffix int, ok bool) {
	sub := m.re.FindStringSubmatch(invoiceNo)
	if sub == nil {
		return 0, false
	}
	if sub[1] == "" {
		return 0, true
	}
	n, err := strconv.Atoi(sub[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextSuffix returns one more than the highest suffix among numbers that
// belong to base
func NextSuffix(base string, numbers []string) int {
	m := NewSuffixMatcher(base)
	maxSuffix := 0
	for _, no := range numbers {
		if n, ok := m.SuffixOf(no); ok && n > maxSuffix {
			maxSuffix = n
		}
	}
	return maxSuffix + 1
}

// FileName is the on-disk name for an invoice document. Characters outside
// word characters, dash, parentheses and space are dropped and whitespace runs
// collapse to one space.
func FileName(invoiceNo string) string {
	safe := unsafeFileChars.ReplaceAllString(invoiceNo, "")
	safe = whitespaceRun.ReplaceAllString(safe, " ")
	return safe + ".pdf"
}

var (
	unsafeFileChars = regexp.MustCompile(`[^\w\-() ]+`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)
