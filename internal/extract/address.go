// Package extract finds candidate postal addresses in page text.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mingrammer/commonregex"
	"golang.org/x/text/unicode/norm"
)

// streetAddressRe is the commonregex street pattern made case-insensitive,
// so "123 Main St" and "123 main st" both match.
var streetAddressRe = regexp.MustCompile("(?i)" + commonregex.StreetAddressPattern)

// Options configures candidate extraction.
type Options struct {
	// POBoxes also collects post-office box strings alongside street addresses.
	POBoxes bool
}

// DefaultOptions matches street addresses and PO boxes.
func DefaultOptions() Options {
	return Options{POBoxes: true}
}

// Normalize applies NFKC normalization so that ligatures, full-width digits
// and non-breaking spaces in extracted text compare equal to their ASCII forms.
func Normalize(text string) string {
	return norm.NFKC.String(text)
}

// Candidates returns the distinct candidate addresses found in text, sorted.
// Empty text yields an empty result.
func Candidates(text string, opts Options) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	text = Normalize(text)

	set := make(map[string]struct{})
	add := func(matches []string) {
		for _, m := range matches {
			if c := clean(m); c != "" {
				set[c] = struct{}{}
			}
		}
	}

	add(streetAddressRe.FindAllString(text, -1))
	if opts.POBoxes {
		add(commonregex.PoBoxes(text))
	}

	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// clean trims whitespace and trailing punctuation picked up by the patterns.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ",.;:")
	return strings.TrimSpace(s)
}
