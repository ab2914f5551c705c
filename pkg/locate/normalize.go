package locate

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minContainedLen keeps tiny directory names like "a" from matching every
// display name that happens to contain them
const minContainedLen = 3

// Normalize folds s to lower-case letters and digits: compatibility
// decomposition drops accents, everything else that is not a letter or a
// digit is removed.
func Normalize(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})),
		runes.Map(unicode.ToLower),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}
	return out
}

// words splits s into normalized alphanumeric runs
func words(s string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if w := Normalize(f); w != "" {
			out = append(out, w)
		}
	}
	return out
}

type matchKind int

const (
	matchEqual matchKind = iota
	matchContains
	matchContained
	matchWildcard
	noMatch
)

// classify compares a directory name with a display name once both are
// normalized
func classify(dirName, displayName string) matchKind {
	dn, nn := Normalize(dirName), Normalize(displayName)
	if dn == "" || nn == "" {
		return noMatch
	}
	switch {
	case dn == nn:
		return matchEqual
	case strings.Contains(dn, nn):
		return matchContains
	case len(dn) >= minContainedLen && strings.Contains(nn, dn):
		return matchContained
	}
	if ws := words(displayName); len(ws) > 1 {
		pattern := "*" + strings.Join(ws, "*") + "*"
		if ok, _ := filepath.Match(pattern, dn); ok {
			return matchWildcard
		}
	}
	return noMatch
}

type candidate struct {
	name     string
	kind     matchKind
	distance int
}

// rankNormalized returns the directory names that match displayName after
// normalization, best first: by match kind, then fuzzy distance, then name
func rankNormalized(dirNames []string, displayName string) []string {
	nn := Normalize(displayName)
	var cands []candidate
	for _, d := range dirNames {
		kind := classify(d, displayName)
		if kind == noMatch {
			continue
		}
		dn := Normalize(d)
		dist := fuzzy.RankMatchNormalizedFold(nn, dn)
		if dist < 0 {
			dist = fuzzy.RankMatchNormalizedFold(dn, nn)
		}
		if dist < 0 {
			dist = fuzzy.LevenshteinDistance(nn, dn)
		}
		cands = append(cands, candidate{name: d, kind: kind, distance: dist})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].kind != cands[j].kind {
			return cands[i].kind < cands[j].kind
		}
		if cands[i].distance != cands[j].distance {
			return cands[i].distance < cands[j].distance
		}
		return cands[i].name < cands[j].name
	})

	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	return names
}
