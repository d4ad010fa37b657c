// Copyright 2026 Quire Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ocr recovers text from scanned PDF pages and repairs the
// run-together output that OCR engines tend to produce.
package ocr

import (
	_ "embed"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

//go:embed words.txt
var wordList string

var (
	urlTokenRe    = regexp.MustCompile(`^(https?://|www\.)`)
	longWordRe    = regexp.MustCompile(`\S{20,}`)
	mixedCaseRe   = regexp.MustCompile(`[a-z][A-Z]`)
	tightPunctRe  = regexp.MustCompile(`\w[.,!?]\w`)
	capitalRunRe  = regexp.MustCompile(`[A-Z]{2,}[a-z]`)
)

// segmentThreshold is the minimum token length considered for dictionary
// segmentation. Shorter tokens pass through unchanged.
const segmentThreshold = 10

// Restorer re-inserts the whitespace OCR engines drop between words.
// Segmentation is driven by a frequency-ranked dictionary: each candidate
// word costs the log of its rank, unknown spans pay a per-character penalty,
// and the cheapest split wins. Construct once at startup and share; the
// Restorer is immutable after New and safe for concurrent use.
type Restorer struct {
	costs   map[string]float64
	maxWord int
}

// NewRestorer builds a Restorer from the embedded word list.
func NewRestorer() *Restorer {
	words := strings.Fields(wordList)
	costs := make(map[string]float64, len(words))
	logTotal := math.Log(float64(len(words)))
	maxWord := 0
	rank := 0
	for _, w := range words {
		if _, seen := costs[w]; seen {
			continue
		}
		rank++
		costs[w] = math.Log(float64(rank+1) * logTotal)
		if len(w) > maxWord {
			maxWord = len(w)
		}
	}
	return &Restorer{costs: costs, maxWord: maxWord}
}

// NeedsRestoration reports whether text shows the telltale signs of dropped
// whitespace: twenty-character words, lowercase immediately followed by
// uppercase, punctuation jammed between word characters, or a capital run
// bleeding into lowercase. It is cheap and runs before any segmentation.
func NeedsRestoration(text string) bool {
	if longWordRe.MatchString(text) {
		return true
	}
	return mixedCaseRe.MatchString(text) ||
		tightPunctRe.MatchString(text) ||
		capitalRunRe.MatchString(text)
}

// Restore repairs run-together text. Tokens shorter than the segmentation
// threshold, URLs, path-like tokens, and tokens carrying non-ASCII runes
// pass through untouched; everything else is segmented with the original
// casing and punctuation preserved. Input that does not need restoration
// is returned as-is.
func (r *Restorer) Restore(text string) string {
	if !NeedsRestoration(text) {
		return text
	}

	var processed []string
	for _, token := range strings.Fields(text) {
		switch {
		case urlTokenRe.MatchString(token) || strings.Contains(token, "/"):
			processed = append(processed, token)
		case len(token) >= segmentThreshold && isASCII(token):
			cleaned := cleanForSegmentation(token)
			if cleaned == "" {
				processed = append(processed, token)
				continue
			}
			segments := r.segmentPreserveCase(cleaned)
			processed = append(processed, reintroducePunctuation(token, segments)...)
		default:
			processed = append(processed, token)
		}
	}

	return joinTokens(processed)
}

// segmentPreserveCase splits a token into dictionary words and maps the
// original casing back onto each segment. Tokens the dictionary cannot
// improve come back as a single segment. The token must be ASCII: the
// segment offsets are byte offsets into the lowered token, which only
// line up with the original when lowering preserves byte length.
func (r *Restorer) segmentPreserveCase(token string) []string {
	lowered := strings.ToLower(token)
	if len(lowered) != len(token) {
		return []string{token}
	}
	segments := r.segment(lowered)
	if len(segments) <= 1 {
		return []string{token}
	}

	result := make([]string, 0, len(segments))
	pos := 0
	for _, seg := range segments {
		original := token[pos : pos+len(seg)]
		switch {
		case isUpper(original):
			result = append(result, strings.ToUpper(seg))
		case unicode.IsUpper(rune(original[0])):
			result = append(result, strings.ToUpper(seg[:1])+seg[1:])
		default:
			result = append(result, seg)
		}
		pos += len(seg)
	}
	return result
}

// segment finds the minimum-cost split of a lowercase token. Splitting only
// happens when it beats keeping the token whole, so gibberish survives
// untouched.
func (r *Restorer) segment(token string) []string {
	n := len(token)
	best := make([]float64, n+1)
	prev := make([]int, n+1)
	for i := 1; i <= n; i++ {
		best[i] = math.Inf(1)
		lo := i - r.maxWord
		if lo < 0 {
			lo = 0
		}
		for j := lo; j < i; j++ {
			c := best[j] + r.wordCost(token[j:i])
			if c < best[i] {
				best[i] = c
				prev[i] = j
			}
		}
	}

	if best[n] >= r.wordCost(token) {
		return []string{token}
	}

	var segments []string
	for i := n; i > 0; i = prev[i] {
		segments = append(segments, token[prev[i]:i])
	}
	for l, h := 0, len(segments)-1; l < h; l, h = l+1, h-1 {
		segments[l], segments[h] = segments[h], segments[l]
	}
	return segments
}

// wordCost charges dictionary words their log-rank and unknown spans a
// per-character penalty plus a flat per-piece penalty, so unknown text
// prefers to stay in one piece.
func (r *Restorer) wordCost(w string) float64 {
	if c, ok := r.costs[w]; ok {
		return c
	}
	return 9*float64(len(w)) + 20
}

// cleanForSegmentation strips everything but letters, digits, and slashes.
func cleanForSegmentation(token string) string {
	var b strings.Builder
	for _, c := range token {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '/' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// reintroducePunctuation walks the original token and interleaves the
// punctuation it carried between the cleaned segments.
func reintroducePunctuation(original string, segments []string) []string {
	var result []string
	pos := 0
	for _, seg := range segments {
		for pos < len(original) && !isWordByte(original[pos]) {
			result = append(result, string(original[pos]))
			pos++
		}
		result = append(result, seg)
		pos += len(seg)
	}
	for pos < len(original) {
		result = append(result, string(original[pos]))
		pos++
	}
	return result
}

func isWordByte(c byte) bool {
	return c == '/' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isASCII reports whether a token can be handled by the byte-oriented
// segmentation machinery. The dictionary is ASCII English, so nothing is
// lost by leaving other scripts alone.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// joinTokens reassembles tokens with bracket-aware spacing rules.
func joinTokens(tokens []string) string {
	var b strings.Builder
	for i, token := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			switch {
			case prev == "(" || prev == "[" || prev == "{":
				// no space after opening brackets
			case token == ")" || token == "]" || token == "}":
				// no space before closing brackets
			case strings.HasPrefix(token, "(") && !strings.HasSuffix(prev, " ") &&
				!strings.HasSuffix(prev, ".") && !strings.HasSuffix(prev, ",") &&
				!strings.HasSuffix(prev, "-") && !strings.HasSuffix(prev, "/"):
				b.WriteByte(' ')
			case !isPunctToken(token) && !strings.HasPrefix(token, "'") && !strings.HasPrefix(token, "\""):
				b.WriteByte(' ')
			}
		}
		b.WriteString(token)
	}
	return strings.Trim(strings.TrimSpace(b.String()), "`- ")
}

func isPunctToken(token string) bool {
	if len(token) != 1 {
		return false
	}
	return strings.ContainsAny(token, ".,!?;:')]}-/\"")
}

func isUpper(s string) bool {
	hasLetter := false
	for _, c := range s {
		if unicode.IsLetter(c) {
			hasLetter = true
			if !unicode.IsUpper(c) {
				return false
			}
		}
	}
	return hasLetter
}
