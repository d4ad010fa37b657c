// Package markdown provides pure text normalization for extracted document
// content. Normalize is idempotent: running it on its own output is a no-op.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	urlRe   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	linkRe  = regexp.MustCompile(`\[[^]]+]\([^)]+\)`)
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	blankLinesRe   = regexp.MustCompile(`\n\s*\n`)
	headingRe      = regexp.MustCompile(`(#+)\s*`)
	punctuationRe  = regexp.MustCompile(`\s*([.,;:!?])\s*`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
	nonPrintableRe = regexp.MustCompile(`[^\x20-\x7E]`)
	listItemRe     = regexp.MustCompile(`\n([-*+])\s+`)
	mdLinkRe       = regexp.MustCompile(`\[([^]]+)]\((\s*http[^)]+)\)`)
	inlineCodeRe   = regexp.MustCompile("`([^`]+)`")
	codeBlockRe    = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	trailingWSRe   = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Normalize cleans up extracted Markdown while preserving its structure:
// it caps blank-line runs, fixes heading and punctuation spacing, rejoins
// soft-wrapped lines, and strips non-printable characters. URLs, Markdown
// links, and email addresses are protected by placeholders so none of the
// rewriting touches them.
func Normalize(text string) string {
	urls := urlRe.FindAllString(text, -1)
	for i, url := range urls {
		text = strings.ReplaceAll(text, url, fmt.Sprintf("__URL_PLACEHOLDER_%d__", i))
	}

	links := linkRe.FindAllString(text, -1)
	for i, link := range links {
		text = strings.ReplaceAll(text, link, fmt.Sprintf("__LINK_PLACEHOLDER_%d__", i))
	}

	emails := emailRe.FindAllString(text, -1)
	for i, email := range emails {
		text = strings.ReplaceAll(text, email, fmt.Sprintf("__EMAIL_PLACEHOLDER_%d__", i))
	}

	// Cap runs of blank lines at one empty line between blocks.
	text = blankLinesRe.ReplaceAllString(strings.TrimSpace(text), "\n\n")

	// Exactly one space between heading markers and heading text.
	text = headingRe.ReplaceAllString(text, "$1 ")

	// Rejoin sentences that were soft-wrapped mid-line. A newline is kept
	// only when the previous line ends with a period or when it starts a
	// blank line. Applied unconditionally to all input for compatibility
	// with existing stored content.
	text = joinSoftWraps(text)

	// Single space after punctuation, then collapse whitespace runs.
	text = punctuationRe.ReplaceAllString(text, "$1 ")
	text = multiSpaceRe.ReplaceAllString(text, " ")

	// Keep only printable ASCII.
	text = nonPrintableRe.ReplaceAllString(text, "")

	text = listItemRe.ReplaceAllString(text, "\n$1 ")

	text = mdLinkRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := mdLinkRe.FindStringSubmatch(m)
		return fmt.Sprintf("[%s](%s)", strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]))
	})

	text = inlineCodeRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := inlineCodeRe.FindStringSubmatch(m)
		return fmt.Sprintf("`%s`", strings.TrimSpace(parts[1]))
	})
	text = codeBlockRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := codeBlockRe.FindStringSubmatch(m)
		return fmt.Sprintf("```\n%s\n```", strings.TrimSpace(parts[1]))
	})

	text = trailingWSRe.ReplaceAllString(text, "")

	for i, url := range urls {
		text = strings.ReplaceAll(text, fmt.Sprintf("__URL_PLACEHOLDER_%d__", i), url)
	}
	for i, link := range links {
		text = strings.ReplaceAll(text, fmt.Sprintf("__LINK_PLACEHOLDER_%d__", i), link)
	}
	for i, email := range emails {
		text = strings.ReplaceAll(text, fmt.Sprintf("__EMAIL_PLACEHOLDER_%d__", i), email)
	}

	return text
}

// joinSoftWraps replaces every newline that is not preceded by a period and
// not followed by another newline with a single space.
func joinSoftWraps(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' {
			prevIsPeriod := i > 0 && s[i-1] == '.'
			nextIsNewline := i+1 < len(s) && s[i+1] == '\n'
			if !prevIsPeriod && !nextIsNewline {
				b.WriteByte(' ')
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
