// Package textclean strips markup and mail noise from raw feedback text.
//
// Pass order matters in two places: CSS is removed before generic tag
// stripping, and email addresses are scrubbed after header lines are dropped
// so the header patterns still see their "From:" prefixes.
package textclean

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// EmailPlaceholder replaces scrubbed email addresses.
const EmailPlaceholder = "[email]"

var (
	styleBlock   = regexp.MustCompile(`(?is)<(style|script)[^>]*>.*?</(style|script)\s*>`)
	cssRule      = regexp.MustCompile(`(?m)(^|[}>])[ \t]*[#.@]?[A-Za-z][\w\-.#:>*\[\]=,"' ]{0,60}\{[^{}]*:[^{}]*\}`)
	cssFragment  = regexp.MustCompile(`(?i)\b(?:mso-[\w-]+|font(?:-[\w]+)?|color|margin(?:-[\w]+)?|padding(?:-[\w]+)?|background(?:-[\w]+)?|border(?:-[\w]+)?|line-height|text-align|text-decoration|width|height|display)\s*:\s*[^;{}\n<>]{1,80};`)
	strayBraces  = regexp.MustCompile(`[{}]`)
	headerLine   = regexp.MustCompile(`(?im)^[ \t>]*(?:from|to|cc|bcc|subject|sent|date|reply-to|importance)[ \t]*:.*$`)
	completeTag  = regexp.MustCompile(`^<[A-Za-z/!?][^<>]*>`)
	angleEmail   = regexp.MustCompile(`<([A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)+)>`)
	emailAddress = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)+`)
	sigDelimiter = regexp.MustCompile(`(?ms)^--[ \t]*$.*`)
	sigSignoff   = regexp.MustCompile(`(?is)\n[ \t]*(?:thanks|thank you|many thanks|regards|best regards|kind regards|best|cheers|sincerely)[ \t]*[,!.]?[ \t]*\n[^\n]{0,40}\s*\z`)
	sentFrom     = regexp.MustCompile(`(?im)^[ \t]*sent from my [^\n]*$`)

	mdImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	mdBold       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdBoldUnder  = regexp.MustCompile(`__([^_]+)__`)
	mdItalic     = regexp.MustCompile(`\*([^*\n]+)\*`)
	mdItalUnder  = regexp.MustCompile(`(^|[\s(])_([^_\n]+)_`)
	mdStrike     = regexp.MustCompile(`~~([^~]+)~~`)
	mdCodeFence  = regexp.MustCompile("(?m)^[ \t]*```[\\w-]*[ \t]*$")
	mdInlineCode = regexp.MustCompile("`([^`\n]+)`")
	mdHeading    = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	mdQuote      = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	mdRule       = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,}|_{3,})[ \t]*$`)
)

// Clean removes CSS, HTML, email artifacts and markdown from text and
// collapses whitespace. Paragraphs are kept on separate lines with no blank
// lines between them. Empty input yields "".
func Clean(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	text = styleBlock.ReplaceAllString(text, " ")
	for i := 0; i < 3 && cssRule.MatchString(text); i++ {
		text = cssRule.ReplaceAllString(text, "$1 ")
	}
	text = cssFragment.ReplaceAllString(text, " ")
	text = angleEmail.ReplaceAllString(text, "$1")
	text = StripTags(text)
	text = strayBraces.ReplaceAllString(text, " ")

	text = headerLine.ReplaceAllString(text, "")
	text = sentFrom.ReplaceAllString(text, "")
	text = sigDelimiter.ReplaceAllString(text, "")
	text = sigSignoff.ReplaceAllString(text, "")
	text = emailAddress.ReplaceAllString(text, EmailPlaceholder)

	text = StripMarkdown(text)
	return CollapseWhitespace(text)
}

// StripTags removes HTML tags and decodes entities. Block-level elements
// become line breaks; script and style bodies are dropped. A '<' that does
// not open a complete tag is kept as text, so "rows<limit" survives.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(escapeStrayLT(s)))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch a {
			case atom.Script, atom.Style, atom.Head:
				skip++
			default:
				if isBlock(a) {
					b.WriteByte('\n')
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch a {
			case atom.Script, atom.Style, atom.Head:
				if skip > 0 {
					skip--
				}
			default:
				if isBlock(a) {
					b.WriteByte('\n')
				}
			}
		}
	}
}

// escapeStrayLT rewrites every '<' that does not start a closed tag as
// "&lt;". The tokenizer would otherwise swallow the rest of the input as an
// unterminated tag.
func escapeStrayLT(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		j := strings.IndexByte(s[i:], '<')
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i : i+j])
		i += j
		if completeTag.MatchString(s[i:]) {
			b.WriteByte('<')
		} else {
			b.WriteString("&lt;")
		}
		i++
	}
	return b.String()
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Br, atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Tr, atom.Table,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre, atom.Hr:
		return true
	}
	return false
}

// StripMarkdown removes link, image, emphasis, heading and code syntax,
// keeping the visible text.
func StripMarkdown(s string) string {
	s = mdImage.ReplaceAllString(s, "$1")
	s = mdLink.ReplaceAllString(s, "$1")
	s = mdCodeFence.ReplaceAllString(s, "")
	s = mdInlineCode.ReplaceAllString(s, "$1")
	s = mdBold.ReplaceAllString(s, "$1")
	s = mdBoldUnder.ReplaceAllString(s, "$1")
	s = mdStrike.ReplaceAllString(s, "$1")
	s = mdItalic.ReplaceAllString(s, "$1")
	s = mdItalUnder.ReplaceAllString(s, "$1$2")
	s = mdHeading.ReplaceAllString(s, "")
	s = mdQuote.ReplaceAllString(s, "")
	s = mdRule.ReplaceAllString(s, "")
	return s
}

// CollapseWhitespace squeezes runs of spaces inside each line and drops blank
// lines. Unicode spaces such as NBSP count as whitespace.
func CollapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n")
}

// Normalize lowercases, collapses whitespace and then removes every rune
// that is neither a word character nor whitespace. It is the canonical form
// used for hashing and similarity.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}
