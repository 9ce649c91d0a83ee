// Package pagination splits raw book text into fixed-size pages.
//
// Text is broken into lines on "\r\n", "\r" or "\n" and grouped into pages of
// a fixed number of lines. Lines on a page are rejoined with "\n", so splitting
// a page's content on "\n" yields exactly its source lines.
//
//	pages := pagination.Segment(text, pagination.DefaultLinesPerPage)
//	for _, p := range pages {
//	    fmt.Println(p.Number, p.LineCount)
//	}
//
// Everything in this package is pure and deterministic.
package pagination

import (
	"strings"
)

// DefaultLinesPerPage is the number of lines rendered on a reader page.
const DefaultLinesPerPage = 60

// LineSeparator joins the lines of a page.
const LineSeparator = "\n"

// Page is one numbered slice of a book's text. Number starts at 1.
type Page struct {
	Number    int
	Content   string
	LineCount int
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SplitLines normalizes line endings and splits text into lines.
// The empty string is a single empty line and a trailing line break yields a
// trailing empty line.
func SplitLines(text string) []string {
	return strings.Split(lineBreaks.Replace(text), "\n")
}

// PageCount returns ceil(lineCount / linesPerPage).
func PageCount(lineCount, linesPerPage int) int {
	if linesPerPage <= 0 {
		linesPerPage = DefaultLinesPerPage
	}
	if lineCount <= 0 {
		return 0
	}
	return (lineCount + linesPerPage - 1) / linesPerPage
}

// Segment splits text into pages of at most linesPerPage lines.
// A non-positive linesPerPage falls back to DefaultLinesPerPage.
// Page content is sanitized for storage.
func Segment(text string, linesPerPage int) []Page {
	if linesPerPage <= 0 {
		linesPerPage = DefaultLinesPerPage
	}

	lines := SplitLines(Sanitize(text))
	pages := make([]Page, 0, PageCount(len(lines), linesPerPage))

	for start := 0; start < len(lines); start += linesPerPage {
		end := start + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		chunk := lines[start:end]
		pages = append(pages, Page{
			Number:    len(pages) + 1,
			Content:   strings.Join(chunk, LineSeparator),
			LineCount: len(chunk),
		})
	}

	return pages
}

// Lines returns the source lines of a page.
func (p Page) Lines() []string {
	return strings.Split(p.Content, LineSeparator)
}

// Sanitize neutralizes characters that a text column cannot hold: NUL bytes
// are dropped and invalid UTF-8 sequences become U+FFFD.
func Sanitize(s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return strings.ToValidUTF8(s, "\uFFFD")
}
