package loom

import (
	"fmt"
	"strconv"
	"strings"
)

// Bookmark is a named byte position saved across sessions.
type Bookmark struct {
	Name string
	Byte int64
}

// Session holds the state persisted between editing sessions for one
// buffer: bookmarks and recent search patterns. It round-trips through an
// INI-like tagged-section text format, the same style the library uses for
// its other small hand-rolled text formats.
//
// Sections this version does not know about are kept verbatim, line for
// line (trailing blank lines aside, since Render writes its own blank
// separator line), rather than dropped, so a session file written by a newer version
// (with, say, a future [folds] section) survives being loaded and resaved
// by this one untouched.
type Session struct {
	Bookmarks     []Bookmark
	SearchHistory []string

	unknown []rawSection
}

type rawSection struct {
	name  string
	lines []string
}

// ParseSession parses a session file. Malformed lines within a known
// section are skipped rather than failing the whole parse, matching the
// library's other lenient text-format readers.
func ParseSession(data []byte) (*Session, error) {
	s := &Session{}
	var current string
	var unknownLines []string

	flushUnknown := func() {
		if current != "" && current != "bookmarks" && current != "search_history" {
			for len(unknownLines) > 0 && strings.TrimSpace(unknownLines[len(unknownLines)-1]) == "" {
				unknownLines = unknownLines[:len(unknownLines)-1]
			}
			s.unknown = append(s.unknown, rawSection{name: current, lines: unknownLines})
		}
		unknownLines = nil
	}

	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "# ") {
			if current != "" && current != "bookmarks" && current != "search_history" {
				unknownLines = append(unknownLines, line)
			}
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			flushUnknown()
			current = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			continue
		}
		switch current {
		case "bookmarks":
			name, val, ok := strings.Cut(trimmed, "=")
			if !ok {
				continue
			}
			b, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				continue
			}
			s.Bookmarks = append(s.Bookmarks, Bookmark{Name: strings.TrimSpace(name), Byte: b})
		case "search_history":
			s.SearchHistory = append(s.SearchHistory, trimmed)
		default:
			unknownLines = append(unknownLines, line)
		}
	}
	flushUnknown()
	return s, nil
}

// Render serializes the session back to the tagged-section text format,
// re-emitting every section this version did not recognize exactly as it
// was read.
func (s *Session) Render() []byte {
	var b strings.Builder
	b.WriteString("[bookmarks]\n")
	for _, bm := range s.Bookmarks {
		fmt.Fprintf(&b, "%s=%d\n", bm.Name, bm.Byte)
	}
	b.WriteString("\n[search_history]\n")
	for _, p := range s.SearchHistory {
		b.WriteString(p)
		b.WriteString("\n")
	}
	for _, sec := range s.unknown {
		fmt.Fprintf(&b, "\n[%s]\n", sec.name)
		for _, l := range sec.lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

// AddBookmark records or updates a named bookmark.
func (s *Session) AddBookmark(name string, at int64) {
	for i, b := range s.Bookmarks {
		if b.Name == name {
			s.Bookmarks[i].Byte = at
			return
		}
	}
	s.Bookmarks = append(s.Bookmarks, Bookmark{Name: name, Byte: at})
}

// RemoveBookmark deletes a named bookmark, if present.
func (s *Session) RemoveBookmark(name string) {
	out := s.Bookmarks[:0]
	for _, b := range s.Bookmarks {
		if b.Name != name {
			out = append(out, b)
		}
	}
	s.Bookmarks = out
}

// RecordSearch prepends pattern to the search history, capping it at max
// entries and deduplicating an immediate repeat of the most recent search.
func (s *Session) RecordSearch(pattern string, max int) {
	if len(s.SearchHistory) > 0 && s.SearchHistory[0] == pattern {
		return
	}
	s.SearchHistory = append([]string{pattern}, s.SearchHistory...)
	if max > 0 && len(s.SearchHistory) > max {
		s.SearchHistory = s.SearchHistory[:max]
	}
}
