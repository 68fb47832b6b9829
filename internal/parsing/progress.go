// Package parsing extracts download progress from yt-dlp output.
package parsing

import (
	"strconv"
	"strings"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/regex"
)

// Parse scans chunk for "[download] N%" markers and returns the last value found.
//
// Lines end at '\n' or '\r'. The trailing unterminated fragment is returned as
// leftover; a match inside it is still reported.
func Parse(chunk string) (percent float64, ok bool, leftover string) {
	lines, leftover := splitLines(chunk)
	for _, line := range lines {
		if p, found := lastMatch(line); found {
			percent, ok = p, true
		}
	}
	if p, found := lastMatch(leftover); found {
		percent, ok = p, true
	}
	return percent, ok, leftover
}

// Scanner parses a stream of output chunks, carrying partial lines between reads.
type Scanner struct {
	pending  string
	tail     []string
	tailSize int
}

// NewScanner returns a Scanner that remembers the last tailSize non-progress lines.
func NewScanner(tailSize int) *Scanner {
	if tailSize < 0 {
		tailSize = 0
	}
	return &Scanner{tailSize: tailSize}
}

// Feed consumes a chunk and returns the latest progress value it contained.
func (s *Scanner) Feed(chunk []byte) (float64, bool) {
	text := s.pending + string(chunk)
	lines, leftover := splitLines(text)

	var (
		percent float64
		ok      bool
	)
	for _, line := range lines {
		if p, found := lastMatch(line); found {
			percent, ok = p, true
			continue
		}
		s.remember(line)
	}
	if p, found := lastMatch(leftover); found {
		percent, ok = p, true
	}

	if len(leftover) > consts.MaxPendingOutput {
		leftover = leftover[len(leftover)-consts.MaxPendingOutput:]
	}
	s.pending = leftover
	return percent, ok
}

// Flush treats any pending fragment as a complete line.
func (s *Scanner) Flush() (float64, bool) {
	rest := s.pending
	s.pending = ""
	if rest == "" {
		return 0, false
	}
	if p, found := lastMatch(rest); found {
		return p, true
	}
	s.remember(rest)
	return 0, false
}

// Tail returns the most recent non-progress output lines, oldest first.
func (s *Scanner) Tail() []string {
	out := make([]string, len(s.tail))
	copy(out, s.tail)
	return out
}

func (s *Scanner) remember(line string) {
	line = strings.TrimSpace(regex.AnsiEscape().ReplaceAllString(line, ""))
	if line == "" || s.tailSize == 0 {
		return
	}
	if len(s.tail) == s.tailSize {
		s.tail = append(s.tail[:0], s.tail[1:]...)
	}
	s.tail = append(s.tail, line)
}

// splitLines splits on '\n' and '\r', returning complete lines and the unterminated rest.
func splitLines(text string) ([]string, string) {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' || text[i] == '\r' {
			if i > start {
				lines = append(lines, text[start:i])
			}
			start = i + 1
		}
	}
	return lines, text[start:]
}

func lastMatch(line string) (float64, bool) {
	matches := regex.DownloadProgress().FindAllStringSubmatch(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		p, err := strconv.ParseFloat(matches[i][1], 64)
		if err != nil {
			continue
		}
		return clamp(p), true
	}
	return 0, false
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
