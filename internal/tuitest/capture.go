package tuitest

import (
	"bytes"
	"io"
	"regexp"
	"strings"
)

// Frame is one normalized terminal render.
type Frame struct {
	Seq   int
	ANSI  string
	Plain string
}

var (
	// Bubbletea repaints begin with an erase-display sequence; splitting on
	// it recovers frame boundaries.
	eraseDisplay = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSequence  = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSequence  = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

func parseFrames(raw []byte) []Frame {
	cleaned := strings.ReplaceAll(string(raw), "\r", "")
	segments := eraseDisplay.Split(cleaned, -1)
	frames := make([]Frame, 0, len(segments))
	for _, segment := range segments {
		segment = strings.Trim(segment, "\x00")
		segment = strings.TrimPrefix(segment, "\x1b[H")
		if segment == "" {
			continue
		}
		plain := stripANSI(segment)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{
			Seq:   len(frames),
			ANSI:  segment,
			Plain: trimTrailingSpace(plain),
		})
	}
	if len(frames) == 0 && len(cleaned) > 0 {
		frames = append(frames, Frame{ANSI: cleaned, Plain: trimTrailingSpace(stripANSI(cleaned))})
	}
	return frames
}

func stripANSI(s string) string {
	s = oscSequence.ReplaceAllString(s, "")
	s = csiSequence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\x0f", "")
	s = strings.ReplaceAll(s, "\x0e", "")
	return s
}

func trimTrailingSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// terminalQuery pairs a capability query the program may emit with the reply
// a plain xterm would send back.
type terminalQuery struct {
	probe []byte
	reply []byte
}

var terminalQueries = []terminalQuery{
	// Cursor position report.
	{probe: []byte("\x1b[6n"), reply: []byte("\x1b[1;1R")},
	// Foreground and background color queries, in both terminator forms.
	{probe: []byte("\x1b]10;?\x07"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{probe: []byte("\x1b]10;?\x1b\\"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{probe: []byte("\x1b]11;?\x07"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{probe: []byte("\x1b]11;?\x1b\\"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// autoAnswer watches the program's output for terminal capability queries and
// answers them the way a real terminal would, so the program doesn't stall
// waiting for responses the test host never sends.
type autoAnswer struct {
	w   io.Writer
	buf []byte
}

func newAutoAnswer(w io.Writer) *autoAnswer {
	return &autoAnswer{w: w, buf: make([]byte, 0, 128)}
}

func (a *autoAnswer) Process(chunk []byte) {
	a.buf = append(a.buf, chunk...)
	for a.answerNext() {
	}
	// Keep a small tail so queries split across reads still match.
	if len(a.buf) > 256 {
		a.buf = a.buf[len(a.buf)-64:]
	}
}

func (a *autoAnswer) answerNext() bool {
	for _, query := range terminalQueries {
		idx := bytes.Index(a.buf, query.probe)
		if idx < 0 {
			continue
		}
		a.buf = a.buf[idx+len(query.probe):]
		_, _ = a.w.Write(query.reply)
		return true
	}
	return false
}
