package terminal

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/wricardo/merge2048/game/engine"
)

// ctrlC arrives as a plain byte once the terminal is in raw mode
const ctrlC = 0x03

// keyReader yields one lower-cased key token per call
type keyReader interface {
	ReadKey() (string, error)
}

// lineReader reads one token per non-blank input line
type lineReader struct {
	scanner *bufio.Scanner
}

func (r *lineReader) ReadKey() (string, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		return strings.ToLower(line), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// rawReader reads single key presses from a terminal in raw mode
type rawReader struct {
	r *bufio.Reader
}

func (r *rawReader) ReadKey() (string, error) {
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case ctrlC:
			return KeyQuit, nil
		case '\r', '\n', ' ', '\t':
			continue
		}
		return strings.ToLower(string(rune(b))), nil
	}
}

// crlfWriter translates newlines for a terminal in raw mode
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// openKeys returns a key reader for in. A terminal is switched to raw mode
// so single key presses are read without Enter; restore undoes that.
func openKeys(in io.Reader, out io.Writer) (keyReader, io.Writer, func(), error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, nil, err
		}
		restore := func() { _ = term.Restore(fd, state) }
		return &rawReader{r: bufio.NewReader(f)}, &crlfWriter{w: out}, restore, nil
	}
	return &lineReader{scanner: bufio.NewScanner(in)}, out, func() {}, nil
}

// Keys
const (
	KeyUp    = "w"
	KeyLeft  = "a"
	KeyDown  = "s"
	KeyRight = "d"
	KeyQuit  = "q"
)

// ParseKey maps a key token to a direction. ok is false for anything that is
// not one of w, a, s or d.
func ParseKey(key string) (dir engine.Direction, ok bool) {
	switch key {
	case KeyUp:
		return engine.Up, true
	case KeyLeft:
		return engine.Left, true
	case KeyDown:
		return engine.Down, true
	case KeyRight:
		return engine.Right, true
	}
	return 0, false
}
