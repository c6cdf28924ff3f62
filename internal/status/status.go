// Package status provides the live status indicators used in watch mode.
package status

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/ogulcanaydogan/graphql-cli/internal/watch"
)

type Spinner struct {
	s   *spinner.Spinner
	out io.Writer

	mu   sync.Mutex
	text string
}

// NewSpinner animates on w; permanent lines go to out.
func NewSpinner(w, out io.Writer) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	return &Spinner{s: s, out: out}
}

func (s *Spinner) Start() { s.s.Start() }

func (s *Spinner) Stop() { s.s.Stop() }

func (s *Spinner) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	s.s.Lock()
	s.s.Suffix = " " + text
	s.s.Unlock()
}

func (s *Spinner) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *Spinner) PrintLine(line string) {
	fmt.Fprintln(s.out, line)
}

// Lines reports status as plain lines, for output that is not a terminal.
type Lines struct {
	out io.Writer

	mu   sync.Mutex
	text string
}

func NewLines(out io.Writer) *Lines {
	return &Lines{out: out}
}

func (l *Lines) Start() {}

func (l *Lines) Stop() {}

func (l *Lines) SetText(text string) {
	l.mu.Lock()
	l.text = text
	l.mu.Unlock()
	fmt.Fprintln(l.out, text)
}

func (l *Lines) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// PrintLine skips a line equal to the status just printed.
func (l *Lines) PrintLine(line string) {
	l.mu.Lock()
	dup := line == l.text
	l.mu.Unlock()
	if dup {
		return
	}
	fmt.Fprintln(l.out, line)
}

func New(stderr *os.File, out io.Writer) watch.Reporter {
	if term.IsTerminal(int(stderr.Fd())) {
		return NewSpinner(stderr, out)
	}
	return NewLines(out)
}
