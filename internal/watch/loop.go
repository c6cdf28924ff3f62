// Package watch repeats a schema update cycle on a fixed interval and keeps
// a live status line current between cycles.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/graphql-cli/internal/schemasync"
)

const DefaultInterval = 10 * time.Second

const (
	updatedText   = "Updated!"
	noChangesText = "No changes."
)

type Reporter interface {
	Start()
	Stop()
	SetText(text string)
	Text() string
	// PrintLine writes a permanent line; callers stop the indicator first.
	PrintLine(line string)
}

type CycleFunc func(ctx context.Context, log func(string)) (schemasync.Outcome, error)

type SleepFunc func(ctx context.Context, d time.Duration) error

type Loop struct {
	Reporter Reporter
	Cycle    CycleFunc
	Interval time.Duration
	Sleep    SleepFunc
}

// Run blocks until a cycle fails or ctx is done. Cycle errors are returned
// as-is; there is no retry.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	sleep := l.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	r := l.Reporter

	r.Start()
	defer r.Stop()

	for {
		outcome, err := l.Cycle(ctx, r.SetText)
		if err != nil {
			return err
		}
		text := noChangesText
		if outcome.Changed() {
			r.Stop()
			r.PrintLine(r.Text())
			r.Start()
			text = updatedText
		}
		r.SetText(fmt.Sprintf("%s Next update in %s.", text, formatInterval(interval)))

		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// formatInterval renders whole seconds as "90s" rather than "1m30s".
func formatInterval(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return d.String()
}
