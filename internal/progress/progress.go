package progress

/*
 * AWS SSO Profiles
 * Copyright (c) 2021-2025 Aaron Turner  <synfinatic at gmail dot com>
 *
 * This program is free software: you can redistribute it
 * and/or modify it under the terms of the GNU General Public License as
 * published by the Free Software Foundation, either version 3 of the
 * License, or with the authors permission any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Tracker renders task progress on stderr.  All updates funnel through a
// single goroutine which owns the terminal, so workers may call Advance()
// concurrently without ever touching shared rendering state.
type Tracker struct {
	w      io.Writer
	tty    bool
	msgs   chan message
	closed chan struct{}
}

// Task is one line of progress.  total == 0 means indeterminate.
// Its counters are only ever touched by the Tracker goroutine.
type Task struct {
	tr          *Tracker
	description string
	total       int
	completed   int
	finished    bool
}

type msgKind int

const (
	msgStart msgKind = iota
	msgAdvance
	msgDone
)

type message struct {
	kind msgKind
	task *Task
}

// NewTracker creates a Tracker rendering to w and starts its goroutine.
// A bar is only drawn when w is a terminal; otherwise we fall back to
// plain status lines.
func NewTracker(w io.Writer) *Tracker {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd())
	}

	t := &Tracker{
		w:      w,
		tty:    tty,
		msgs:   make(chan message, 64),
		closed: make(chan struct{}),
	}
	go t.run()
	return t
}

// NewStderrTracker is the Tracker everyone outside of tests wants
func NewStderrTracker() *Tracker {
	return NewTracker(os.Stderr)
}

// Start registers a new task with the Tracker and renders it.  A nil
// Tracker is allowed and does nothing, which keeps callers honest in
// tests.
func (t *Tracker) Start(description string, total int) *Task {
	if t == nil {
		return nil
	}
	task := &Task{
		tr:          t,
		description: description,
		total:       total,
	}
	t.msgs <- message{msgStart, task}
	return task
}

// Close shuts down the Tracker goroutine and waits for it to drain
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	close(t.msgs)
	<-t.closed
}

// Advance bumps the task completion count by one.  Safe to call from
// multiple goroutines.
func (p *Task) Advance() {
	if p == nil {
		return
	}
	p.tr.msgs <- message{msgAdvance, p}
}

// Done marks the task complete regardless of its count
func (p *Task) Done() {
	if p == nil {
		return
	}
	p.tr.msgs <- message{msgDone, p}
}

// Completed returns the number of completed steps.  Only valid after the
// Tracker has been closed.
func (p *Task) Completed() int {
	if p == nil {
		return 0
	}
	return p.completed
}

// run is the owning goroutine: it serializes every update and is the
// only code that writes to t.w
func (t *Tracker) run() {
	defer close(t.closed)

	for m := range t.msgs {
		task := m.task
		switch m.kind {
		case msgStart:
			t.render(task)
		case msgAdvance:
			task.completed++
			if task.total > 0 && task.completed >= task.total {
				task.finished = true
			}
			t.render(task)
		case msgDone:
			if task.finished {
				continue // only report completion once
			}
			task.finished = true
			if task.total > 0 {
				task.completed = task.total
			}
			t.render(task)
		}
	}
}

func (t *Tracker) render(task *Task) {
	if !t.tty {
		// no terminal to repaint; just mark the edges
		switch {
		case task.finished:
			fmt.Fprintf(t.w, "%s done\n", task.description)
		case task.completed == 0:
			fmt.Fprintf(t.w, "%s\n", task.description)
		}
		return
	}

	switch {
	case task.finished && task.total > 0:
		fmt.Fprintf(t.w, "\r%-40s %d/%d\n", task.description, task.completed, task.total)
	case task.finished:
		fmt.Fprintf(t.w, "\r%-40s done\n", task.description)
	case task.total > 0:
		fmt.Fprintf(t.w, "\r%-40s %d/%d", task.description, task.completed, task.total)
	default:
		fmt.Fprintf(t.w, "\r%-40s ...", task.description)
	}
}
