/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package viewer

import (
	"context"
	"fmt"
	"sync"

	"github.com/humaidq/labwave/client"
	"github.com/humaidq/labwave/report"
)

// State is the upload state of a page.
type State int

// Page states. A page moves Idle → Loading → Rendered or ErrorShown, and
// back to Idle on reset.
const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StateErrorShown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateErrorShown:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Submitter uploads a report for a mode.
type Submitter interface {
	Submit(ctx context.Context, file client.File, mode report.Mode) (report.Result, error)
}

// Ticket identifies one submission on a page.
type Ticket uint64

// Outcome is what became of a submission.
type Outcome int

// Submission outcomes.
const (
	// OutcomeWritten means the submission wrote the page.
	OutcomeWritten Outcome = iota
	// OutcomeSuperseded means a later submission started first.
	OutcomeSuperseded
	// OutcomeCancelled means the page was reset while it was in flight.
	OutcomeCancelled
)

// Page is the result slot of one mode in a viewer session. Only the most
// recently started submission may write the slot; a reset invalidates every
// submission in flight.
type Page struct {
	mode report.Mode

	mu       sync.Mutex
	state    State
	seq      Ticket
	begun    Ticket
	fileName string
	result   *report.Result
	rendered *Rendered
	errMsg   string
	metrics  []Metric
}

// NewPage creates an idle page for mode.
func NewPage(mode report.Mode) *Page {
	return &Page{mode: mode, metrics: EmptyMetrics(mode)}
}

// Mode returns the page mode.
func (p *Page) Mode() report.Mode {
	return p.mode
}

// Begin starts a submission and moves the page to Loading.
func (p *Page) Begin(fileName string) Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.begun = p.seq
	p.state = StateLoading
	p.fileName = fileName
	p.errMsg = ""

	return p.seq
}

// Finish records the outcome of a submission. It returns false and leaves
// the page untouched when a later submission or a reset superseded t.
func (p *Page) Finish(t Ticket, res report.Result, err error) bool {
	return p.finish(t, res, err) == OutcomeWritten
}

func (p *Page) finish(t Ticket, res report.Result, err error) Outcome {
	var rendered *Rendered

	if err == nil {
		if res.Mode != p.mode {
			err = fmt.Errorf("%w: got %s data on the %s page", ErrInvalidResult, res.Mode, p.mode)
		} else {
			rendered, err = Render(res)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if t != p.seq || p.state != StateLoading {
		if p.begun > t {
			return OutcomeSuperseded
		}

		return OutcomeCancelled
	}

	p.teardown()

	if err != nil {
		p.state = StateErrorShown
		p.errMsg = err.Error()

		return OutcomeWritten
	}

	p.state = StateRendered
	p.result = &res
	p.rendered = rendered
	p.metrics = rendered.Metrics

	return OutcomeWritten
}

// Upload submits file through s and records the result on the page.
func (p *Page) Upload(ctx context.Context, s Submitter, file client.File) Outcome {
	t := p.Begin(file.Name)
	res, err := s.Submit(ctx, file, p.mode)

	return p.finish(t, res, err)
}

// Show renders a result that is already available, such as a stored report.
func (p *Page) Show(res report.Result) error {
	t := p.Begin("")
	if !p.Finish(t, res, nil) {
		return nil
	}

	if msg := p.Snapshot().Error; msg != "" {
		return fmt.Errorf("failed to show report: %s", msg)
	}

	return nil
}

// Reset returns the page to Idle, drops the result and charts and clears the
// metrics.
func (p *Page) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.state = StateIdle
	p.fileName = ""
	p.errMsg = ""
	p.teardown()
}

// teardown drops the current result and chart instances. Callers hold mu.
func (p *Page) teardown() {
	p.result = nil
	p.rendered = nil
	p.metrics = EmptyMetrics(p.mode)
}

// Snapshot is a consistent copy of a page for display.
type Snapshot struct {
	Mode     report.Mode
	State    State
	FileName string
	Error    string
	Result   *report.Result
	Rendered *Rendered
	Metrics  []Metric
}

// Loading reports whether a submission is in flight.
func (s Snapshot) Loading() bool { return s.State == StateLoading }

// Failed reports whether the error panel is shown.
func (s Snapshot) Failed() bool { return s.State == StateErrorShown }

// Snapshot returns the current page contents.
func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Snapshot{
		Mode:     p.mode,
		State:    p.state,
		FileName: p.fileName,
		Error:    p.errMsg,
		Result:   p.result,
		Rendered: p.rendered,
		Metrics:  append([]Metric(nil), p.metrics...),
	}
}

// LiveCharts returns the number of chart instances held by the page.
func (p *Page) LiveCharts() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rendered == nil {
		return 0
	}

	return len(p.rendered.Charts)
}
