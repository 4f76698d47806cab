package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Operation statuses reported by the control plane. SENT and RUNNING are
// pending; SUCCEEDED and FAILED are terminal.
const (
	StatusSent      = "SENT"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Operation is a server-tracked asynchronous unit of work triggered by a
// mutating cluster call. The client only ever observes it.
type Operation struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	FeedbackData struct {
		Message string `json:"message"`
	} `json:"feedback_data"`
}

// Terminal reports whether the operation has reached a final state.
func (o Operation) Terminal() bool {
	return o.Status == StatusSucceeded || o.Status == StatusFailed
}

// pollInterval is the fixed delay between operation fetches.
const pollInterval = 10 * time.Second

// Poller blocks until a cluster operation reaches a terminal state,
// reporting status changes as they happen.
type Poller struct {
	client   *Client
	interval time.Duration
	out      io.Writer
	spin     bool
}

// NewPoller creates a poller over the given client, writing status lines to
// stderr and spinning only when stderr is a terminal.
func NewPoller(client *Client) *Poller {
	return &Poller{
		client:   client,
		interval: pollInterval,
		out:      os.Stderr,
		spin:     term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// WithInterval overrides the poll interval.
func (p *Poller) WithInterval(interval time.Duration) *Poller {
	p.interval = interval
	return p
}

// WithWriter redirects status lines and disables the spinner.
func (p *Poller) WithWriter(w io.Writer) *Poller {
	p.out = w
	p.spin = false
	return p
}

// Wait polls the most recent operation of the given type on the cluster
// until it terminates, printing each status change exactly once. It returns
// the terminal status, or "" when no matching operation was found. The
// caller re-fetches and re-renders the resource afterwards either way.
func (p *Poller) Wait(ctx context.Context, clusterID, opType string) string {
	var sp *spinner.Spinner
	if p.spin {
		sp = spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(p.out))
		sp.Start()
		defer sp.Stop()
	}

	var lastStatus, lastMessage string
	first := true

	for {
		op, found := p.fetch(ctx, clusterID, opType)
		if !found {
			p.println(sp, "failed retrieving operation status")
			return ""
		}

		switch op.Status {
		case StatusSucceeded:
			p.println(sp, fmt.Sprintf("operation %s succeeded", opType))
			return StatusSucceeded
		case StatusFailed:
			p.println(sp, fmt.Sprintf("operation %s failed; inspect the cluster for details", opType))
			return StatusFailed
		}

		// Only changed (status, message) pairs produce output.
		if first || op.Status != lastStatus || op.FeedbackData.Message != lastMessage {
			line := fmt.Sprintf("status: %s", op.Status)
			if op.FeedbackData.Message != "" {
				line += " - " + op.FeedbackData.Message
			}
			p.println(sp, line)
			lastStatus, lastMessage = op.Status, op.FeedbackData.Message
			first = false
		}

		select {
		case <-ctx.Done():
			return ""
		case <-time.After(p.interval):
		}
	}
}

// fetch retrieves the most recent operation of the given type.
func (p *Poller) fetch(ctx context.Context, clusterID, opType string) (Operation, bool) {
	params := url.Values{}
	params.Set("type", opType)
	params.Set("limit", "1")

	res := p.client.Get(ctx, fmt.Sprintf("/api/v1/clusters/%s/operations", clusterID), params)
	if !res.OK() || res.Data == nil {
		return Operation{}, false
	}

	// The list endpoint returns JSON-decoded maps; round-trip through the
	// encoder to get typed operations.
	raw, err := json.Marshal(res.Data)
	if err != nil {
		return Operation{}, false
	}
	var ops []Operation
	if err := json.Unmarshal(raw, &ops); err != nil || len(ops) == 0 {
		return Operation{}, false
	}
	return ops[0], true
}

// println writes one status line, pausing the spinner so output stays clean.
func (p *Poller) println(sp *spinner.Spinner, line string) {
	if sp != nil {
		sp.Stop()
		defer sp.Start()
	}
	fmt.Fprintln(p.out, line)
}
