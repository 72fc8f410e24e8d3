// internal/wizard/wizard.go
//
// The wizard controller: a state machine over the six fixed signup
// stages. Navigation never touches the record; only explicit field
// mutations and the terminal submission do. The controller is safe to
// drive from the UI goroutine while submissions and eager attachments
// run in the background.

package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/recruiteer/onboard/internal/profile"
)

// Stage indexes one screen of the signup flow.
type Stage int

const (
	StageCredentials Stage = iota
	StageOverview
	StagePortfolio
	StageNetwork
	StageCV
	StageAssistant
)

// StageCount is the number of wizard stages.
const StageCount = 6

var stageTitles = [StageCount]string{
	"Credentials",
	"Overview",
	"Portfolio",
	"Network",
	"CV",
	"Assistant",
}

// Title returns the display name for the stage.
func (s Stage) Title() string {
	if s < 0 || s >= StageCount {
		return "Unknown"
	}
	return stageTitles[s]
}

func (s Stage) String() string { return s.Title() }

// requiredFields gates Advance per stage. Only the credentials stage
// declares required fields; every later stage can be skipped through and
// left for the backend to judge at submission.
var requiredFields = map[Stage][]string{
	StageCredentials: {
		profile.FieldFullName,
		profile.FieldDateOfBirth,
		profile.FieldEmail,
		profile.FieldPassword,
		profile.FieldMobileNumber,
	},
}

var (
	// ErrNotTerminal is returned when Finalize is called before the
	// last stage.
	ErrNotTerminal = errors.New("wizard: not at the terminal stage")

	// ErrSubmitInFlight is the single-flight latch: a second Finalize
	// while one is running is refused, not queued.
	ErrSubmitInFlight = errors.New("wizard: submission already in flight")

	// ErrAttachInFlight refuses Finalize while an eager attachment is
	// still running, so the submission never races a link call.
	ErrAttachInFlight = errors.New("wizard: attachment still in flight")
)

// Submitter sends the terminal multipart payload to the backend.
type Submitter interface {
	Signup(ctx context.Context, contentType string, body io.Reader) error
}

// Controller holds the wizard state.
type Controller struct {
	mu        sync.Mutex
	stage     Stage
	record    *profile.Record
	submitter Submitter
	inFlight  bool
	attaching int
	lastErr   string
}

// New builds a controller at the first stage with a fresh record.
func New(submitter Submitter) *Controller {
	return &Controller{
		record:    profile.NewRecord(),
		submitter: submitter,
	}
}

// Stage reports the current stage index.
func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Record exposes the aggregate being edited. Field mutations go through
// the record's own methods; the controller only reads it at submission.
func (c *Controller) Record() *profile.Record {
	return c.record
}

// InFlight reports whether a terminal submission is running.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastError returns the most recent failure line, empty when clear.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SetError records a failure line on behalf of the UI, e.g. from an
// eager attachment that completed in the background.
func (c *Controller) SetError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = msg
}

// ClearError blanks the failure line.
func (c *Controller) ClearError() {
	c.SetError("")
}

// Advance moves to the next stage and reports whether the pointer moved.
// A stage with required fields refuses to advance until they are all
// filled; the failed gate is explained in LastError. Advance at the
// terminal stage does not move; the terminal action is Finalize.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage >= StageCount-1 {
		return false
	}
	if field, ok := c.missingRequired(); !ok {
		c.lastErr = fmt.Sprintf("%s is required", field)
		return false
	}
	c.stage++
	c.lastErr = ""
	return true
}

// Retreat moves to the previous stage; at the first stage it is a no-op.
// Retreating never discards entered data.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage == 0 {
		return false
	}
	c.stage--
	c.lastErr = ""
	return true
}

func (c *Controller) missingRequired() (string, bool) {
	for _, field := range requiredFields[c.stage] {
		if c.record.Get(field) == "" {
			return field, false
		}
	}
	return "", true
}

// BeginAttach marks an eager attachment as running. Finalize is refused
// until the matching EndAttach.
func (c *Controller) BeginAttach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attaching++
}

// EndAttach marks an eager attachment as finished.
func (c *Controller) EndAttach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attaching > 0 {
		c.attaching--
	}
}

// Finalize submits the full record from the terminal stage. The payload
// is snapshotted before any network I/O, so concurrent reads of the
// controller never block on the backend. On success the record, stage
// pointer and error line reset; on failure everything is preserved so
// the user can retry or edit.
func (c *Controller) Finalize(ctx context.Context) error {
	c.mu.Lock()
	if c.stage != StageCount-1 {
		c.mu.Unlock()
		return ErrNotTerminal
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if c.attaching > 0 {
		c.mu.Unlock()
		return ErrAttachInFlight
	}
	contentType, body, err := c.record.BuildForm()
	if err != nil {
		c.lastErr = err.Error()
		c.mu.Unlock()
		return err
	}
	c.inFlight = true
	c.lastErr = ""
	c.mu.Unlock()

	submitErr := c.submitter.Signup(ctx, contentType, bytes.NewReader(body))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if submitErr != nil {
		c.lastErr = submitErr.Error()
		return submitErr
	}
	c.record.Reset()
	c.stage = StageCredentials
	c.lastErr = ""
	return nil
}
