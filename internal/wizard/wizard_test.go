package wizard

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/recruiteer/onboard/internal/profile"
)

type fakeSubmitter struct {
	mu          sync.Mutex
	err         error
	calls       int
	contentType string
	body        []byte
	block       chan struct{}
}

func (f *fakeSubmitter) Signup(_ context.Context, contentType string, body io.Reader) error {
	f.mu.Lock()
	f.calls++
	f.contentType = contentType
	f.body, _ = io.ReadAll(body)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.err
}

func fillCredentials(r *profile.Record) {
	r.Set(profile.FieldFullName, "Ada Lovelace")
	r.SetBirthYear("1990")
	r.SetBirthMonth("6")
	r.SetBirthDay("2")
	r.Set(profile.FieldEmail, "ada@example.com")
	r.Set(profile.FieldPassword, "s3cret")
	r.Set(profile.FieldMobileNumber, "07000000000")
}

func atTerminal(t *testing.T, c *Controller) {
	t.Helper()
	fillCredentials(c.Record())
	for c.Stage() != StageAssistant {
		if !c.Advance() {
			t.Fatalf("could not reach terminal stage, stuck at %v: %s", c.Stage(), c.LastError())
		}
	}
}

func TestNavigationNeverMutatesRecord(t *testing.T) {
	c := New(&fakeSubmitter{})
	r := c.Record()
	fillCredentials(r)
	r.AddSkill("Go")
	r.ToggleDay("Monday")
	r.AddContact(profile.Contact{FullName: "Grace", Email: "g@example.com", Position: "Engineer"})

	before := *r
	beforeSkills := append([]string(nil), r.Skills...)

	for i := 0; i < 10; i++ {
		c.Advance()
	}
	for i := 0; i < 10; i++ {
		c.Retreat()
	}

	if r.FullName != before.FullName || r.Email != before.Email ||
		r.DateOfBirth != before.DateOfBirth || len(r.Contacts) != 1 {
		t.Fatalf("navigation mutated the record")
	}
	if len(r.Skills) != len(beforeSkills) {
		t.Fatalf("navigation changed skills: %v", r.Skills)
	}
	if c.Stage() != StageCredentials {
		t.Fatalf("expected to land back at the first stage, got %v", c.Stage())
	}
}

func TestAdvanceGatedOnCredentials(t *testing.T) {
	c := New(&fakeSubmitter{})
	if c.Advance() {
		t.Fatalf("empty credentials stage must not advance")
	}
	if c.Stage() != StageCredentials {
		t.Fatalf("gate failure moved the pointer")
	}
	if !strings.Contains(c.LastError(), "required") {
		t.Fatalf("gate failure must explain itself, got %q", c.LastError())
	}

	fillCredentials(c.Record())
	if !c.Advance() {
		t.Fatalf("filled credentials stage must advance: %s", c.LastError())
	}
	if c.LastError() != "" {
		t.Fatalf("successful advance must clear the error line")
	}
}

func TestLaterStagesAdvanceFreely(t *testing.T) {
	c := New(&fakeSubmitter{})
	fillCredentials(c.Record())
	c.Advance()
	// Overview through CV carry no required fields.
	for c.Stage() != StageAssistant {
		if !c.Advance() {
			t.Fatalf("stage %v refused to advance", c.Stage())
		}
	}
	if c.Advance() {
		t.Fatalf("terminal stage must not advance past the end")
	}
}

func TestRetreatStopsAtFirstStage(t *testing.T) {
	c := New(&fakeSubmitter{})
	if c.Retreat() {
		t.Fatalf("retreat from the first stage must be a no-op")
	}
}

func TestFinalizeOnlyAtTerminalStage(t *testing.T) {
	c := New(&fakeSubmitter{})
	if err := c.Finalize(context.Background()); !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("expected ErrNotTerminal, got %v", err)
	}
}

func TestFinalizeSuccessResetsEverything(t *testing.T) {
	sub := &fakeSubmitter{}
	c := New(sub)
	atTerminal(t, c)
	c.Record().AddSkill("Go")
	c.Record().SetPendingFile(profile.FieldCVFile, &profile.PendingFile{
		Name: "cv.pdf", ContentType: "application/pdf", Data: []byte("pdf-bytes"),
	})

	if err := c.Finalize(context.Background()); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if sub.calls != 1 {
		t.Fatalf("expected exactly one submission, got %d", sub.calls)
	}

	mediaType, params, err := mime.ParseMediaType(sub.contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("unexpected content type %q: %v", sub.contentType, err)
	}
	form, err := multipart.NewReader(strings.NewReader(string(sub.body)), params["boundary"]).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("parse submitted form: %v", err)
	}
	if got := form.Value["email"]; len(got) != 1 || got[0] != "ada@example.com" {
		t.Fatalf("email missing from payload: %v", form.Value)
	}
	if got := form.Value["skills"]; len(got) != 1 || !strings.Contains(got[0], "Go") {
		t.Fatalf("skills not serialized: %v", form.Value["skills"])
	}
	if len(form.File["cv_file"]) != 1 {
		t.Fatalf("pending cv bytes missing from payload")
	}

	if c.Stage() != StageCredentials {
		t.Fatalf("stage pointer not reset: %v", c.Stage())
	}
	if c.Record().Email != "" || c.Record().FullName != "" {
		t.Fatalf("record not reset after success")
	}
	if c.InFlight() || c.LastError() != "" {
		t.Fatalf("expected clean state after success")
	}
}

func TestFinalizeFailurePreservesRecord(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("email already registered")}
	c := New(sub)
	atTerminal(t, c)
	c.Record().AddSkill("Go")

	err := c.Finalize(context.Background())
	if err == nil {
		t.Fatalf("expected submission failure")
	}
	if c.LastError() != "email already registered" {
		t.Fatalf("backend message must surface verbatim, got %q", c.LastError())
	}
	if c.Stage() != StageAssistant {
		t.Fatalf("stage pointer must be untouched on failure, got %v", c.Stage())
	}
	if c.Record().Email != "ada@example.com" {
		t.Fatalf("record must be untouched on failure")
	}
	if c.InFlight() {
		t.Fatalf("in-flight must clear after failure")
	}

	// Retry without edits goes through once the backend accepts.
	sub.err = nil
	if err := c.Finalize(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestFinalizeSingleFlightLatch(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{})}
	c := New(sub)
	atTerminal(t, c)

	done := make(chan error, 1)
	go func() {
		done <- c.Finalize(context.Background())
	}()

	for !c.InFlight() {
		time.Sleep(time.Millisecond)
	}
	if err := c.Finalize(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(sub.block)
	if err := <-done; err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if sub.calls != 1 {
		t.Fatalf("latched call must not reach the submitter, got %d calls", sub.calls)
	}
}

func TestFinalizeRefusedWhileAttaching(t *testing.T) {
	sub := &fakeSubmitter{}
	c := New(sub)
	atTerminal(t, c)

	c.BeginAttach()
	if err := c.Finalize(context.Background()); !errors.Is(err, ErrAttachInFlight) {
		t.Fatalf("expected ErrAttachInFlight, got %v", err)
	}
	c.EndAttach()
	if err := c.Finalize(context.Background()); err != nil {
		t.Fatalf("finalize after attach drained: %v", err)
	}
}

func TestSetErrorAndClear(t *testing.T) {
	c := New(&fakeSubmitter{})
	c.SetError("upload: store rejected file")
	if c.LastError() != "upload: store rejected file" {
		t.Fatalf("SetError not stored")
	}
	c.ClearError()
	if c.LastError() != "" {
		t.Fatalf("ClearError left residue")
	}
}
