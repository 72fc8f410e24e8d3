// internal/upload/pipeline.go
//
// The eager attachment path: credential → direct upload → link, in strict
// order, each stage gated on the previous one's success. Runs
// independently of wizard position — it fires as soon as a file is
// selected for an eager-strategy field.

package upload

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/recruiteer/onboard/internal/profile"
	"github.com/recruiteer/onboard/internal/signing"
)

// Stage names the pipeline step a failure occurred in.
type Stage string

const (
	StageCredential Stage = "credential"
	StageUpload     Stage = "upload"
	StageLink       Stage = "link"
)

// StageError tags a pipeline failure with the stage that produced it, so
// the UI can say which leg failed and the caller can decide what remains
// retryable. A failed link leaves the uploaded object orphaned in the
// store; there is no delete credential to compensate with.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result reports a completed attachment.
type Result struct {
	TaskID string
	Field  string
	URL    string
}

// CredentialSource mints or fetches signed upload credentials.
type CredentialSource interface {
	Request(ctx context.Context) (signing.Credential, error)
}

// StoreUploader pushes a file to the object store.
type StoreUploader interface {
	Upload(ctx context.Context, file *profile.PendingFile, cred signing.Credential) (string, error)
}

// Linker associates a durable reference with the owning user record.
type Linker interface {
	LinkAttachment(ctx context.Context, field, reference, token string) error
}

// Pipeline composes the three attachment legs.
type Pipeline struct {
	creds  CredentialSource
	store  StoreUploader
	linker Linker
}

// NewPipeline wires the attachment legs together.
func NewPipeline(creds CredentialSource, store StoreUploader, linker Linker) *Pipeline {
	return &Pipeline{creds: creds, store: store, linker: linker}
}

// Attach runs the full eager path for one field. The bearer token is
// passed through to the link leg explicitly. On failure the returned
// *StageError names the leg; the caller decides whether the user retries.
func (p *Pipeline) Attach(ctx context.Context, field string, file *profile.PendingFile, token string) (Result, error) {
	result := Result{TaskID: uuid.NewString(), Field: field}

	cred, err := p.creds.Request(ctx)
	if err != nil {
		return result, &StageError{Stage: StageCredential, Err: err}
	}
	url, err := p.store.Upload(ctx, file, cred)
	if err != nil {
		return result, &StageError{Stage: StageUpload, Err: err}
	}
	result.URL = url
	if err := p.linker.LinkAttachment(ctx, field, url, token); err != nil {
		return result, &StageError{Stage: StageLink, Err: err}
	}
	return result, nil
}
