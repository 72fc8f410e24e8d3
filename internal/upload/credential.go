// internal/upload/credential.go
//
// Fetches a short-lived signed upload credential from the edge server.
// One round trip, no user input; without a credential the direct upload
// must not be attempted.

package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/recruiteer/onboard/internal/signing"
)

// DefaultCredentialTimeout bounds the signature round trip; the endpoint
// is local, so this is generous.
const DefaultCredentialTimeout = 10 * time.Second

// CredentialClient requests signed upload credentials.
type CredentialClient struct {
	endpoint string
	httpc    *http.Client
}

// NewCredentialClient builds a client for the given signature endpoint.
func NewCredentialClient(endpoint string, timeout time.Duration) *CredentialClient {
	if timeout <= 0 {
		timeout = DefaultCredentialTimeout
	}
	return &CredentialClient{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// Request fetches one credential. Any transport error, non-2xx status, or
// body missing the signature surfaces as a credential failure.
func (c *CredentialClient) Request(ctx context.Context) (signing.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return signing.Credential{}, fmt.Errorf("upload: build credential request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return signing.Credential{}, fmt.Errorf("upload: request credential: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return signing.Credential{}, fmt.Errorf("upload: credential endpoint returned status %d", resp.StatusCode)
	}
	var cred signing.Credential
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return signing.Credential{}, fmt.Errorf("upload: decode credential: %w", err)
	}
	if cred.Signature == "" || cred.Timestamp == 0 {
		return signing.Credential{}, fmt.Errorf("upload: credential response incomplete")
	}
	return cred, nil
}
