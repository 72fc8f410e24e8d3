// internal/upload/uploader.go
//
// Direct-to-store uploads. The size ceiling is enforced locally before
// any network traffic so an oversized file fails fast with an error the
// UI can distinguish from a transport failure.

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/recruiteer/onboard/internal/profile"
	"github.com/recruiteer/onboard/internal/signing"
)

// DefaultUploadTimeout bounds one store round trip.
const DefaultUploadTimeout = 120 * time.Second

// SizeLimitError reports a file rejected before any network call.
type SizeLimitError struct {
	Name  string
	Size  int64
	Limit int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file %s is %d bytes; limit is %d", e.Name, e.Size, e.Limit)
}

// Uploader sends files directly to the object store.
type Uploader struct {
	uploadURL string
	maxBytes  int64
	httpc     *http.Client
}

// NewUploader builds an uploader. uploadURL may contain one %s, replaced
// with the credential's cloud name at upload time.
func NewUploader(uploadURL string, maxBytes int64, timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	return &Uploader{
		uploadURL: uploadURL,
		maxBytes:  maxBytes,
		httpc:     &http.Client{Timeout: timeout},
	}
}

// MaxBytes reports the client-side ceiling.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Upload pushes a pending file to the store using a signed credential and
// returns the durable reference. Expiry of the credential is the store's
// call; the client does not re-check its timestamp.
func (u *Uploader) Upload(ctx context.Context, file *profile.PendingFile, cred signing.Credential) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", fmt.Errorf("upload: no file selected")
	}
	if u.maxBytes > 0 && file.Size() > u.maxBytes {
		return "", &SizeLimitError{Name: file.Name, Size: file.Size(), Limit: u.maxBytes}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := createFilePart(w, file)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", fmt.Errorf("upload: stage file payload: %w", err)
	}
	fields := map[string]string{
		"api_key":   cred.APIKey,
		"timestamp": strconv.FormatInt(cred.Timestamp, 10),
		"signature": cred.Signature,
		"folder":    cred.Folder,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return "", fmt.Errorf("upload: write %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload: close form: %w", err)
	}

	target := u.uploadURL
	if strings.Contains(target, "%s") {
		target = fmt.Sprintf(target, cred.CloudName)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return "", fmt.Errorf("upload: build store request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := u.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: store request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
		return "", fmt.Errorf("upload: store rejected file (status %d): %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var parsed struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("upload: decode store response: %w", err)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("upload: store response missing secure_url")
	}
	return parsed.SecureURL, nil
}

func createFilePart(w *multipart.Writer, file *profile.PendingFile) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("upload: create file part: %w", err)
	}
	return part, nil
}
