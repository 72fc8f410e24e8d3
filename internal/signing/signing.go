// internal/signing/signing.go
//
// Short-lived upload credentials for direct browser/client uploads to the
// object store. The credential is a pure function of time and the account
// secret, so the store can verify it without any shared state beyond the
// secret itself.

package signing

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// Credential authorizes exactly one direct upload into the configured
// folder. Single-use by convention: the timestamp binds it to the second
// it was issued and the store rejects stale values.
type Credential struct {
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder"`
}

// Sign computes the hex SHA-1 digest the store expects:
// sha1("folder=<folder>&timestamp=<ts><secret>").
func Sign(folder string, timestamp int64, secret string) string {
	payload := fmt.Sprintf("folder=%s&timestamp=%d%s", folder, timestamp, secret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Issuer mints credentials for a fixed cloud namespace.
type Issuer struct {
	CloudName string
	APIKey    string
	Folder    string
	secret    string
}

// NewIssuer builds an issuer. The secret never leaves this package.
func NewIssuer(cloudName, apiKey, folder, secret string) *Issuer {
	return &Issuer{
		CloudName: cloudName,
		APIKey:    apiKey,
		Folder:    folder,
		secret:    secret,
	}
}

// Issue mints a credential bound to the given instant, truncated to whole
// seconds since epoch.
func (i *Issuer) Issue(now time.Time) Credential {
	ts := now.Unix()
	return Credential{
		Timestamp: ts,
		Signature: Sign(i.Folder, ts, i.secret),
		APIKey:    i.APIKey,
		CloudName: i.CloudName,
		Folder:    i.Folder,
	}
}
