// Package kalshi implements the signed REST client for the Kalshi trade API:
// request signing, read throttling, 429 backoff, and cursor pagination.
package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Signer produces the KALSHI-ACCESS-* headers for authenticated requests.
// The private key is immutable after construction, so a single Signer is
// safe to share across concurrent requests.
type Signer struct {
	key      *rsa.PrivateKey
	apiKeyID string
}

// NewSigner loads an RSA private key from a PKCS#1 PEM file.
func NewSigner(pemPath, apiKeyID string) (*Signer, error) {
	raw, err := os.ReadFile(pemPath)
	if err != nil {
		return nil, fmt.Errorf("read RSA key %s: %w", pemPath, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", pemPath)
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse RSA private key (PKCS#1 PEM): %w", err)
	}

	return &Signer{key: key, apiKeyID: apiKeyID}, nil
}

// Sign returns the base64 RSASSA-PKCS#1 v1.5 SHA-256 signature over the
// exact byte string "<timestamp_ms><METHOD><path_with_query>".
func (s *Signer) Sign(timestampMs int64, method, path string) (string, error) {
	message := strconv.FormatInt(timestampMs, 10) + method + path
	digest := sha256.Sum256([]byte(message))

	signature, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign request: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// Headers returns the three authentication headers for one request. The
// timestamp is taken at call time, so headers must be built per attempt.
func (s *Signer) Headers(method, path string) (map[string]string, error) {
	ts := time.Now().UnixMilli()

	signature, err := s.Sign(ts, method, path)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"KALSHI-ACCESS-KEY":       s.apiKeyID,
		"KALSHI-ACCESS-TIMESTAMP": strconv.FormatInt(ts, 10),
		"KALSHI-ACCESS-SIGNATURE": signature,
	}, nil
}
