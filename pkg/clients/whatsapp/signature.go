package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// SignatureHeader carries the app-secret HMAC of a webhook body.
const SignatureHeader = "X-Hub-Signature-256"

// ErrInvalidSignature is returned when a webhook body does not match its signature.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifySignature checks the X-Hub-Signature-256 value Meta sends with every
// webhook callback: "sha256=" followed by the hex HMAC-SHA256 of the raw body
// keyed with the app secret.
func VerifySignature(appSecret string, body []byte, signature string) error {
	if appSecret == "" {
		return fmt.Errorf("%w: app secret is not configured", ErrInvalidSignature)
	}
	if signature == "" {
		return fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}

	got, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return fmt.Errorf("%w: malformed hex", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return fmt.Errorf("%w: mismatch", ErrInvalidSignature)
	}
	return nil
}

// Sign returns the signature header value for body.
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
