// Package webhook authenticates provider callbacks. Both the payment and the
// courier provider sign the raw request body with HMAC-SHA512 under a shared
// secret and send the hex digest in a header.
package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// Sign computes the hex HMAC-SHA512 digest of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureValid checks a provider signature against the exact raw body bytes
// using a constant-time comparison.
func SignatureValid(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
