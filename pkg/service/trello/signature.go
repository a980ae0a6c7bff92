package trello

import (
	"crypto/hmac"
	"crypto/sha1" // #nosec G505 -- Trello signs webhooks with HMAC-SHA1
	"encoding/base64"
)

// SignatureHeader carries the webhook signature on Trello deliveries
const SignatureHeader = "X-Trello-Webhook"

// Sign computes the signature Trello attaches to a delivery of body to callbackURL
func Sign(secret, callbackURL string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	mac.Write([]byte(callbackURL))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches body delivered to callbackURL
func VerifySignature(secret, callbackURL string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Sign(secret, callbackURL, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
