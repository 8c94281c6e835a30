package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// signatureScheme prefixes every signature so the canonical form can evolve.
const signatureScheme = "v1="

// HMACSignatureService signs the messages exchanged with an external
// transfer host: payout requests sent by the ledger and completions the host
// posts back. Both sides share the ledger's callback secret.
type HMACSignatureService struct{}

func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign returns "v1=" followed by the hex HMAC-SHA256 of payload.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	return signatureScheme + hex.EncodeToString(s.mac(secretKey, payload))
}

// Verify reports whether signature is a valid v1 signature of payload.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	encoded, ok := strings.CutPrefix(signature, signatureScheme)
	if !ok {
		return false
	}
	got, err := hex.DecodeString(encoded)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.mac(secretKey, payload))
}

// BuildCanonicalString joins method, path, timestamp, nonce and the hex
// SHA-256 of body with newlines.
func (s *HMACSignatureService) BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string {
	digest := sha256.Sum256([]byte(body))
	return strings.Join([]string{
		strings.ToUpper(method),
		path,
		strconv.FormatInt(timestamp, 10),
		nonce,
		hex.EncodeToString(digest[:]),
	}, "\n")
}

func (s *HMACSignatureService) mac(secretKey, payload string) []byte {
	m := hmac.New(sha256.New, []byte(secretKey))
	m.Write([]byte(payload))
	return m.Sum(nil)
}
