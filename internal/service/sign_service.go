package service

import (
	"crypto/md5" //nolint:gosec // protocol-mandated digest, not used for secrecy
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"
)

// MD5SignService implements ports.SignService: the merchant protocol's
// MD5 parameter signature.
type MD5SignService struct{}

// NewMD5SignService creates a new MD5SignService.
func NewMD5SignService() *MD5SignService {
	return &MD5SignService{}
}

// Canonicalize builds the sign base: sign, sign_type and empty values
// are dropped, keys sorted byte-ascending, pairs joined k=v with &.
// Values are used raw, without URL encoding.
func (s *MD5SignService) Canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || k == "sign_type" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	return strings.Join(pairs, "&")
}

// Sign appends the merchant key to the canonical string and returns the
// lowercase hex MD5 digest.
func (s *MD5SignService) Sign(params map[string]string, key string) string {
	digest := md5.Sum([]byte(s.Canonicalize(params) + key)) //nolint:gosec
	return hex.EncodeToString(digest[:])
}

// Verify recomputes the signature and compares case-insensitively in
// constant time.
func (s *MD5SignService) Verify(params map[string]string, key string, sign string) bool {
	if sign == "" {
		return false
	}
	expected := s.Sign(params, key)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(sign))) == 1
}
