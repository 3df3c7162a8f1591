package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := CreateMerchantRequest{
		Username:      "  alice  ",
		SettleType:    " alipay ",
		SettleAccount: " acct-1 ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "alipay", req.SettleType)
	assert.Equal(t, "acct-1", req.SettleAccount)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := CreateMerchantRequest{
		Username:       "bob",
		SettleUsername: "owner <script>alert('x')</script>",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.SettleUsername, "&lt;script&gt;")
	assert.NotContains(t, req.SettleUsername, "<script>")
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"shop-001",
		"SHOP_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"shop 001",    // space
		"shop<001>",   // angle brackets
		"shop;DROP",   // semicolon
		"",            // empty
		"hello world", // space
		"shop\n001",   // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}
