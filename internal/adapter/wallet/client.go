// Package wallet implements the RSA2-signed open-API client used to
// poll wallet account balances.
package wallet

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/money"

	"github.com/rs/zerolog"
)

const (
	methodBalanceQuery = "alipay.data.bill.balance.query"
	successCode        = "10000"
)

// Client talks to the wallet provider's open-API gateway. It implements
// ports.WalletGateway.
type Client struct {
	gatewayURL string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a wallet gateway client.
func NewClient(gatewayURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "wallet_client").Logger(),
	}
}

type balanceResponse struct {
	Code            string `json:"code"`
	Msg             string `json:"msg"`
	SubCode         string `json:"sub_code"`
	SubMsg          string `json:"sub_msg"`
	TotalAmount     string `json:"total_amount"`
	AvailableAmount string `json:"available_amount"`
	FreezeAmount    string `json:"freeze_amount"`
}

// QueryBalance fetches the current account balance through the
// credential's open-API keys.
func (c *Client) QueryBalance(ctx context.Context, cred *domain.CredentialBundle) (*ports.WalletBalance, error) {
	params := map[string]string{
		"app_id":      cred.AppID,
		"method":      methodBalanceQuery,
		"format":      "JSON",
		"charset":     "utf-8",
		"sign_type":   "RSA2",
		"timestamp":   time.Now().Format("2006-01-02 15:04:05"),
		"version":     "1.0",
		"biz_content": "{}",
	}

	sign, err := signRSA2(signContent(params), cred.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("signing balance query: %w", err)
	}
	params["sign"] = sign

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building balance query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling wallet gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading wallet response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wallet gateway returned status %d", resp.StatusCode)
	}

	// The payload sits under "<method with dots as underscores>_response".
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding wallet response: %w", err)
	}
	payloadKey := strings.ReplaceAll(methodBalanceQuery, ".", "_") + "_response"
	raw, ok := envelope[payloadKey]
	if !ok {
		return nil, fmt.Errorf("wallet response missing %s", payloadKey)
	}

	var br balanceResponse
	if err := json.Unmarshal(raw, &br); err != nil {
		return nil, fmt.Errorf("decoding balance payload: %w", err)
	}
	if br.Code != successCode {
		msg := br.SubMsg
		if msg == "" {
			msg = br.Msg
		}
		return nil, fmt.Errorf("wallet gateway rejected query: code=%s sub_code=%s msg=%s", br.Code, br.SubCode, msg)
	}

	balance := &ports.WalletBalance{}
	if balance.Total, err = money.Parse(br.TotalAmount); err != nil {
		return nil, fmt.Errorf("parsing total_amount %q: %w", br.TotalAmount, err)
	}
	if balance.Available, err = money.Parse(br.AvailableAmount); err != nil {
		return nil, fmt.Errorf("parsing available_amount %q: %w", br.AvailableAmount, err)
	}
	if br.FreezeAmount != "" {
		if balance.Frozen, err = money.Parse(br.FreezeAmount); err != nil {
			return nil, fmt.Errorf("parsing freeze_amount %q: %w", br.FreezeAmount, err)
		}
	}

	c.log.Debug().
		Str("app_id", cred.AppID).
		Str("available", balance.Available.String()).
		Msg("wallet balance queried")

	return balance, nil
}

// signContent builds the canonical sign base: empty values and the
// sign key are dropped, the rest sorted by key and joined k=v with &.
func signContent(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || v == "" {
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

// signRSA2 produces a base64 SHA256withRSA (PKCS#1 v1.5) signature.
func signRSA2(content, privateKey string) (string, error) {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256([]byte(content))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("rsa sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// parsePrivateKey accepts a PEM block or a bare base64 DER body and
// tries PKCS#8 first, then PKCS#1.
func parsePrivateKey(s string) (*rsa.PrivateKey, error) {
	s = strings.TrimSpace(s)

	var der []byte
	if strings.HasPrefix(s, "-----") {
		block, _ := pem.Decode([]byte(s))
		if block == nil {
			return nil, fmt.Errorf("invalid PEM private key")
		}
		der = block.Bytes
	} else {
		cleaned := strings.NewReplacer("\n", "", "\r", "", " ", "").Replace(s)
		var err error
		der, err = base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("decoding private key base64: %w", err)
		}
	}

	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is not RSA")
		}
		return rsaKey, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return key, nil
}
