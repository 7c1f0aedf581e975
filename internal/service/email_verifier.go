// Package service holds outbound collaborators: the email verification
// client and the support-event publisher.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultVerifyEndpoint = "http://apilayer.net/api/check"

// EmailVerifier checks a signup address for deliverability through an
// external apilayer-style API. Policy when the service cannot answer is an
// explicit configuration choice, not an implicit fallback: with Strict set
// an unreachable verifier rejects the signup (fail closed), otherwise the
// address is accepted (fail open). With no AccessKey configured the check
// is skipped entirely, which keeps local development working offline.
type EmailVerifier struct {
	AccessKey string
	Strict    bool
	Endpoint  string
	Client    *http.Client
}

// NewEmailVerifier builds a verifier with a bounded request timeout so a
// slow upstream cannot hold signup requests hostage.
func NewEmailVerifier(accessKey string, strict bool) *EmailVerifier {
	return &EmailVerifier{
		AccessKey: accessKey,
		Strict:    strict,
		Endpoint:  defaultVerifyEndpoint,
		Client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// verifyResponse mirrors the fields of the upstream JSON we care about.
type verifyResponse struct {
	FormatValid bool `json:"format_valid"`
	SMTPCheck   bool `json:"smtp_check"`
}

// Verify reports whether the address should be accepted. An address is
// valid when the upstream confirms both its format and its SMTP mailbox.
// Transport or decode failures resolve per the Strict policy.
func (v *EmailVerifier) Verify(ctx context.Context, email string) (bool, error) {
	if v.AccessKey == "" {
		return true, nil
	}

	q := url.Values{}
	q.Set("access_key", v.AccessKey)
	q.Set("email", email)
	q.Set("smtp", "1")
	q.Set("format", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return !v.Strict, err
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return !v.Strict, fmt.Errorf("email verify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return !v.Strict, fmt.Errorf("email verify status %d", resp.StatusCode)
	}
	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return !v.Strict, fmt.Errorf("email verify decode: %w", err)
	}
	return body.FormatValid && body.SMTPCheck, nil
}
