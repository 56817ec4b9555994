package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is the reCAPTCHA siteverify endpoint
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// SiteVerifier checks tokens against a siteverify-style endpoint
type SiteVerifier struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

// NewSiteVerifier creates a verifier posting to verifyURL with the given secret
func NewSiteVerifier(secret, verifyURL string, timeout time.Duration) *SiteVerifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &SiteVerifier{
		secret:     secret,
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether the provider accepted the token. An empty token is
// rejected without a request.
func (v *SiteVerifier) Verify(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var body siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode siteverify response: %w", err)
	}
	return body.Success, nil
}
