package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/signupgate/internal/model"
)

// RegisterPath is the backend route the client posts to
const RegisterPath = "/api/v1/register"

// Client calls a remote registration backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Register posts the request. 2xx and 4xx answers are results; anything else,
// or no answer at all, is an error.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.RegistrationResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.RegistrationResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RegisterPath, bytes.NewReader(body))
	if err != nil {
		return model.RegistrationResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.RegistrationResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode < 200 || (resp.StatusCode >= 300 && resp.StatusCode < 400) {
		return model.RegistrationResult{}, fmt.Errorf("registration backend returned status %d", resp.StatusCode)
	}

	var decoded registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return model.RegistrationResult{}, fmt.Errorf("decode registration response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := decoded.Message
		if msg == "" && decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return model.RegistrationResult{Success: false, Message: msg}, nil
	}
	return model.RegistrationResult{Success: decoded.Success, Message: decoded.Message}, nil
}
