package external

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/k-devoe/riverWatch/internal/types"
)

// twilioAPIBase is the production Twilio REST endpoint. Overridable via
// TwilioClientConfig.BaseURL for tests.
const twilioAPIBase = "https://api.twilio.com"

// TwilioClient sends SMS messages through the Twilio Messages API.
// It satisfies the notify package's transport interface.
type TwilioClient struct {
	base       *BaseClient
	baseURL    string
	accountSID string
	authToken  types.SecretString
	fromNumber string
}

// TwilioClientConfig holds the credentials and endpoint for a TwilioClient.
type TwilioClientConfig struct {
	AccountSID string
	AuthToken  types.SecretString
	FromNumber string
	BaseURL    string // empty means production
}

// NewTwilioClient creates a TwilioClient on top of the given BaseClient.
func NewTwilioClient(base *BaseClient, cfg TwilioClientConfig) *TwilioClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = twilioAPIBase
	}
	return &TwilioClient{
		base:       base,
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
	}
}

// SendSMS posts one message to the Twilio Messages endpoint. Twilio queues
// the message on 201; any other 2xx/4xx status is treated as a dispatch
// failure and mapped to an upstream SMS error.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "building twilio request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken.Reveal())

	resp, err := c.base.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamSMS, "twilio request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		// Read a bounded slice of the error payload for diagnostics.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.NewAppError(types.ErrCodeUpstreamSMS,
			fmt.Sprintf("twilio rejected message: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))),
			nil)
	}

	return nil
}
