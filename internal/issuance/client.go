// Package issuance calls the external credential-issuance API and classifies
// its responses. Exactly one attempt is made per invocation: the external
// API's idempotency guarantees are unknown, so a retry could mint a second
// live credential for one request.
package issuance

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	dErrors "keydesk/pkg/domain-errors"
)

// CredentialRequest describes the credential to issue. Immutable once built.
type CredentialRequest struct {
	Name           string
	ExpiresAt      time.Time
	AccessPolicyID string
}

// IssuedCredential is the external service's response. SecretValue exists
// only transiently in memory and in the one outgoing success email; it is
// never persisted to the row store or written to logs.
type IssuedCredential struct {
	Name        string
	SecretValue string
	ExpiresAt   string
}

// maxErrorBody caps how much of an unstructured error body is carried into
// the recorded failure detail.
const maxErrorBody = 512

// Client performs the issuance call. resty does not error on non-2xx
// responses, so every status is inspected explicitly.
type Client struct {
	http     *resty.Client
	endpoint string
	region   string
	apiKey   string
	logger   *slog.Logger
}

func NewClient(endpoint, region, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		http:     resty.New(),
		endpoint: endpoint,
		region:   region,
		apiKey:   apiKey,
		logger:   logger,
	}
}

type requestBody struct {
	Name           string `json:"name"`
	ExpiresAt      string `json:"expiresAt"`
	AccessPolicyID string `json:"accessPolicyId"`
}

type responseBody struct {
	Name      string `json:"name"`
	Key       string `json:"key"`
	Secret    string `json:"secret"`
	ExpiresAt string `json:"expiresAt"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Issue performs a single issuance attempt and classifies the outcome:
// transport failures, non-2xx statuses (with the human-readable message
// extracted from the body when present) and unparseable success bodies each
// get their own error code.
func (c *Client) Issue(ctx context.Context, req CredentialRequest) (*IssuedCredential, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("region", c.region).
		SetAuthToken(c.apiKey).
		SetHeader("Accept", "application/json").
		SetBody(requestBody{
			Name:           req.Name,
			ExpiresAt:      req.ExpiresAt.UTC().Format(time.RFC3339),
			AccessPolicyID: req.AccessPolicyID,
		}).
		Post(c.endpoint)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransport, "issuance request failed")
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		message := extractErrorMessage(resp.Body())
		c.logger.ErrorContext(ctx, "issuance API rejected request",
			"status", status,
			"credential_name", req.Name,
		)
		return nil, dErrors.Newf(dErrors.CodeAPI, "issuance API returned %d: %s", status, message)
	}

	var parsed responseBody
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeResponseParse, "malformed issuance response")
	}

	secret := parsed.Key
	if secret == "" {
		secret = parsed.Secret
	}
	if parsed.Name == "" || secret == "" {
		return nil, dErrors.New(dErrors.CodeResponseParse, "issuance response missing credential fields")
	}

	return &IssuedCredential{
		Name:        parsed.Name,
		SecretValue: secret,
		ExpiresAt:   parsed.ExpiresAt,
	}, nil
}

// extractErrorMessage pulls a human-readable message out of a (possibly
// JSON) error body, falling back to the raw body.
func extractErrorMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	raw := string(body)
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return raw
}
