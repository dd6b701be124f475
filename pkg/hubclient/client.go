// Package hubclient provides the client side of the onboarding sync
// protocol: a typed HTTP client, a local draft store, and a background
// syncer that keeps the two in step.
package hubclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// DefaultTimeout is the maximum time to wait for hub-engine responses.
const DefaultTimeout = 30 * time.Second

// SaveSessionRequest is the wire shape for POST /api/onboarding/session.
type SaveSessionRequest struct {
	SessionID   string             `json:"session_id,omitempty"`
	Step        int                `json:"step"`
	Context     models.FormContext `json:"context,omitempty"`
	BusinessID  *uuid.UUID         `json:"business_id,omitempty"`
	Email       string             `json:"email,omitempty"`
	DisplayName string             `json:"display_name,omitempty"`
}

type saveSessionResponse struct {
	State *models.OnboardingState `json:"state"`
}

// GenerateResult mirrors the server's generation response.
type GenerateResult struct {
	Generation *models.Generation `json:"generation"`
	Cached     bool               `json:"cached"`
}

// Client provides access to the hub-engine onboarding API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialStore
	logger     *zap.Logger
}

// NewClient creates a new hub-engine client. The credential store
// supplies the anonymous session id and, after sign-in, the bearer token.
func NewClient(baseURL string, creds CredentialStore, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		creds:  creds,
		logger: logger.Named("hubclient"),
	}
}

// SaveSession pushes one snapshot of wizard progress to the server.
func (c *Client) SaveSession(ctx context.Context, req *SaveSessionRequest) (*models.OnboardingState, error) {
	if req.SessionID == "" {
		req.SessionID = c.creds.SessionID()
	}

	var resp saveSessionResponse
	if err := c.do(ctx, http.MethodPost, req, &resp, "api", "onboarding", "session"); err != nil {
		return nil, err
	}
	return resp.State, nil
}

// GetState fetches everything the server knows about this client.
func (c *Client) GetState(ctx context.Context) (*models.StateAggregate, error) {
	endpoint, err := buildURL(c.baseURL, "api", "onboarding", "state")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	if sid := c.creds.SessionID(); sid != "" {
		endpoint += "?session_id=" + url.QueryEscape(sid)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var aggregate models.StateAggregate
	if err := c.send(httpReq, &aggregate); err != nil {
		return nil, err
	}
	return &aggregate, nil
}

// Generate asks for candidates for a stage. Identical inputs return the
// server's cached generation. model overrides the server's default when
// non-empty.
func (c *Client) Generate(ctx context.Context, stage string, inputs map[string]interface{}, model string) (*GenerateResult, error) {
	body := map[string]interface{}{
		"session_id": c.creds.SessionID(),
		"stage":      stage,
		"inputs":     inputs,
	}
	if model != "" {
		body["model"] = model
	}

	var result GenerateResult
	if err := c.do(ctx, http.MethodPost, body, &result, "api", "onboarding", "generations"); err != nil {
		return nil, err
	}
	return &result, nil
}

// SelectGeneration commits a generation (and optionally an item) as the
// choice for its stage.
func (c *Client) SelectGeneration(ctx context.Context, generationID uuid.UUID, itemID, businessID *uuid.UUID) (*models.Generation, error) {
	body := map[string]interface{}{
		"session_id":  c.creds.SessionID(),
		"item_id":     itemID,
		"business_id": businessID,
	}

	var gen models.Generation
	if err := c.do(ctx, http.MethodPost, body, &gen, "api", "onboarding", "generations", generationID.String(), "select"); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Migrate asks the server to move this session's data onto the
// signed-in user. Requires a bearer token in the credential store.
func (c *Client) Migrate(ctx context.Context, sessionID string) (*models.MigrationSummary, error) {
	if sessionID == "" {
		sessionID = c.creds.SessionID()
	}
	body := map[string]string{"session_id": sessionID}

	var summary models.MigrationSummary
	if err := c.do(ctx, http.MethodPost, body, &summary, "api", "onboarding", "migrate"); err != nil {
		return nil, err
	}
	return &summary, nil
}

// do marshals body, executes the request and decodes the response into out.
func (c *Client) do(ctx context.Context, method string, body, out interface{}, elem ...string) error {
	endpoint, err := buildURL(c.baseURL, elem...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req, out)
}

// send executes a prepared request, attaching credentials.
func (c *Client) send(req *http.Request, out interface{}) error {
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call hub-engine: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("hub-engine returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return fmt.Errorf("hub-engine returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// buildURL joins a base URL with path elements.
func buildURL(baseURL string, elem ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	u.Path = path.Join(append([]string{u.Path}, elem...)...)
	return u.String(), nil
}
