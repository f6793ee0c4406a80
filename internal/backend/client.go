package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:5000"

// Client is the typed binding to the certificate backend. One method per
// backend capability; no retries, no timeouts, no status-code policy beyond
// mapping non-2xx answers to *APIError.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Login exchanges credentials for a bearer token. The token endpoint speaks
// form encoding, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%v: %v", ErrBuildRequest, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp TokenResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *Client) IssueCertificate(ctx context.Context, token string, req IssueRequest) (*TxResult, error) {
	var res TxResult
	if err := c.postJSON(ctx, "/api/issue-certificate", token, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RevokeCertificate(ctx context.Context, token, id string) (*TxResult, error) {
	var res TxResult
	if err := c.postJSON(ctx, "/api/revoke-certificate", token, RevokeRequest{ID: id}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) VerifyCertificate(ctx context.Context, id string) (*Certificate, error) {
	var cert Certificate
	if err := c.getJSON(ctx, "/api/verify-certificate/"+url.PathEscape(id), &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

func (c *Client) Events(ctx context.Context) (*EventsPayload, error) {
	var payload EventsPayload
	if err := c.getJSON(ctx, "/api/events", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) AddAdmin(ctx context.Context, token, address string) (*TxResult, error) {
	var res TxResult
	if err := c.postJSON(ctx, "/api/add-admin", token, AdminRequest{Address: address}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RemoveAdmin(ctx context.Context, token, address string) (*TxResult, error) {
	var res TxResult
	if err := c.postJSON(ctx, "/api/remove-admin", token, AdminRequest{Address: address}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%v: %v", ErrBuildRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%v: %v", ErrBuildRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%v: %v", ErrBuildRequest, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", ErrSendRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%v: %v", ErrDecodeResponse, err)
	}
	return nil
}

// decodeAPIError pulls the backend's {"detail": ...} message out of an error
// response. A body that does not match is tolerated; the caller falls back
// to a generic message then.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).WithField("status", resp.StatusCode).Warn("reading error response body")
		return apiErr
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}
