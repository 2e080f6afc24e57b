package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"plexorder/internal/shared"
)

// PinLogin drives the plex.tv PIN authorization flow: create a pin, send
// the user to app.plex.tv/auth, poll until the pin is claimed. The
// resulting token is a short-lived credential handed to whoever executes
// the reorder; it is never stored inside core data structures.
type PinLogin struct {
	httpClient *http.Client
	baseURL    string // plex.tv, overridable in tests
	product    string
	clientID   string

	ID   int64
	Code string
}

type pinResponse struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	AuthToken string `json:"authToken"`
	ExpiresIn int    `json:"expiresIn"`
}

// NewPinLogin requests a new PIN from plex.tv. The clientID must stay
// stable between the create and poll calls; the product string is what the
// user sees on the Plex authorization page.
func NewPinLogin(ctx context.Context, product, clientID string, client *http.Client) (*PinLogin, error) {
	return newPinLogin(ctx, plexTVBaseURL, product, clientID, client)
}

func newPinLogin(ctx context.Context, baseURL, product, clientID string, client *http.Client) (*PinLogin, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if clientID == "" {
		clientID = shared.GenerateID()
	}
	if product == "" {
		product = "plexorder"
	}

	p := &PinLogin{
		httpClient: client,
		baseURL:    baseURL,
		product:    product,
		clientID:   clientID,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v2/pins?strong=true", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: pin creation status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var pin pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pin); err != nil {
		return nil, fmt.Errorf("failed to decode pin response: %w", err)
	}

	p.ID = pin.ID
	p.Code = pin.Code
	return p, nil
}

func (p *PinLogin) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Product", p.product)
	req.Header.Set("X-Plex-Client-Identifier", p.clientID)
}

// AuthURL returns the app.plex.tv page where the user approves the pin.
// forwardURL, when non-empty, is where the browser lands afterwards.
func (p *PinLogin) AuthURL(forwardURL string) string {
	fragment := url.Values{
		"clientID":                 {p.clientID},
		"code":                     {p.Code},
		"context[device][product]": {p.product},
	}
	if forwardURL != "" {
		fragment.Set("forwardUrl", forwardURL)
	}
	return "https://app.plex.tv/auth#?" + fragment.Encode()
}

// Check polls the pin once. Returns the token when the user has approved,
// [shared.ErrAuthPending] while the pin is unclaimed.
func (p *PinLogin) Check(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v2/pins/%d", p.baseURL, p.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: pin expired", shared.ErrAuthFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: pin status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var pin pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pin); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	if pin.AuthToken == "" {
		return "", shared.ErrAuthPending
	}

	return pin.AuthToken, nil
}

// Wait polls the pin at the given interval until it is approved, the
// deadline passes, or the context is cancelled.
func (p *PinLogin) Wait(ctx context.Context, interval, timeout time.Duration) (string, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		token, err := p.Check(ctx)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, shared.ErrAuthPending) {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: pin not approved in time", shared.ErrTimeout)
		case <-ticker.C:
		}
	}
}
