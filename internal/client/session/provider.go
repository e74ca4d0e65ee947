package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Change is a provider-side state notification: a refreshed session,
// or Subject == nil when the provider signed the user out.
type Change struct {
	Subject    *Subject
	Credential string
	IssuedAt   time.Time
}

// Provider is the black-box identity provider: it issues and revalidates
// credentials, we never look inside them.
//
// Contract:
//   - SignIn: exchange email/password for a fresh session, ErrBadCredentials
//     when rejected.
//   - Current: re-derive the session for the given credential (silent
//     refresh); ErrSignedOut when the provider no longer recognizes it.
//   - SignOut: invalidate the credential provider-side.
//   - Changes: push notifications about refreshes and invalidation; may be
//     a channel that never delivers if the provider cannot push.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	Current(ctx context.Context, credential string) (Session, error)
	SignOut(ctx context.Context, credential string) error
	Changes() <-chan Change
}

// HTTPProvider drives a provider exposing sign-in/refresh/sign-out over
// plain JSON POST endpoints. It has no push channel.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type providerResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	resp, err := p.post(ctx, "/signin", map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusForbidden {
		return Session{}, ErrBadCredentials
	}
	return p.decode(resp)
}

func (p *HTTPProvider) Current(ctx context.Context, credential string) (Session, error) {
	resp, err := p.post(ctx, "/refresh", map[string]string{"token": credential})
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Session{}, ErrSignedOut
	}
	return p.decode(resp)
}

func (p *HTTPProvider) SignOut(ctx context.Context, credential string) error {
	resp, err := p.post(ctx, "/signout", map[string]string{"token": credential})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (p *HTTPProvider) Changes() <-chan Change {
	return nil // nil-канал просто никогда не доставляет
}

func (p *HTTPProvider) post(ctx context.Context, path string, body map[string]string) (*http.Response, error) {
	raw, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	return resp, nil
}

func (p *HTTPProvider) decode(resp *http.Response) (Session, error) {
	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("identity provider status %d", resp.StatusCode)
	}
	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Session{}, err
	}
	if pr.UID == "" || pr.Token == "" {
		return Session{}, fmt.Errorf("identity provider returned incomplete session")
	}
	return Session{
		Subject:    Subject{Email: pr.Email, UID: pr.UID},
		Credential: pr.Token,
		IssuedAt:   time.Now(),
	}, nil
}
