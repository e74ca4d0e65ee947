package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Identity — проверенная личность вызывающего. Неизменяемое значение,
// передается явно от middleware до слоя хранилища.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Verifier проверяет bearer-токен у внешнего провайдера идентификации.
// Проверка выполняется на каждом запросе, результаты не кэшируются:
// отозванный токен должен отваливаться сразу.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// RemoteVerifier проверяет токен сетевым вызовом к verification API провайдера.
type RemoteVerifier struct {
	verifyURL string
	client    *http.Client
}

func NewRemoteVerifier(verifyURL string) *RemoteVerifier {
	return &RemoteVerifier{
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingCredential
	}

	body, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, bytes.NewReader(body))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, ErrInvalidCredential
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return Identity{}, ErrInvalidCredential
	}
	if id.UID == "" {
		return Identity{}, ErrInvalidCredential
	}
	return id, nil
}
