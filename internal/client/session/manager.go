package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager owns the client session: a state machine over
// unauthenticated -> authenticating -> authenticated, a durable snapshot,
// and a listener applying provider-side changes.
type Manager struct {
	provider Provider
	store    Store
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	session Session

	wg   sync.WaitGroup
	stop chan struct{}
}

func NewManager(provider Provider, store Store, logger *zap.Logger) *Manager {
	return &Manager{
		provider: provider,
		store:    store,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start restores the session. The stored snapshot is read synchronously, so
// a caller never observes a spurious unauthenticated state while a valid
// session exists on disk; the provider is then consulted asynchronously and
// its verdict is authoritative over the cache.
func (m *Manager) Start(ctx context.Context) {
	if cached, err := m.store.Load(); err == nil {
		m.mu.Lock()
		m.state = Authenticated
		m.session = cached
		m.mu.Unlock()
	} else if !errors.Is(err, ErrNoSession) {
		m.logger.Error("failed to read session snapshot", zap.Error(err))
	}

	m.wg.Add(1)
	go m.listen(ctx)
}

func (m *Manager) Stop() {
	close(m.stop)
	m.wg.Wait()
}

func (m *Manager) listen(ctx context.Context) {
	defer m.wg.Done()

	m.confirm(ctx)

	changes := m.provider.Changes()
	for {
		select {
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			m.applyChange(change)
		}
	}
}

// confirm reconciles the cached snapshot with the provider. If the provider
// no longer recognizes the credential, the cache is discarded.
func (m *Manager) confirm(ctx context.Context) {
	m.mu.Lock()
	if m.state != Authenticated {
		m.mu.Unlock()
		return
	}
	credential := m.session.Credential
	m.mu.Unlock()

	fresh, err := m.provider.Current(ctx, credential)
	if err != nil {
		if errors.Is(err, ErrSignedOut) {
			m.logger.Info("provider rejected cached session, signing out")
			m.discard()
		} else {
			// Провайдер недоступен — живем на кэше до следующего сигнала
			m.logger.Warn("could not confirm session with provider", zap.Error(err))
		}
		return
	}

	m.adopt(fresh)
}

func (m *Manager) applyChange(change Change) {
	if change.Subject == nil {
		m.logger.Info("provider invalidated session")
		m.discard()
		return
	}

	issuedAt := change.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	m.adopt(Session{
		Subject:    *change.Subject,
		Credential: change.Credential,
		IssuedAt:   issuedAt,
	})
}

// SignIn drives unauthenticated -> authenticating -> authenticated.
// A rejected attempt leaves the previous state untouched.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	m.mu.Lock()
	prev := m.state
	m.state = Authenticating
	m.mu.Unlock()

	sess, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		m.mu.Lock()
		m.state = prev
		m.mu.Unlock()
		return err
	}

	m.adopt(sess)
	return nil
}

func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	credential := m.session.Credential
	m.mu.Unlock()

	if credential != "" {
		if err := m.provider.SignOut(ctx, credential); err != nil {
			m.logger.Warn("provider sign-out failed", zap.Error(err))
		}
	}
	m.discard()
	return nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Session() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.state == Authenticated
}

// Credential implements api.CredentialSource for the sync engine.
func (m *Manager) Credential() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticated {
		return "", ErrNoSession
	}
	return m.session.Credential, nil
}

func (m *Manager) adopt(sess Session) {
	m.mu.Lock()
	m.state = Authenticated
	m.session = sess
	m.mu.Unlock()

	if err := m.store.Save(sess); err != nil {
		m.logger.Error("failed to persist session", zap.Error(err))
	}
}

func (m *Manager) discard() {
	m.mu.Lock()
	m.state = Unauthenticated
	m.session = Session{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Error("failed to clear session snapshot", zap.Error(err))
	}
}
