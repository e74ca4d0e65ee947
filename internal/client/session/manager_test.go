package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider is a scriptable identity provider.
type fakeProvider struct {
	mu        sync.Mutex
	signInFn  func(email, password string) (Session, error)
	currentFn func(credential string) (Session, error)
	signedOut []string
	changes   chan Change
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{changes: make(chan Change, 4)}
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (Session, error) {
	p.mu.Lock()
	fn := p.signInFn
	p.mu.Unlock()
	if fn == nil {
		return Session{}, ErrBadCredentials
	}
	return fn(email, password)
}

func (p *fakeProvider) Current(_ context.Context, credential string) (Session, error) {
	p.mu.Lock()
	fn := p.currentFn
	p.mu.Unlock()
	if fn == nil {
		return Session{}, ErrSignedOut
	}
	return fn(credential)
}

func (p *fakeProvider) SignOut(_ context.Context, credential string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedOut = append(p.signedOut, credential)
	return nil
}

func (p *fakeProvider) Changes() <-chan Change { return p.changes }

func validSession(uid, token string) Session {
	return Session{
		Subject:    Subject{Email: uid + "@example.com", UID: uid},
		Credential: token,
		IssuedAt:   time.Now(),
	}
}

func TestManager_SignIn(t *testing.T) {
	provider := newFakeProvider()
	provider.signInFn = func(email, password string) (Session, error) {
		if password != "correct" {
			return Session{}, ErrBadCredentials
		}
		return validSession("user-a", "tok-1"), nil
	}
	store := NewFileStore(t.TempDir())
	manager := NewManager(provider, store, zap.NewNop())

	t.Run("rejected sign-in keeps previous state", func(t *testing.T) {
		err := manager.SignIn(context.Background(), "a@example.com", "wrong")
		assert.ErrorIs(t, err, ErrBadCredentials)
		assert.Equal(t, Unauthenticated, manager.State())

		_, err = store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("accepted sign-in persists session", func(t *testing.T) {
		require.NoError(t, manager.SignIn(context.Background(), "a@example.com", "correct"))
		assert.Equal(t, Authenticated, manager.State())

		cred, err := manager.Credential()
		require.NoError(t, err)
		assert.Equal(t, "tok-1", cred)

		stored, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "user-a", stored.Subject.UID)
	})
}

func TestManager_StartRestoresSnapshotSynchronously(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(validSession("user-a", "tok-cached")))

	provider := newFakeProvider()
	confirmStarted := make(chan struct{})
	confirmRelease := make(chan struct{})
	provider.currentFn = func(credential string) (Session, error) {
		close(confirmStarted)
		<-confirmRelease
		return validSession("user-a", "tok-fresh"), nil
	}

	manager := NewManager(provider, store, zap.NewNop())
	manager.Start(context.Background())
	defer manager.Stop()

	// До ответа провайдера уже видим кэшированную сессию — никакой
	// вспышки «не залогинен» на старте
	assert.Equal(t, Authenticated, manager.State())
	cred, err := manager.Credential()
	require.NoError(t, err)
	assert.Equal(t, "tok-cached", cred)

	<-confirmStarted
	close(confirmRelease)

	// Провайдер подтвердил и обновил токен
	require.Eventually(t, func() bool {
		cred, err := manager.Credential()
		return err == nil && cred == "tok-fresh"
	}, time.Second, 10*time.Millisecond)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-fresh", stored.Credential)
}

func TestManager_ProviderOverridesStaleCache(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(validSession("user-a", "tok-stale")))

	provider := newFakeProvider()
	provider.currentFn = func(credential string) (Session, error) {
		return Session{}, ErrSignedOut
	}

	manager := NewManager(provider, store, zap.NewNop())
	manager.Start(context.Background())
	defer manager.Stop()

	// Провайдер авторитетен: кэш отбрасывается
	require.Eventually(t, func() bool {
		return manager.State() == Unauthenticated
	}, time.Second, 10*time.Millisecond)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_UnreachableProviderKeepsCache(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(validSession("user-a", "tok-cached")))

	provider := newFakeProvider()
	confirmDone := make(chan struct{})
	provider.currentFn = func(credential string) (Session, error) {
		defer close(confirmDone)
		return Session{}, context.DeadlineExceeded
	}

	manager := NewManager(provider, store, zap.NewNop())
	manager.Start(context.Background())
	defer manager.Stop()

	<-confirmDone
	// Недоступность провайдера — не повод выкидывать сессию
	assert.Equal(t, Authenticated, manager.State())
}

func TestManager_ChangeRefreshesSession(t *testing.T) {
	store := NewFileStore(t.TempDir())
	provider := newFakeProvider()
	provider.signInFn = func(email, password string) (Session, error) {
		return validSession("user-a", "tok-1"), nil
	}

	manager := NewManager(provider, store, zap.NewNop())
	manager.Start(context.Background())
	defer manager.Stop()

	require.NoError(t, manager.SignIn(context.Background(), "a@example.com", "pw"))

	// Тихое обновление токена со стороны провайдера
	provider.changes <- Change{
		Subject:    &Subject{Email: "a@example.com", UID: "user-a"},
		Credential: "tok-2",
	}

	require.Eventually(t, func() bool {
		cred, err := manager.Credential()
		return err == nil && cred == "tok-2"
	}, time.Second, 10*time.Millisecond)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", stored.Credential)
}

func TestManager_ChangeInvalidatesSession(t *testing.T) {
	store := NewFileStore(t.TempDir())
	provider := newFakeProvider()
	provider.signInFn = func(email, password string) (Session, error) {
		return validSession("user-a", "tok-1"), nil
	}

	manager := NewManager(provider, store, zap.NewNop())
	manager.Start(context.Background())
	defer manager.Stop()

	require.NoError(t, manager.SignIn(context.Background(), "a@example.com", "pw"))

	provider.changes <- Change{Subject: nil}

	require.Eventually(t, func() bool {
		return manager.State() == Unauthenticated
	}, time.Second, 10*time.Millisecond)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_SignOut(t *testing.T) {
	store := NewFileStore(t.TempDir())
	provider := newFakeProvider()
	provider.signInFn = func(email, password string) (Session, error) {
		return validSession("user-a", "tok-1"), nil
	}

	manager := NewManager(provider, store, zap.NewNop())
	require.NoError(t, manager.SignIn(context.Background(), "a@example.com", "pw"))
	require.NoError(t, manager.SignOut(context.Background()))

	assert.Equal(t, Unauthenticated, manager.State())
	_, err := manager.Credential()
	assert.ErrorIs(t, err, ErrNoSession)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Contains(t, provider.signedOut, "tok-1")
}
