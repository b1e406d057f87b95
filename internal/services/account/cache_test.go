package account_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/events"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/services/account"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

// gatedRepo хранит одного пользователя. Первый GetUserByID читает строку,
// сообщает об этом в read и ждёт release, прежде чем вернуть прочитанное.
type gatedRepo struct {
	mu      sync.Mutex
	user    *models.User
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedRepo(u *models.User) *gatedRepo {
	return &gatedRepo{user: u, read: make(chan struct{}), release: make(chan struct{})}
}

func (r *gatedRepo) CreateUser(context.Context, string, string, *string) (*models.User, error) {
	return nil, storage.ErrUserExists
}

func (r *gatedRepo) GetUserByCredentials(context.Context, string, string) (*models.User, error) {
	return nil, storage.ErrUserNotFound
}

func (r *gatedRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	var snapshot *models.User
	if r.user != nil && r.user.ID == id {
		cp := *r.user
		snapshot = &cp
	}
	r.mu.Unlock()

	r.once.Do(func() {
		close(r.read)
		<-r.release
	})

	if snapshot == nil {
		return nil, storage.ErrUserNotFound
	}
	return snapshot, nil
}

func (r *gatedRepo) UpdateUser(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.user == nil || r.user.ID != id {
		return nil, storage.ErrUserNotFound
	}
	if upd.Name != nil {
		r.user.Name = upd.Name
	}
	if upd.Phone != nil {
		r.user.Phone = upd.Phone
	}
	r.user.UpdatedAt = r.user.UpdatedAt.Add(time.Second)
	cp := *r.user
	return &cp, nil
}

func (r *gatedRepo) DeleteUser(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.user == nil || r.user.ID != id {
		return storage.ErrUserNotFound
	}
	r.user = nil
	return nil
}

func newCachedService(t *testing.T, repo account.UserRepository) *account.Service {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.InitServer(context.Background(), config.RedisConnection{
		RedisAddress: mr.Addr(),
		ProfileTTL:   time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return account.NewService(repo, jwt.NewMaker("test_secret"), c, events.Noop{}, newNoopLogger())
}

// startSlowRead запускает Profile, дожидается чтения строки и возвращает канал
// с результатом, который придёт после close(repo.release).
func startSlowRead(t *testing.T, svc *account.Service, repo *gatedRepo, id uuid.UUID) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := svc.Profile(context.Background(), id)
		done <- err
	}()
	select {
	case <-repo.read:
	case <-time.After(5 * time.Second):
		t.Fatal("profile read did not reach repository")
	}
	return done
}

func TestService_ProfileCache_UpdateDuringRead(t *testing.T) {
	u := newUser("a@b.com")
	repo := newGatedRepo(u)
	svc := newCachedService(t, repo)
	ctx := context.Background()

	done := startSlowRead(t, svc, repo, u.ID)

	updated, err := svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Phone: strPtr("555-1234")})
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)

	close(repo.release)
	require.NoError(t, <-done)

	p, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Phone)
	assert.Equal(t, "555-1234", *p.Phone)
}

func TestService_ProfileCache_DeleteDuringRead(t *testing.T) {
	u := newUser("a@b.com")
	repo := newGatedRepo(u)
	svc := newCachedService(t, repo)
	ctx := context.Background()

	done := startSlowRead(t, svc, repo, u.ID)

	require.NoError(t, svc.DeleteProfile(ctx, u.ID))

	close(repo.release)
	require.NoError(t, <-done)

	_, err := svc.Profile(ctx, u.ID)
	assert.ErrorIs(t, err, account.ErrUserNotFound)
}

func TestService_ProfileCache_ReadAfterUpdate(t *testing.T) {
	u := newUser("a@b.com")
	repo := newGatedRepo(u)
	close(repo.release)
	svc := newCachedService(t, repo)
	ctx := context.Background()

	_, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Name: strPtr("Alice")})
	require.NoError(t, err)

	p, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Alice", *p.Name)
}
