package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/water_backoffice/internal/repo"
	"github.com/Skotchmaster/water_backoffice/internal/service"
	"github.com/Skotchmaster/water_backoffice/pkg/db"
	"github.com/Skotchmaster/water_backoffice/pkg/tokens"
)

type integrationEnv struct {
	repo *repo.GormRepo
	auth *service.AuthService
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()

	dsn := os.Getenv("WATER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("WATER_TEST_DATABASE_URL is required for integration tests")
	}

	ctx := context.Background()
	gdb, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	r := repo.New(gdb)
	require.NoError(t, r.Migrate(ctx))
	require.NoError(t, r.Seed(ctx, repo.AdminSeed{}))

	iss, err := tokens.NewIssuer(tokens.Config{
		Secret:     []byte("integration-secret-integration-secret"),
		Issuer:     "water-backoffice",
		Audience:   "water-backoffice-clients",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	return &integrationEnv{repo: r, auth: &service.AuthService{Repo: r, Tokens: iss}}
}

func uniqueUsername() string {
	return "u_" + uuid.NewString()[:8]
}

func (env *integrationEnv) register(t *testing.T, roles ...string) string {
	t.Helper()
	username := uniqueUsername()
	_, err := env.auth.Register(context.Background(), service.RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "Str0ng!Pass",
		FirstName: "Int",
		LastName:  "Test",
		Roles:     roles,
	})
	require.NoError(t, err)
	return username
}

func TestRegister_DuplicateIsRejected(t *testing.T) {
	env := newIntegrationEnv(t)
	username := env.register(t, "Viewer")

	_, err := env.auth.Register(context.Background(), service.RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "Str0ng!Pass",
		FirstName: "Int",
		LastName:  "Test",
		Roles:     []string{"Viewer"},
	})
	assert.ErrorIs(t, err, service.ErrAlreadyExists)
}

// Only one of several concurrent refreshes with the same token may win.
func TestRefresh_ConcurrentRotationHasOneWinner(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()
	username := env.register(t, "Viewer")

	res, err := env.auth.Login(ctx, username, "Str0ng!Pass")
	require.NoError(t, err)

	const attempts = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.auth.Refresh(ctx, res.AccessToken, res.RefreshToken); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
