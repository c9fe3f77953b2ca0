package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/vncsmyrnk/auth-service/internal/adapters/handler/http"
	"github.com/vncsmyrnk/auth-service/internal/adapters/password"
	repo "github.com/vncsmyrnk/auth-service/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/auth-service/internal/core/services"
)

const testSecret = "test-secret"

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Sweeper     *services.SessionSweeper
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T, lifetimes services.TokenLifetimes) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx, db))

	tokens, err := services.NewTokenService([]byte(testSecret))
	require.NoError(t, err)
	hasher, err := password.NewBcryptHasher(4)
	require.NoError(t, err)

	userRepo := repo.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, tokens, hasher, lifetimes, nil)

	router := handler.NewHandler(handler.Handlers{
		Auth:   handler.NewAuthHandler(authService, nil),
		User:   handler.NewUserHandler(),
		Health: handler.NewHealthHandler(db, nil),
	}, authService, nil)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Sweeper:     services.NewSessionSweeper(userRepo, tokens, nil),
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}
