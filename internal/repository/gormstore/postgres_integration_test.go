package gormstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"shortener-backend/internal/config"
	"shortener-backend/internal/database"
	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// startPostgres поднимает PostgreSQL в контейнере; без Docker тест пропускается.
func startPostgres(t *testing.T) *config.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	var (
		container *postgres.PostgresContainer
		err       error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("docker unavailable: %v", r)
			}
		}()
		container, err = postgres.RunContainer(ctx,
			testcontainers.WithImage("postgres:16-alpine"),
			postgres.WithDatabase("shortener"),
			postgres.WithUsername("shortener"),
			postgres.WithPassword("shortener"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return &config.Database{
		Driver:          "postgres",
		Host:            host,
		Port:            port.Int(),
		User:            "shortener",
		Password:        "shortener",
		DBName:          "shortener",
		SSLMode:         "disable",
		Timezone:        "UTC",
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: "1h",
	}
}

func TestPostgres_LinkLifecycle(t *testing.T) {
	cfg := startPostgres(t)
	log := zap.NewNop()

	db, err := database.NewConnection(cfg, "test", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db, log) })
	require.NoError(t, database.AutoMigrate(db, log))

	s := New(db, log)
	ctx := context.Background()

	link, err := s.CreateLink(ctx, "https://example.com/pg")
	require.NoError(t, err)

	_, err = s.CreateLink(ctx, "https://example.com/pg")
	assert.ErrorIs(t, err, repository.ErrDuplicateURL)

	require.NoError(t, s.InsertClick(ctx, &domain.Click{LinkID: link.ID}))
	assert.ErrorIs(t, s.InsertClick(ctx, &domain.Click{LinkID: link.ID + 1000}), repository.ErrLinkNotFound)

	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.EqualValues(t, 1, links[0].ClickCount)

	_, err = s.DeleteLink(ctx, link.ID)
	require.NoError(t, err)
	count, err := s.CountClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostgres_ConcurrentCreateSingleRow(t *testing.T) {
	cfg := startPostgres(t)
	log := zap.NewNop()

	db, err := database.NewConnection(cfg, "test", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db, log) })
	require.NoError(t, database.AutoMigrate(db, log))

	s := New(db, log)
	ctx := context.Background()

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateLink(ctx, "https://example.com/race")
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, repository.ErrDuplicateURL)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}
