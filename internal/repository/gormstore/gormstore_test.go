package gormstore

import (
	"context"
	"testing"
	"time"

	"shortener-backend/internal/config"
	"shortener-backend/internal/database"
	"shortener-backend/internal/domain"
	"shortener-backend/internal/repository"
	"shortener-backend/pkg/base62"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSQLiteStorage(t *testing.T) (*Storage, *gorm.DB) {
	t.Helper()
	log := zap.NewNop()

	db, err := database.NewConnection(&config.Database{
		Driver:          "sqlite",
		SQLitePath:      ":memory:",
		ConnMaxLifetime: "1h",
	}, "test", log)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))
	t.Cleanup(func() { _ = database.Close(db, log) })

	return New(db, log), db
}

func strPtr(s string) *string { return &s }

func TestCreateLink_AssignsCodeFromID(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	ctx := context.Background()

	link, err := s.CreateLink(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Positive(t, link.ID)
	assert.Equal(t, domain.LinkCoded, link.State)
	assert.Equal(t, base62.Encode(uint64(link.ID)), link.Code())

	byCode, err := s.FindLinkByCode(ctx, link.Code())
	require.NoError(t, err)
	assert.Equal(t, link.ID, byCode.ID)
	assert.Equal(t, "https://example.com/a", byCode.OriginalURL)

	byURL, err := s.FindLinkByURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, link.ID, byURL.ID)

	byID, err := s.FindLinkByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.Code(), byID.Code())
}

func TestCreateLink_DuplicateURL(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	ctx := context.Background()

	_, err := s.CreateLink(ctx, "https://example.com/dup")
	require.NoError(t, err)

	_, err = s.CreateLink(ctx, "https://example.com/dup")
	assert.ErrorIs(t, err, repository.ErrDuplicateURL)

	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestCreateLink_DistinctCodes(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for _, u := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
		link, err := s.CreateLink(ctx, u)
		require.NoError(t, err)
		assert.False(t, seen[link.Code()])
		seen[link.Code()] = true
	}
}

func TestFindLink_NotFoundAndPendingHidden(t *testing.T) {
	s, db := newSQLiteStorage(t)
	ctx := context.Background()

	_, err := s.FindLinkByCode(ctx, "zzz")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	_, err = s.FindLinkByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	// строка, застрявшая в pending, не видна читателям
	pending := domain.Link{OriginalURL: "https://pending.example.com", State: domain.LinkPending, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&pending).Error)

	_, err = s.FindLinkByURL(ctx, pending.OriginalURL)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestClicks_InsertCountListAndDevices(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	ctx := context.Background()

	link, err := s.CreateLink(ctx, "https://example.com/clicks")
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clicks := []*domain.Click{
		{LinkID: link.ID, ClickedAt: base, DeviceType: strPtr("desktop"), IPAddress: strPtr("10.0.0.1")},
		{LinkID: link.ID, ClickedAt: base.Add(time.Minute), DeviceType: strPtr("mobile")},
		{LinkID: link.ID, ClickedAt: base.Add(2 * time.Minute), DeviceType: strPtr("mobile")},
		{LinkID: link.ID, ClickedAt: base.Add(3 * time.Minute)},
	}
	for _, c := range clicks {
		require.NoError(t, s.InsertClick(ctx, c))
		assert.Positive(t, c.ID)
	}

	count, err := s.CountClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)

	history, err := s.ListClicks(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.True(t, history[0].ClickedAt.Equal(base.Add(3*time.Minute)))
	assert.True(t, history[3].ClickedAt.Equal(base))
	require.NotNil(t, history[3].IPAddress)
	assert.Equal(t, "10.0.0.1", *history[3].IPAddress)

	byDevice, err := s.GetClicksByDevice(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"desktop": 1, "mobile": 2, domain.DeviceUnknown: 1}, byDevice)

	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.EqualValues(t, 4, links[0].ClickCount)
}

func TestInsertClick_UnknownLink(t *testing.T) {
	s, _ := newSQLiteStorage(t)

	err := s.InsertClick(context.Background(), &domain.Click{LinkID: 999})
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestListLinks_NewestFirst(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	ctx := context.Background()

	first, err := s.CreateLink(ctx, "https://example.com/1")
	require.NoError(t, err)
	second, err := s.CreateLink(ctx, "https://example.com/2")
	require.NoError(t, err)

	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, second.ID, links[0].ID)
	assert.Equal(t, first.ID, links[1].ID)
	assert.Zero(t, links[0].ClickCount)
}

func TestDeleteLink_RemovesClicks(t *testing.T) {
	s, db := newSQLiteStorage(t)
	ctx := context.Background()

	link, err := s.CreateLink(ctx, "https://example.com/gone")
	require.NoError(t, err)
	require.NoError(t, s.InsertClick(ctx, &domain.Click{LinkID: link.ID}))
	require.NoError(t, s.InsertClick(ctx, &domain.Click{LinkID: link.ID}))

	code, err := s.DeleteLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.Code(), code)

	_, err = s.FindLinkByCode(ctx, code)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	var remaining int64
	require.NoError(t, db.Model(&domain.Click{}).Where("link_id = ?", link.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, err = s.DeleteLink(ctx, link.ID)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	// URL снова можно сократить
	again, err := s.CreateLink(ctx, "https://example.com/gone")
	require.NoError(t, err)
	assert.Equal(t, base62.Encode(uint64(again.ID)), again.Code())
}

func TestPing(t *testing.T) {
	s, _ := newSQLiteStorage(t)
	assert.NoError(t, s.Ping(context.Background()))
}
