package entrypoint

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	auditrepo "github.com/mrlokans/catalog/internal/database/audit"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/database/genres"
	http_controllers "github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/session"
)

type fakeCleaner struct {
	retention time.Duration
	err       error
}

func (f *fakeCleaner) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return 3, f.err
}

type fakeCounter struct{}

func (fakeCounter) Counts(ctx context.Context) (database.Counts, error) {
	return database.Counts{Genres: 2, Books: 4}, nil
}

type gauge map[string]int64

func (g gauge) SetEntityCount(kind string, count int64) {
	g[kind] = count
}

func TestAuditCleanupJob_RunsInlineWithoutQueue(t *testing.T) {
	cleaner := &fakeCleaner{}

	err := AuditCleanupJob(nil, cleaner, 7)(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cleaner.retention)
}

func TestAuditCleanupJob_PropagatesErrors(t *testing.T) {
	cleaner := &fakeCleaner{err: errors.New("locked")}

	err := AuditCleanupJob(nil, cleaner, 7)(context.Background())

	assert.ErrorContains(t, err, "locked")
}

func TestCatalogStatsJob_RunsInlineWithoutQueue(t *testing.T) {
	g := gauge{}

	require.NoError(t, CatalogStatsJob(nil, fakeCounter{}, g)(context.Background()))

	assert.Equal(t, int64(4), g["books"])
	assert.Equal(t, int64(2), g["genres"])
	assert.Equal(t, int64(0), g["authors"])
}

func TestDecodeSecret(t *testing.T) {
	assert.Nil(t, decodeSecret(""))
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, decodeSecret("deadbeef"))
	assert.Equal(t, []byte("not-hex!"), decodeSecret("not-hex!"))
}

func TestResolveCSRFSecret(t *testing.T) {
	t.Run("generated when unset", func(t *testing.T) {
		first, err := resolveCSRFSecret(config.Security{CSRFEnabled: true})
		require.NoError(t, err)
		second, err := resolveCSRFSecret(config.Security{CSRFEnabled: true})
		require.NoError(t, err)

		assert.Len(t, first, 32)
		assert.NotEqual(t, first, second)
	})

	t.Run("configured secret is decoded", func(t *testing.T) {
		secret, err := resolveCSRFSecret(config.Security{CSRFEnabled: true, CSRFSecret: "deadbeef"})
		require.NoError(t, err)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, secret)
	})

	t.Run("disabled explicitly", func(t *testing.T) {
		secret, err := resolveCSRFSecret(config.Security{CSRFEnabled: false, CSRFSecret: "deadbeef"})
		require.NoError(t, err)
		assert.Nil(t, secret)
	})
}

func TestDefaultConfigRejectsTokenlessFormPost(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.NewConfig()

	secret, err := resolveCSRFSecret(cfg.Security)
	require.NoError(t, err)
	require.NotNil(t, secret)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sessions, err := session.NewManager(sqlDB, cfg.Security, cfg.Session)
	require.NoError(t, err)
	auditor := audit.NewService(auditrepo.NewRepository(db.DB))
	t.Cleanup(auditor.Wait)

	genreRepo := genres.NewRepository(db.DB)
	router, err := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Genres:         genreRepo,
		Authors:        authors.NewRepository(db.DB),
		Books:          books.NewRepository(db.DB),
		Auditor:        auditor,
		SessionManager: sessions,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Security.SecureCookies,
		TemplatesPath:  "../../templates",
		Version:        "test",
	})
	require.NoError(t, err)

	form := url.Values{"name": {"Fantasy"}}
	req := httptest.NewRequest(http.MethodPost, "/catalog/genre/create", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://attacker.example")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	list, err := genreRepo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
