// Package session keeps one-shot flash messages across redirects in a
// SQLite-backed scs session.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/config"
)

const flashKey = "flash"

// Manager wraps scs.SessionManager with the flash helpers used by the
// handlers. A nil *Manager is valid and stores nothing.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewManager(sqlDB *sql.DB, security config.Security, cfg config.Session) (*Manager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2

	sm.Cookie.Name = "catalog_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = security.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // Lax so the flash survives the POST redirect
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// Flash stores a message to be shown on the next rendered page.
func (m *Manager) Flash(c *gin.Context, message string) {
	if m == nil || message == "" {
		return
	}
	m.Put(c.Request.Context(), flashKey, message)
}

// PopFlash returns the pending message and removes it from the session.
func (m *Manager) PopFlash(c *gin.Context) string {
	if m == nil {
		return ""
	}
	return m.PopString(c.Request.Context(), flashKey)
}
