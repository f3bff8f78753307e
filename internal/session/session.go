package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// KeyUserID is the session key holding the signed-in agent's identifier.
const KeyUserID = "userID"

// New builds the session manager. Sessions live in the sessions table of the
// application database, so a restart does not sign agents out.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // local dev serves plain HTTP

	return sm
}
