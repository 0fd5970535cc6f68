// Package gate guards the admin view behind a single shared credential.
package gate

import (
	"sync"

	"github.com/marcus/storefront/internal/models"
)

// ViewPage is the view a session is currently showing.
type ViewPage string

const (
	PageHome  ViewPage = "home"
	PageMenu  ViewPage = "menu"
	PageAdmin ViewPage = "admin"
)

// Gate holds the privileged flag for one session.
type Gate struct {
	verifier Verifier
	secret   func() string

	mu    sync.Mutex
	admin bool
	page  ViewPage
}

// New returns a Gate that reads the stored credential from secret on every
// attempt, so a credential change takes effect immediately. A nil verifier
// means Plaintext.
func New(v Verifier, secret func() string) *Gate {
	if v == nil {
		v = Plaintext{}
	}
	return &Gate{verifier: v, secret: secret, page: PageHome}
}

// Authenticate compares candidate against the stored credential, falling
// back to the default when none is configured. On success the session
// becomes privileged and moves to the admin view.
func (g *Gate) Authenticate(candidate string) bool {
	stored := ""
	if g.secret != nil {
		stored = g.secret()
	}
	if stored == "" {
		stored = models.DefaultAdminPassword
	}
	if !g.verifier.Verify(candidate, stored) {
		return false
	}
	g.mu.Lock()
	g.admin = true
	g.page = PageAdmin
	g.mu.Unlock()
	return true
}

// Deauthenticate clears the privileged flag and returns to the home view.
func (g *Gate) Deauthenticate() {
	g.mu.Lock()
	g.admin = false
	g.page = PageHome
	g.mu.Unlock()
}

// IsAdmin reports whether the session is privileged.
func (g *Gate) IsAdmin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.admin
}

// Page returns the current view.
func (g *Gate) Page() ViewPage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.page
}

// Navigate switches to a public view. The admin view is only reachable
// through Authenticate.
func (g *Gate) Navigate(p ViewPage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p == PageAdmin && !g.admin {
		return
	}
	g.page = p
}

// Seal returns the stored form of a new credential.
func (g *Gate) Seal(secret string) (string, error) {
	return g.verifier.Seal(secret)
}
