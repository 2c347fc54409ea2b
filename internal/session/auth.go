// Package session provides the mocked sign-in used to gate project
// persistence. It is not a security boundary.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/hpungsan/blueprint/internal/errors"
)

const (
	userKey    = "user"
	projectKey = "project"
)

// User is a signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credential seeds one account.
type Credential struct {
	Email    string
	Password string
	Name     string
}

// DefaultCredentials is the static demo table.
var DefaultCredentials = []Credential{
	{Email: "demo@blueprint.local", Password: "demo", Name: "Demo Founder"},
	{Email: "analyst@blueprint.local", Password: "analyst", Name: "Plan Analyst"},
}

type account struct {
	user User
	hash []byte
}

// Auth checks credentials against a seeded table and keeps the signed-in
// user and selected project in a session cache.
type Auth struct {
	accounts map[string]account
	cache    *cache.Cache
}

// NewAuth hashes the seeded credentials. The table is a demo fixture, so
// the minimum bcrypt cost keeps startup fast.
func NewAuth(creds []Credential) (*Auth, error) {
	a := &Auth{
		accounts: make(map[string]account, len(creds)),
		cache:    cache.New(12*time.Hour, 10*time.Minute),
	}
	for _, c := range creds {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.MinCost)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		email := normalizeEmail(c.Email)
		a.accounts[email] = account{
			user: User{ID: UserID(email), Email: email, Name: c.Name},
			hash: hash,
		}
	}
	return a, nil
}

// UserID derives a stable id from an email address.
func UserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+normalizeEmail(email))).String()
}

// Login signs in and replaces any current user. A failed attempt leaves the
// session unchanged.
func (a *Auth) Login(email, password string) (*User, error) {
	acct, ok := a.accounts[normalizeEmail(email)]
	if !ok {
		return nil, errors.NewInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, errors.NewInvalidCredentials()
	}

	u := acct.user
	a.cache.Set(userKey, &u, cache.DefaultExpiration)
	a.cache.Delete(projectKey)
	return &u, nil
}

// CurrentUser returns the signed-in user, or nil.
func (a *Auth) CurrentUser() *User {
	if x, found := a.cache.Get(userKey); found {
		u := *x.(*User)
		return &u
	}
	return nil
}

// Logout clears the user and the selected project.
func (a *Auth) Logout() {
	a.cache.Delete(userKey)
	a.cache.Delete(projectKey)
}

// SelectProject remembers projectID for the current session.
func (a *Auth) SelectProject(projectID string) {
	a.cache.Set(projectKey, projectID, cache.DefaultExpiration)
}

// CurrentProject returns the selected project id, or "".
func (a *Auth) CurrentProject() string {
	if x, found := a.cache.Get(projectKey); found {
		return x.(string)
	}
	return ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
