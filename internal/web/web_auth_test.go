package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogin(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alice@example.com", "secret123")

	rr := ts.login("alice", "secret123")

	// Should redirect to home
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.True(t, ts.cookies.hasSession())

	// Follow redirect and check we're logged in
	rr = ts.followRedirect(rr)
	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "nav", "alice")
	assertContainsText(t, doc, "#signed-in", "alice")
	assertContainsText(t, doc, ".flash-success", "Welcome back, alice!")
}

func TestLoginWithEmail(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alice@example.com", "secret123")

	rr := ts.login("Alice@Example.com", "secret123")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.True(t, ts.cookies.hasSession())
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alice@example.com", "secret123")

	rr := ts.login("alice", "wrongpassword")

	// Should re-render the form with an error
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, ts.cookies.hasSession())
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#login-error", "Invalid username or password")
	assert.Equal(t, "alice", doc.Find("input#identifier").AttrOr("value", ""))
}

func TestLoginMissingFields(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/login", url.Values{"identifier": {"alice"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), "#login-error", "Username and password are required")
}

func TestLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alice@example.com", "secret123")
	ts.login("alice", "secret123")

	rr := ts.post("/logout", url.Values{})

	// Should redirect to home with the session cleared
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.False(t, ts.cookies.hasSession())

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#signup-link")
	assertContainsText(t, doc, ".flash-info", "You have been logged out")
}

func TestAccountRequiresLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/account")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestAccountPage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alice@example.com", "secret123")
	ts.login("alice", "secret123")

	rr := ts.get("/account")

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#account-username", "alice")
	assertContainsText(t, doc, "#account-email", "alice@example.com")
	assertContainsText(t, doc, "#account-created", "1 January 2024")
}

func TestLoginPageRedirectsWhenLoggedIn(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerUser("alice", "alice@example.com", "secret123")
	ts.login("alice", "secret123")

	rr := ts.get("/login")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLoginPage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/login")

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "form#login-form")
	assertContainsElement(t, doc, "input#identifier")
	assertContainsElement(t, doc, "input#password")
	assertNotContainsElement(t, doc, "#login-error")
}

func TestHomePage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#signup-link")
	assertContainsElement(t, doc, "nav a[href='/register']")
	assertNotContainsElement(t, doc, "#signed-in")
}
