package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/signupgate/internal/factory"
	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/services/signup"
	"github.com/mcoot/signupgate/internal/web"
	"github.com/mcoot/signupgate/internal/web/middleware"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a new test server whose gates use the delay strategy
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()
	return newWebTestServerWith(t, factory.NewTestApp())
}

// newWebTestServerWith creates a test server around an existing test app
func newWebTestServerWith(t *testing.T, app *factory.TestApp) *webTestServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	t.Cleanup(func() { _ = app.Close() })

	router := web.NewRouter(web.RouterConfig{
		Logger:        logger,
		AuthService:   app.AuthService,
		SignupManager: app.SignupManager,
		HubManager:    app.HubManager,
		Outbox:        app.Outbox,
		Clock:         app.MockClock,
		Metrics:       app.Metrics,
		StaticDir:     "", // No static files in tests
	})

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the login session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies[middleware.SessionCookieName]
	return ok
}

// signupID returns the signup session id held by the browser
func (j *cookieJar) signupID() string {
	if c, ok := j.cookies[middleware.SignupCookieName]; ok {
		return c.Value
	}
	return ""
}

// Helper functions for common test operations

// openSignup loads the registration page, creating a signup session
func (ts *webTestServer) openSignup() *goquery.Document {
	ts.t.Helper()
	rr := ts.get("/register")
	require.Equal(ts.t, http.StatusOK, rr.Code)
	require.NotEmpty(ts.t, ts.cookies.signupID(), "Expected signup cookie to be set")
	return parseHTML(rr.Body)
}

// submitForm posts the registration form and follows the redirect
func (ts *webTestServer) submitForm(username, email, password string) *goquery.Document {
	ts.t.Helper()
	form := url.Values{
		model.FieldUsername: {username},
		model.FieldEmail:    {email},
		model.FieldPassword: {password},
	}
	rr := ts.post("/register", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code)
	require.Equal(ts.t, "/register", rr.Header().Get("Location"))

	rr = ts.followRedirect(rr)
	require.Equal(ts.t, http.StatusOK, rr.Code)
	return parseHTML(rr.Body)
}

// challenge posts one challenge input and returns the redirect response
func (ts *webTestServer) challenge(form url.Values) *httptest.ResponseRecorder {
	ts.t.Helper()
	rr := ts.post("/register/challenge", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code)
	return rr
}

// gate returns the browser's signup gate
func (ts *webTestServer) gate() *signup.Gate {
	ts.t.Helper()
	gate, err := ts.app.SignupManager.Get(ts.cookies.signupID())
	require.NoError(ts.t, err)
	return gate
}

// passDelay acknowledges the delay challenge, lets it elapse and waits for
// the registration call to settle
func (ts *webTestServer) passDelay() {
	ts.t.Helper()
	ts.challenge(url.Values{"acknowledge": {"true"}})
	ts.app.MockClock.Advance(signup.DefaultVerifyDelay)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(ts.t, ts.gate().Await(ctx))
}

// registerUser signs up through the web flow and leaves the browser on the
// login page
func (ts *webTestServer) registerUser(username, email, password string) *goquery.Document {
	ts.t.Helper()
	ts.openSignup()
	ts.submitForm(username, email, password)
	ts.passDelay()

	rr := ts.get("/register")
	require.Equal(ts.t, http.StatusSeeOther, rr.Code)
	require.Equal(ts.t, signup.LoginPath, rr.Header().Get("Location"))

	rr = ts.followRedirect(rr)
	require.Equal(ts.t, http.StatusOK, rr.Code)
	return parseHTML(rr.Body)
}

// login posts the login form
func (ts *webTestServer) login(identifier, password string) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.post("/login", url.Values{"identifier": {identifier}, "password": {password}})
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
