package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionCookieHelpers(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "v", 10*time.Minute, false)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].Name != SessionCookieName {
		t.Fatalf("unexpected cookie name: %s", cookies[0].Name)
	}
	if cookies[0].HttpOnly != true || cookies[0].SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes")
	}
	if cookies[0].MaxAge != 600 {
		t.Fatalf("expected MaxAge=600, got %d", cookies[0].MaxAge)
	}

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr, false)
	cookies = rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Fatalf("expected MaxAge=-1 on clear")
	}
}

func TestSessionCookie_SecureUsesSameSiteNone(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "v", time.Hour, true)
	c := rr.Result().Cookies()[0]
	if !c.Secure || c.SameSite != http.SameSiteNoneMode {
		t.Fatalf("expected secure SameSite=None cookie, got secure=%v samesite=%v", c.Secure, c.SameSite)
	}
}

func TestSessionToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SessionToken(r); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}

	r.Header.Set("Authorization", "Bearer abc")
	if got := SessionToken(r); got != "abc" {
		t.Fatalf("expected bearer token, got %q", got)
	}

	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	if got := SessionToken(r); got != "from-cookie" {
		t.Fatalf("expected cookie to win, got %q", got)
	}
}
