package auth

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type captureMailer struct {
	to   string
	link string
}

func (m *captureMailer) SendMagicLink(to, link string) error {
	m.to = to
	m.link = link
	return nil
}

func newServiceForTests(t *testing.T) (*Service, *captureMailer) {
	t.Helper()
	mailer := &captureMailer{}
	svc := NewService(NewMemoryRepo(), mailer, log.New(io.Discard, "", 0), Options{
		Origin: "https://planner.example",
	})
	return svc, mailer
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	i := strings.Index(link, "token=")
	if i < 0 {
		t.Fatalf("no token in link %q", link)
	}
	return link[i+len("token="):]
}

func TestMagicLinkRoundTrip(t *testing.T) {
	svc, mailer := newServiceForTests(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

	if _, err := svc.RequestLogin(ctx, "Tester@Example.com ", "/calendar/2026-02-07", "device-1", now); err != nil {
		t.Fatalf("request login: %v", err)
	}
	if mailer.to != "tester@example.com" {
		t.Fatalf("email not normalized: %q", mailer.to)
	}
	if !strings.HasPrefix(mailer.link, "https://planner.example/auth/validate?token=") {
		t.Fatalf("unexpected link %q", mailer.link)
	}

	u, token, exp, landing, err := svc.ValidateLogin(ctx, tokenFromLink(t, mailer.link), "device-1", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if u.Email != "tester@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if landing != "/calendar/2026-02-07" {
		t.Fatalf("unexpected landing %q", landing)
	}
	if token == "" || !exp.After(now) {
		t.Fatalf("bad session token/expiry")
	}

	// Second use of the same link must fail.
	if _, _, _, _, err := svc.ValidateLogin(ctx, tokenFromLink(t, mailer.link), "device-1", now.Add(2*time.Minute)); err != ErrInvalidLink {
		t.Fatalf("expected ErrInvalidLink on reuse, got %v", err)
	}
}

func TestValidateRejectsWrongDevice(t *testing.T) {
	svc, mailer := newServiceForTests(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

	if _, err := svc.RequestLogin(ctx, "tester@example.com", "/", "device-1", now); err != nil {
		t.Fatalf("request login: %v", err)
	}
	if _, _, _, _, err := svc.ValidateLogin(ctx, tokenFromLink(t, mailer.link), "device-2", now.Add(time.Minute)); err != ErrWrongDevice {
		t.Fatalf("expected ErrWrongDevice, got %v", err)
	}
}

func TestValidateRejectsExpiredLink(t *testing.T) {
	svc, mailer := newServiceForTests(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

	if _, err := svc.RequestLogin(ctx, "tester@example.com", "/", "device-1", now); err != nil {
		t.Fatalf("request login: %v", err)
	}
	if _, _, _, _, err := svc.ValidateLogin(ctx, tokenFromLink(t, mailer.link), "device-1", now.Add(31*time.Minute)); err != ErrLinkExpired {
		t.Fatalf("expected ErrLinkExpired, got %v", err)
	}
}

func TestRequestLoginRejectsBadEmail(t *testing.T) {
	svc, _ := newServiceForTests(t)
	ctx := context.Background()
	now := time.Now()

	for _, email := range []string{"", "no-at-sign", "two@@example.com"} {
		if _, err := svc.RequestLogin(ctx, email, "/", "d", now); err != ErrInvalidEmail {
			t.Fatalf("email %q: expected ErrInvalidEmail, got %v", email, err)
		}
	}
}

func TestAuthenticateRequestExpiredSessionIsRejected(t *testing.T) {
	svc, mailer := newServiceForTests(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)

	if _, err := svc.RequestLogin(ctx, "expired@example.com", "/", "device-1", now); err != nil {
		t.Fatalf("request login: %v", err)
	}
	_, token, exp, _, err := svc.ValidateLogin(ctx, tokenFromLink(t, mailer.link), "device-1", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: svc.cookieName, Value: token})

	if _, _, ok := svc.AuthenticateRequest(req, exp.Add(time.Second)); ok {
		t.Fatalf("expected expired session to be rejected")
	}
	if _, ok, _ := svc.repo.GetSessionByTokenHash(ctx, hashToken(token)); ok {
		t.Fatalf("expected expired session to be removed from repo")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, mailer := newServiceForTests(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)

	if _, err := svc.RequestLogin(ctx, "bye@example.com", "/", "device-1", now); err != nil {
		t.Fatalf("request login: %v", err)
	}
	_, token, _, _, err := svc.ValidateLogin(ctx, tokenFromLink(t, mailer.link), "device-1", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	h := NewHandler(svc)
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: svc.cookieName, Value: token})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	check := httptest.NewRequest("GET", "/", nil)
	check.AddCookie(&http.Cookie{Name: svc.cookieName, Value: token})
	if _, _, ok := svc.AuthenticateRequest(check, now.Add(2*time.Minute)); ok {
		t.Fatalf("session survived logout")
	}
}
