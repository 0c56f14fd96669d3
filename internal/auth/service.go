package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidLink  = errors.New("invalid magic link")
	ErrLinkExpired  = errors.New("magic link expired")
	ErrWrongDevice  = errors.New("magic link must be opened in the browser that requested it")
)

// Options tune the service; zero values fall back to the defaults the
// app ships with.
type Options struct {
	CookieName     string
	DeviceCookie   string
	SessionTTL     time.Duration
	LoginTTL       time.Duration
	Origin         string
	CookieSecure   string // "", "true", "false"; empty auto-detects
	CookieSameSite string
}

type Service struct {
	repo   Repo
	mailer Mailer
	logger *log.Logger

	cookieName   string
	deviceCookie string
	sessionTTL   time.Duration
	loginTTL     time.Duration
	origin       string

	cookieSecure   string
	cookieSameSite http.SameSite
}

func NewService(repo Repo, mailer Mailer, logger *log.Logger, opts Options) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if mailer == nil {
		mailer = ConsoleMailer{Logger: logger}
	}
	s := &Service{
		repo:           repo,
		mailer:         mailer,
		logger:         logger,
		cookieName:     opts.CookieName,
		deviceCookie:   opts.DeviceCookie,
		sessionTTL:     opts.SessionTTL,
		loginTTL:       opts.LoginTTL,
		origin:         opts.Origin,
		cookieSecure:   strings.ToLower(strings.TrimSpace(opts.CookieSecure)),
		cookieSameSite: parseSameSite(opts.CookieSameSite),
	}
	if s.cookieName == "" {
		s.cookieName = "planner_session"
	}
	if s.deviceCookie == "" {
		s.deviceCookie = "planner_login"
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = 30 * 24 * time.Hour
	}
	if s.loginTTL <= 0 {
		s.loginTTL = 30 * time.Minute
	}
	if s.origin == "" {
		s.origin = "http://localhost:8090"
	}
	return s
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return ErrInvalidEmail
	}
	if strings.ToLower(addr.Address) != email {
		return ErrInvalidEmail
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// RequestLogin validates the email, mints a login token bound to the
// requesting device, stores its hash and emails the magic link.
func (s *Service) RequestLogin(ctx context.Context, email, landingPage, device string, now time.Time) (time.Time, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return time.Time{}, err
	}
	if landingPage == "" || !strings.HasPrefix(landingPage, "/") {
		landingPage = "/"
	}

	raw, err := generateToken()
	if err != nil {
		return time.Time{}, err
	}

	t := LoginToken{
		ID:          newID("login"),
		Email:       email,
		TokenHash:   hashToken(raw),
		DeviceHash:  hashToken(device),
		LandingPage: landingPage,
		RequestedAt: now,
		ExpiresAt:   now.Add(s.loginTTL),
	}
	if err := s.repo.PutLoginToken(ctx, t); err != nil {
		return time.Time{}, err
	}

	if err := s.mailer.SendMagicLink(email, s.magicLink(raw)); err != nil {
		return time.Time{}, err
	}
	return t.ExpiresAt, nil
}

func (s *Service) magicLink(rawToken string) string {
	u, err := url.Parse(s.origin)
	if err != nil {
		u = &url.URL{Scheme: "http", Host: "localhost:8090"}
	}
	u.Path = "/auth/validate"
	q := url.Values{}
	q.Set("token", rawToken)
	u.RawQuery = q.Encode()
	return u.String()
}

// ValidateLogin consumes a magic-link token: checks expiry and device
// binding, creates the user on first login, and opens a session.
// Returns the session token for the cookie and the page to land on.
func (s *Service) ValidateLogin(ctx context.Context, rawToken, device string, now time.Time) (User, string, time.Time, string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return User{}, "", time.Time{}, "", ErrInvalidLink
	}

	t, ok, err := s.repo.GetLoginTokenByHash(ctx, hashToken(rawToken))
	if err != nil {
		return User{}, "", time.Time{}, "", err
	}
	if !ok {
		return User{}, "", time.Time{}, "", ErrInvalidLink
	}

	if now.After(t.ExpiresAt) {
		_ = s.repo.DeleteLoginToken(ctx, t.ID)
		return User{}, "", time.Time{}, "", ErrLinkExpired
	}
	if t.DeviceHash != hashToken(device) {
		return User{}, "", time.Time{}, "", ErrWrongDevice
	}

	// Single use.
	if err := s.repo.DeleteLoginToken(ctx, t.ID); err != nil {
		return User{}, "", time.Time{}, "", err
	}

	u, _, err := s.repo.GetOrCreateUser(ctx, t.Email, now)
	if err != nil {
		return User{}, "", time.Time{}, "", err
	}

	token, err := generateToken()
	if err != nil {
		return User{}, "", time.Time{}, "", err
	}

	exp := now.Add(s.sessionTTL)
	sess := Session{
		ID:        newID("sess"),
		UserID:    u.ID,
		TokenHash: hashToken(token),
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: exp,
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return User{}, "", time.Time{}, "", err
	}
	return u, token, exp, t.LandingPage, nil
}

func (s *Service) AuthenticateRequest(r *http.Request, now time.Time) (User, Session, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return User{}, Session{}, false
	}

	sess, ok, err := s.repo.GetSessionByTokenHash(r.Context(), hashToken(cookie.Value))
	if err != nil || !ok {
		return User{}, Session{}, false
	}

	if now.After(sess.ExpiresAt) {
		_ = s.repo.DeleteSessionByID(r.Context(), sess.ID)
		return User{}, Session{}, false
	}

	u, ok, err := s.repo.GetUserByID(r.Context(), sess.UserID)
	if err != nil || !ok {
		_ = s.repo.DeleteSessionByID(r.Context(), sess.ID)
		return User{}, Session{}, false
	}

	// Best-effort last-seen update, throttled to reduce writes.
	if now.Sub(sess.LastSeen) >= 5*time.Minute {
		_ = s.repo.TouchSession(r.Context(), sess.ID, now)
		sess.LastSeen = now
	}

	return u, sess, true
}

func (s *Service) RevokeSessionForRequest(r *http.Request) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	_ = s.repo.DeleteSessionByTokenHash(r.Context(), hashToken(cookie.Value))
}

// DeviceID reads the device cookie, minting one when absent. The value
// ties a magic link to the browser that asked for it.
func (s *Service) DeviceID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(s.deviceCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	device, err := generateToken()
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.deviceCookie,
		Value:    device,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: s.cookieSameSite,
	})
	return device
}

func (s *Service) shouldUseSecureCookie(r *http.Request) bool {
	switch s.cookieSecure {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func (s *Service) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: s.cookieSameSite,
	})
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: s.cookieSameSite,
	})
}

// RequireAPI guards JSON endpoints: 401 without a valid session, user
// and session in context otherwise.
func (s *Service) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, sess, ok := s.AuthenticateRequest(r, time.Now())
		if !ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
			return
		}
		ctx := WithSession(WithUser(r.Context(), u), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePage guards HTML routes: unauthenticated visitors bounce to
// /login carrying the page they meant to land on.
func (s *Service) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, sess, ok := s.AuthenticateRequest(r, time.Now())
		if !ok {
			target := "/login"
			if p := r.URL.Path; p != "" && p != "/" {
				target += "?landing=" + url.QueryEscape(p)
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		ctx := WithSession(WithUser(r.Context(), u), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
