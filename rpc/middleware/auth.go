package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"assetledger/observability/logging"
)

// HeaderCaller names the caller when authentication is disabled.
const HeaderCaller = "X-Caller"

type AuthConfig struct {
	Enabled    bool
	HMACSecret string
	Issuer     string
	Audience   string
	ClockSkew  time.Duration
}

type contextKey string

const (
	ContextKeyCaller    contextKey = "ledger.caller"
	ContextKeyRequestID contextKey = "ledger.request_id"
)

var (
	errSecretMissing  = errors.New("auth secret not configured")
	errSubjectMissing = errors.New("token has no subject")
	errSubjectPadded  = errors.New("token subject has surrounding whitespace")
)

// paddedPrincipal reports whether p carries leading or trailing whitespace.
// Principals are opaque and are never rewritten.
func paddedPrincipal(p string) bool {
	return strings.TrimSpace(p) != p
}

// CallerFromContext returns the authenticated principal stored by the
// Authenticator.
func CallerFromContext(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(ContextKeyCaller).(string)
	return caller, ok && caller != ""
}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// Authenticator resolves the calling principal for every request. With
// authentication enabled the principal is the `sub` claim of an HMAC signed
// bearer token; otherwise it is read from the X-Caller header.
type Authenticator struct {
	cfg    AuthConfig
	logger *slog.Logger
	secret []byte
}

func NewAuthenticator(cfg AuthConfig, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = 2 * time.Minute
	}
	return &Authenticator{
		cfg:    cfg,
		logger: logger,
		secret: []byte(strings.TrimSpace(cfg.HMACSecret)),
	}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled {
			caller := r.Header.Get(HeaderCaller)
			if strings.TrimSpace(caller) == "" {
				http.Error(w, "missing caller", http.StatusUnauthorized)
				return
			}
			if paddedPrincipal(caller) {
				http.Error(w, "invalid caller", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
			return
		}
		tokenString := extractBearer(r.Header.Get("Authorization"))
		if tokenString == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		caller, err := a.Authenticate(tokenString)
		if err != nil {
			a.logger.Warn("auth: token rejected",
				slog.String("request_id", RequestIDFromContext(r.Context())),
				slog.Any("error", err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		a.logger.Debug("auth: caller resolved", logging.MaskPrincipal("caller", caller))
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// Authenticate validates tokenString and returns its subject.
func (a *Authenticator) Authenticate(tokenString string) (string, error) {
	if len(a.secret) == 0 {
		return "", errSecretMissing
	}
	opts := []jwt.ParserOption{
		jwt.WithLeeway(a.cfg.ClockSkew),
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	if a.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.cfg.Audience))
	}
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("token invalid")
	}
	subject := claims.Subject
	if strings.TrimSpace(subject) == "" {
		return "", errSubjectMissing
	}
	if paddedPrincipal(subject) {
		return "", errSubjectPadded
	}
	return subject, nil
}

// TokenRequest describes a caller token to mint.
type TokenRequest struct {
	Subject  string
	Issuer   string
	Audience string
	TTL      time.Duration
	Now      time.Time
}

// SignCallerToken mints an HS256 token naming req.Subject as the caller.
func SignCallerToken(secret string, req TokenRequest) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", errSecretMissing
	}
	if strings.TrimSpace(req.Subject) == "" {
		return "", errSubjectMissing
	}
	if paddedPrincipal(req.Subject) {
		return "", errSubjectPadded
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	claims := jwt.RegisteredClaims{
		Subject:  req.Subject,
		Issuer:   req.Issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if req.Audience != "" {
		claims.Audience = jwt.ClaimStrings{req.Audience}
	}
	if req.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(req.TTL))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func extractBearer(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
