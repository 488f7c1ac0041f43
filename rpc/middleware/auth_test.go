package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "ledger-test-secret"

func echoCaller() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(caller))
	})
}

func serveWith(auth *Authenticator, req *http.Request) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	auth.Middleware(echoCaller()).ServeHTTP(res, req)
	return res
}

func TestAuthenticatorResolvesSubject(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: true, HMACSecret: testSecret, Issuer: "ledger", Audience: "clients"}, nil)
	token, err := SignCallerToken(testSecret, TokenRequest{Subject: "user1", Issuer: "ledger", Audience: "clients", TTL: time.Hour})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(HeaderCaller, "impersonated")
	res := serveWith(auth, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Body.String(); got != "user1" {
		t.Fatalf("expected caller user1, got %q", got)
	}
}

func TestAuthenticatorRejectsBadTokens(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: true, HMACSecret: testSecret, Issuer: "ledger", ClockSkew: time.Second}, nil)
	now := time.Now()

	wrongSecret, _ := SignCallerToken("other-secret", TokenRequest{Subject: "user1", Issuer: "ledger"})
	wrongIssuer, _ := SignCallerToken(testSecret, TokenRequest{Subject: "user1", Issuer: "someone-else"})
	expired, _ := SignCallerToken(testSecret, TokenRequest{Subject: "user1", Issuer: "ledger", TTL: time.Minute, Now: now.Add(-time.Hour)})
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "ledger"}).SignedString([]byte(testSecret))
	paddedSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: " user1", Issuer: "ledger"}).SignedString([]byte(testSecret))
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user1", Issuer: "ledger"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"missing":        "",
		"wrong scheme":   "Basic " + wrongSecret,
		"wrong secret":   "Bearer " + wrongSecret,
		"wrong issuer":   "Bearer " + wrongIssuer,
		"expired":        "Bearer " + expired,
		"no subject":     "Bearer " + noSubject,
		"padded subject": "Bearer " + paddedSubject,
		"none algorithm": "Bearer " + noneAlg,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			if res := serveWith(auth, req); res.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", res.Code)
			}
		})
	}
}

func TestAuthenticatorDisabledUsesHeader(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: false}, nil)

	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.Header.Set(HeaderCaller, "user2")
	res := serveWith(auth, req)
	if res.Code != http.StatusOK || res.Body.String() != "user2" {
		t.Fatalf("expected caller user2, got %d %q", res.Code, res.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.Header.Set(HeaderCaller, " user2 ")
	if res := serveWith(auth, req); res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for padded caller, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/rpc", nil)
	if res := serveWith(auth, req); res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without caller header, got %d", res.Code)
	}
}

func TestAuthenticatorWithoutSecret(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Enabled: true}, nil)
	if _, err := auth.Authenticate("anything"); err != errSecretMissing {
		t.Fatalf("expected errSecretMissing, got %v", err)
	}
	if _, err := SignCallerToken(" ", TokenRequest{Subject: "user1"}); err != errSecretMissing {
		t.Fatalf("expected errSecretMissing, got %v", err)
	}
	if _, err := SignCallerToken(testSecret, TokenRequest{}); err != errSubjectMissing {
		t.Fatalf("expected errSubjectMissing, got %v", err)
	}
	if _, err := SignCallerToken(testSecret, TokenRequest{Subject: "user1 "}); err != errSubjectPadded {
		t.Fatalf("expected errSubjectPadded, got %v", err)
	}
}

func TestRequestIDAssignedAndEchoed(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if seen == "" || res.Header().Get(HeaderRequestID) != seen {
		t.Fatalf("expected generated id to be echoed, got %q / %q", seen, res.Header().Get(HeaderRequestID))
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "client-id-1")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if seen != "client-id-1" || res.Header().Get(HeaderRequestID) != "client-id-1" {
		t.Fatalf("expected client id to be kept, got %q", seen)
	}
}
