package middleware_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/auth"
	"alumni-portal/internal/middleware"
	"alumni-portal/internal/model"
)

const secret = "test-secret"

// users resolves known ids; "banned" is suspended.
type users map[string]model.Role

func (u users) Actor(_ context.Context, id string) (access.Actor, error) {
	if id == "banned" {
		return access.Actor{}, apperr.Forbidden("account suspended")
	}
	role, ok := u[id]
	if !ok {
		return access.Actor{}, apperr.New(apperr.CodeUnauthenticated, "unknown user")
	}
	return access.Actor{UserID: id, Role: role}, nil
}

var resolver = users{"u1": model.RoleAlumni, "banned": model.RoleAlumni}

func bearer(t *testing.T, uid string) string {
	t.Helper()
	tok, err := auth.MakeToken(uid, model.RoleAlumni, secret, 0)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func method(name string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: "/" + middleware.Service + "/" + name}
}

// echo returns the actor the interceptor stored.
func echo(ctx context.Context, _ any) (any, error) {
	a, _ := middleware.ActorFrom(ctx)
	return a, nil
}

func TestAuthInterceptor(t *testing.T) {
	ic := middleware.Auth(secret, resolver)

	tests := []struct {
		name   string
		method string
		header string
		want   codes.Code
	}{
		{"open method", "Login", "", codes.OK},
		{"health passes", "", "", codes.OK},
		{"no token", "GetProfile", "", codes.Unauthenticated},
		{"garbage token", "GetProfile", "Bearer nope", codes.Unauthenticated},
		{"unknown user", "GetProfile", bearer(t, "ghost"), codes.Unauthenticated},
		{"suspended", "GetProfile", bearer(t, "banned"), codes.PermissionDenied},
		{"valid", "GetProfile", bearer(t, "u1"), codes.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := method(tt.method)
			if tt.method == "" {
				info = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
			}
			md := metadata.MD{}
			if tt.header != "" {
				md.Set("authorization", tt.header)
			}
			ctx := metadata.NewIncomingContext(context.Background(), md)
			_, err := ic(ctx, nil, info, echo)
			if got := status.Code(err); got != tt.want {
				t.Errorf("expected %v, got %v (%v)", tt.want, got, err)
			}
		})
	}
}

func TestAuthInterceptorSetsActor(t *testing.T) {
	ic := middleware.Auth(secret, resolver)
	md := metadata.Pairs("authorization", bearer(t, "u1"))
	ctx := metadata.NewIncomingContext(context.Background(), md)

	out, err := ic(ctx, nil, method("GetProfile"), echo)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	a := out.(access.Actor)
	if a.UserID != "u1" || a.Role != model.RoleAlumni {
		t.Errorf("actor: %+v", a)
	}
}

func TestHTTPAuth(t *testing.T) {
	h := middleware.HTTPAuth(secret, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := middleware.ActorFrom(r.Context())
		if !ok || a.UserID != "u1" {
			t.Errorf("actor: %+v", a)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad", "Bearer x.y.z", http.StatusUnauthorized},
		{"suspended", bearer(t, "banned"), http.StatusForbidden},
		{"ok", bearer(t, "u1"), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestRateLimitInterceptor(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2)
	defer rl.Close()
	ic := middleware.RateLimit(rl)

	call := func(port int, name string) codes.Code {
		ctx := peer.NewContext(context.Background(), &peer.Peer{
			Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: port},
		})
		_, err := ic(ctx, nil, method(name), echo)
		return status.Code(err)
	}

	// new ports from the same host share one bucket
	if c := call(1000, "Login"); c != codes.OK {
		t.Fatalf("first: %v", c)
	}
	if c := call(1001, "Login"); c != codes.OK {
		t.Fatalf("second: %v", c)
	}
	if c := call(1002, "Register"); c != codes.ResourceExhausted {
		t.Fatalf("third: expected ResourceExhausted, got %v", c)
	}
	// other methods are not limited
	if c := call(1003, "ListEvents"); c != codes.OK {
		t.Fatalf("unlimited method: %v", c)
	}
}

func TestHTTPRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	defer rl.Close()
	h := middleware.HTTPRateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	got := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		got = append(got, rec.Code)
	}
	if got[0] != http.StatusOK || got[1] != http.StatusTooManyRequests {
		t.Errorf("codes: %v", got)
	}

	// a different host has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.0.2.8:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other host: %d", rec.Code)
	}
}
