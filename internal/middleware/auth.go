package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/auth"
)

type ctxKey string

const actorKey ctxKey = "actor"

// Service is the full gRPC name of the portal service.
const Service = "alumni.v1.PortalService"

// skip auth for these
var open = map[string]bool{
	"/" + Service + "/Register": true,
	"/" + Service + "/Login":    true,
}

// Resolver turns a token subject into the current actor. The service
// implementation re-reads the user so suspensions apply to live tokens.
type Resolver interface {
	Actor(ctx context.Context, userID string) (access.Actor, error)
}

func WithActor(ctx context.Context, a access.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func ActorFrom(ctx context.Context) (access.Actor, bool) {
	a, ok := ctx.Value(actorKey).(access.Actor)
	return a, ok
}

// authenticate parses "Bearer <jwt>" and resolves the actor.
func authenticate(ctx context.Context, header, secret string, r Resolver) (access.Actor, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return access.Actor{}, apperr.New(apperr.CodeUnauthenticated, "no token")
	}
	claims, err := auth.ParseToken(raw, secret)
	if err != nil {
		return access.Actor{}, apperr.New(apperr.CodeUnauthenticated, "bad token")
	}
	return r.Actor(ctx, claims.UserID)
}

// Auth is the gRPC interceptor. Methods outside the portal service, such as
// health checks, pass through.
func Auth(secret string, r Resolver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] || !strings.HasPrefix(info.FullMethod, "/"+Service+"/") {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		header := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			header = vals[0]
		}

		actor, err := authenticate(ctx, header, secret, r)
		if err != nil {
			return nil, apperr.ToStatus(err)
		}
		return next(WithActor(ctx, actor), req)
	}
}

// HTTPAuth requires a valid bearer token on every request it wraps.
func HTTPAuth(secret string, r Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			actor, err := authenticate(req.Context(), req.Header.Get("Authorization"), secret, r)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, req.WithContext(WithActor(req.Context(), actor)))
		})
	}
}

// WriteError writes err as {"code", "message"} with the matching status.
func WriteError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	st := http.StatusInternalServerError
	if code != "" {
		st = code.HTTPStatus()
	}
	writeJSON(w, st, string(code), apperr.Message(err))
}

func writeJSON(w http.ResponseWriter, st int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(st)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}
