// Package handler serves the portal over gRPC as alumni.v1.PortalService.
// Requests and responses are google.protobuf.Struct messages holding the
// same JSON shapes as the REST API.
package handler

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/middleware"
	"alumni-portal/internal/service"
)

type Handler struct {
	svc    *service.Service
	secret string
	ttl    time.Duration
}

func New(svc *service.Service, secret string, ttl time.Duration) *Handler {
	return &Handler{svc: svc, secret: secret, ttl: ttl}
}

// PortalServiceServer is the handler type the service descriptor accepts.
type PortalServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type method func(*Handler, context.Context, *structpb.Struct) (*structpb.Struct, error)

var methods = []struct {
	name string
	fn   method
}{
	{"Register", (*Handler).Register},
	{"Login", (*Handler).Login},
	{"GetProfile", (*Handler).GetProfile},
	{"UpdateProfile", (*Handler).UpdateProfile},
	{"ListAlumni", (*Handler).ListAlumni},
	{"SearchUsers", (*Handler).SearchUsers},
	{"Connect", (*Handler).Connect},

	{"ListMentors", (*Handler).ListMentors},
	{"RegisterMentor", (*Handler).RegisterMentor},
	{"RequestMentorship", (*Handler).RequestMentorship},
	{"PendingRequests", (*Handler).PendingRequests},
	{"MyMentorships", (*Handler).MyMentorships},
	{"DecideMentorship", (*Handler).DecideMentorship},
	{"ScheduleSession", (*Handler).ScheduleSession},
	{"SubmitFeedback", (*Handler).SubmitFeedback},

	{"ListEvents", (*Handler).ListEvents},
	{"GetEvent", (*Handler).GetEvent},
	{"CreateEvent", (*Handler).CreateEvent},
	{"UpdateEvent", (*Handler).UpdateEvent},
	{"DeleteEvent", (*Handler).DeleteEvent},
	{"Rsvp", (*Handler).Rsvp},
	{"CancelRsvp", (*Handler).CancelRsvp},

	{"ListJobs", (*Handler).ListJobs},
	{"GetJob", (*Handler).GetJob},
	{"CreateJob", (*Handler).CreateJob},
	{"UpdateJob", (*Handler).UpdateJob},
	{"DeleteJob", (*Handler).DeleteJob},
	{"ApplyJob", (*Handler).ApplyJob},

	{"GetStats", (*Handler).GetStats},
	{"ListUsers", (*Handler).ListUsers},
	{"VerifyUser", (*Handler).VerifyUser},
	{"SuspendUser", (*Handler).SuspendUser},
	{"PendingJobs", (*Handler).PendingJobs},
	{"ApproveJob", (*Handler).ApproveJob},
	{"PendingEvents", (*Handler).PendingEvents},
	{"ApproveEvent", (*Handler).ApproveEvent},
}

// ServiceDesc describes alumni.v1.PortalService for grpc.Server.
var ServiceDesc = func() grpc.ServiceDesc {
	d := grpc.ServiceDesc{
		ServiceName: middleware.Service,
		HandlerType: (*PortalServiceServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "alumni/v1/portal.proto",
	}
	for _, m := range methods {
		d.Methods = append(d.Methods, grpc.MethodDesc{MethodName: m.name, Handler: unary(m.name, m.fn)})
	}
	return d
}()

func unary(name string, fn method) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	full := "/" + middleware.Service + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		h := srv.(*Handler)
		if ic == nil {
			return fn(h, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return fn(h, ctx, req.(*structpb.Struct))
		})
	}
}

func RegisterPortalServiceServer(s grpc.ServiceRegistrar, h *Handler) {
	s.RegisterService(&ServiceDesc, h)
}

func actor(ctx context.Context) (access.Actor, error) {
	a, ok := middleware.ActorFrom(ctx)
	if !ok {
		return access.Actor{}, status.Error(codes.Unauthenticated, "no actor")
	}
	return a, nil
}

// decode fills v from the request fields, matching JSON tags.
func decode(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Error(codes.InvalidArgument, "invalid request: "+err.Error())
	}
	return nil
}

// encode renders v, which must marshal to a JSON object.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func fail(err error) (*structpb.Struct, error) {
	return nil, apperr.ToStatus(err)
}

func message(msg string) (*structpb.Struct, error) {
	return encode(map[string]string{"message": msg})
}

type idRequest struct {
	ID string `json:"id"`
}

func (r idRequest) check() error {
	if r.ID == "" {
		return status.Error(codes.InvalidArgument, "id required")
	}
	return nil
}
