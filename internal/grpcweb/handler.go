// Package grpcweb bridges browser gRPC-Web calls onto the native gRPC
// server. Payloads pass through untouched.
package grpcweb

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	ctProto = "application/grpc-web+proto"
	ctText  = "application/grpc-web-text"

	maxBody = 4 << 20
)

// Bridge translates gRPC-Web (browser HTTP/1.1) → native gRPC via TCP.
type Bridge struct {
	conn *grpc.ClientConn
}

// New dials the gRPC server at addr (e.g. "localhost:50051").
func New(addr string, opts ...grpc.DialOption) (*Bridge, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	return &Bridge{conn: conn}, nil
}

func (b *Bridge) Close() error { return b.conn.Close() }

// IsGRPCWeb reports whether r is a gRPC-Web call.
func IsGRPCWeb(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc-web")
}

// Handler returns an http.Handler that translates gRPC-Web → gRPC. CORS is
// left to the caller.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !IsGRPCWeb(r) {
			http.Error(w, "not grpc-web", http.StatusUnsupportedMediaType)
			return
		}

		log.Printf("grpc-web → %s", r.URL.Path)
		b.forward(w, r)
	})
}

func (b *Bridge) forward(w http.ResponseWriter, r *http.Request) {
	text := strings.HasPrefix(r.Header.Get("Content-Type"), ctText)
	out := &writer{w: w, text: text}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		out.fail(codes.Internal, "read body failed")
		return
	}
	if text {
		if body, err = base64.StdEncoding.DecodeString(string(body)); err != nil {
			out.fail(codes.InvalidArgument, "bad base64 body")
			return
		}
	}
	if len(body) < 5 {
		out.fail(codes.InvalidArgument, "body too short")
		return
	}

	// grpc-web frame: 1-byte flag + 4-byte big-endian length + protobuf
	msgLen := binary.BigEndian.Uint32(body[1:5])
	if int(msgLen)+5 > len(body) {
		out.fail(codes.InvalidArgument, "incomplete frame")
		return
	}
	payload := body[5 : 5+msgLen]

	// forward metadata
	md := metadata.MD{}
	if vals := r.Header.Values("Authorization"); len(vals) > 0 {
		md.Set("authorization", vals...)
	}
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	// invoke gRPC method using raw codec (pass-through bytes)
	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		st, _ := status.FromError(err)
		log.Printf("grpc-web error: %s: %s", st.Code(), st.Message())
		out.fail(st.Code(), st.Message())
		return
	}
	out.ok(resp.data)
}

// rawMsg wraps raw protobuf bytes.
type rawMsg struct{ data []byte }

// rawCodec passes bytes through without marshal/unmarshal.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(*rawMsg)
	if !ok {
		return nil, fmt.Errorf("raw codec: unexpected %T", v)
	}
	return m.data, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(*rawMsg)
	if !ok {
		return fmt.Errorf("raw codec: unexpected %T", v)
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (rawCodec) Name() string { return "proto" }

// writer emits grpc-web frames, base64-encoded for the text variant.
type writer struct {
	w    http.ResponseWriter
	text bool
}

func (o *writer) start() {
	ct := ctProto
	if o.text {
		ct = ctText + "+proto"
	}
	o.w.Header().Set("Content-Type", ct)
	o.w.WriteHeader(http.StatusOK)
}

func (o *writer) frame(flag byte, data []byte) {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	if o.text {
		f = []byte(base64.StdEncoding.EncodeToString(f))
	}
	_, _ = o.w.Write(f)
}

func (o *writer) fail(code codes.Code, msg string) {
	o.start()
	o.frame(0x80, []byte(fmt.Sprintf("grpc-status:%d\r\ngrpc-message:%s\r\n", code, msg)))
}

func (o *writer) ok(data []byte) {
	o.start()
	// data frame
	o.frame(0x00, data)
	// trailer frame
	o.frame(0x80, []byte("grpc-status:0\r\n"))
}
