package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/splitty/internal/auth"
	"github.com/mmynk/splitty/internal/metrics"
)

type empty struct{}

// captureOwner is a terminal handler that records the owner it sees.
func captureOwner(owner *string) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		*owner = GetOwnerID(ctx)
		return connect.NewResponse(&empty{}), nil
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	valid, err := jwtManager.Generate("owner-1", "a@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name      string
		header    string
		wantOwner string
		wantErr   bool
	}{
		{name: "valid bearer", header: "Bearer " + valid, wantOwner: "owner-1"},
		{name: "lower case scheme", header: "bearer " + valid, wantOwner: "owner-1"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "no token", header: "Bearer ", wantErr: true},
		{name: "garbage token", header: "Bearer not.a.token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var owner string
			handler := RequireAuth(jwtManager)(captureOwner(&owner))

			req := connect.NewRequest(&empty{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := handler(context.Background(), req)
			if tt.wantErr {
				if connect.CodeOf(err) != connect.CodeUnauthenticated {
					t.Errorf("error = %v, want Unauthenticated", err)
				}
				if owner != "" {
					t.Errorf("handler ran with owner %q", owner)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if owner != tt.wantOwner {
				t.Errorf("owner = %q, want %q", owner, tt.wantOwner)
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if GetOwnerID(ctx) != "" {
		t.Error("empty context should have no owner")
	}
	if got := GetOwnerID(WithOwnerID(ctx, "o")); got != "o" {
		t.Errorf("GetOwnerID() = %q, want o", got)
	}
}

func TestMetricsInterceptor(t *testing.T) {
	m := metrics.New()

	ok := MetricsInterceptor(m)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&empty{}), nil
	})
	failing := MetricsInterceptor(m)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	})

	ctx := context.Background()
	_, _ = ok(ctx, connect.NewRequest(&empty{}))
	_, _ = ok(ctx, connect.NewRequest(&empty{}))
	_, _ = failing(ctx, connect.NewRequest(&empty{}))

	// Requests built outside a handler carry an empty procedure
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues("", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues("", "not_found")); got != 1 {
		t.Errorf("not_found count = %v, want 1", got)
	}
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	wantErr := connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))
	handler := LoggingInterceptor()(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, wantErr
	})

	_, err := handler(WithOwnerID(context.Background(), "o"), connect.NewRequest(&empty{}))
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want the handler's error", err)
	}
}
