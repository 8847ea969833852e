package postgres

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/linnemanlabs/go-core/log"
)

func TestShortenFuncName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full path", "github.com/linnemanlabs/defectscope/internal/frame/pgstore.(*Store).Put", "(*Store).Put"},
		{"already short", "(*Store).Get", "Get"},
		{"empty string", "", ""},
		{"no dots", "main", "main"},
		{"no slashes", "pgstore.(*Store).List", "(*Store).List"},
		{"single segment", "foo.Bar", "Bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := shortenFuncName(tt.in); got != tt.want {
				t.Errorf("shortenFuncName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithHTTPMethod(t *testing.T) {
	t.Parallel()

	if got := methodFromContext(WithHTTPMethod(context.Background(), "POST")); got != "POST" {
		t.Errorf("methodFromContext = %q, want POST", got)
	}
	if got := methodFromContext(WithHTTPMethod(context.Background(), "")); got != "UNKNOWN" {
		t.Errorf("methodFromContext(empty) = %q, want UNKNOWN", got)
	}
}

func TestHTTPMethodMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := HTTPMethodMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = methodFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/", http.NoBody))
	if got != http.MethodPut {
		t.Errorf("method = %q, want PUT", got)
	}
}

func TestRouteFromContext(t *testing.T) {
	t.Parallel()

	if got := routeFromContext(context.Background()); got != "unknown" {
		t.Errorf("routeFromContext(background) = %q, want unknown", got)
	}

	rctx := chi.NewRouteContext()
	rctx.RoutePatterns = []string{"/api/v1/frames/{id}"}
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
	if got := routeFromContext(ctx); got != "/api/v1/frames/{id}" {
		t.Errorf("routeFromContext = %q, want /api/v1/frames/{id}", got)
	}
}

// Tests below touch the global observer and do not run in parallel.

func TestSetQueryObserver(t *testing.T) {
	defer SetQueryObserver(nil)

	called := false
	SetQueryObserver(QueryObserverFunc(func(_ context.Context, _, _, _ string, _ time.Duration) {
		called = true
	}))
	got := getQueryObserver()
	if got == nil {
		t.Fatal("expected non-nil observer after Set")
	}
	got.ObserveQuery(context.Background(), "GET", "/test", "ok", time.Millisecond)
	if !called {
		t.Error("observer was not called")
	}

	SetQueryObserver(nil)
	if got := getQueryObserver(); got != nil {
		t.Errorf("expected nil observer after Set(nil), got %v", got)
	}
}

type recordingTracer struct {
	starts, ends int
}

func (r *recordingTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	r.starts++
	return ctx
}

func (r *recordingTracer) TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData) {
	r.ends++
}

func TestLoggingTracer_ObservesQueries(t *testing.T) {
	defer SetQueryObserver(nil)

	type obs struct{ method, route, outcome string }
	var seen []obs
	SetQueryObserver(QueryObserverFunc(func(_ context.Context, method, route, outcome string, _ time.Duration) {
		seen = append(seen, obs{method, route, outcome})
	}))

	inner := &recordingTracer{}
	tr := wrapQueryTracer(inner)

	ctx := log.WithContext(context.Background(), log.Nop())
	ctx = WithHTTPMethod(ctx, "POST")

	qctx := tr.TraceQueryStart(ctx, nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tr.TraceQueryEnd(qctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})

	qctx = tr.TraceQueryStart(ctx, nil, pgx.TraceQueryStartData{SQL: "INSERT"})
	tr.TraceQueryEnd(qctx, nil, pgx.TraceQueryEndData{Err: errors.New("boom")})

	if inner.starts != 2 || inner.ends != 2 {
		t.Errorf("inner tracer starts/ends = %d/%d, want 2/2", inner.starts, inner.ends)
	}
	want := []obs{{"POST", "unknown", "ok"}, {"POST", "unknown", "error"}}
	if len(seen) != len(want) {
		t.Fatalf("observed %d queries, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("observation %d = %+v, want %+v", i, seen[i], want[i])
		}
	}
}

func TestLoggingTracer_EndWithoutStart(t *testing.T) {
	defer SetQueryObserver(nil)

	called := false
	SetQueryObserver(QueryObserverFunc(func(context.Context, string, string, string, time.Duration) {
		called = true
	}))

	wrapQueryTracer(nil).TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	if called {
		t.Error("observer called for a query that never started")
	}
}
