package grpc

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/notekeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type denyLimiter struct{ calls int }

func (d *denyLimiter) Allow(context.Context, string) bool { d.calls++; return false }
func (d *denyLimiter) Close() error                       { return nil }

type harness struct {
	conn     *grpc.ClientConn
	repos    *repomanager.MemoryRepositoryManager
	authn    *services.Authenticator
	metrics  *metrics.Metrics
	activity *syncBuffer
}

func newHarness(t *testing.T, limiter ratelimit.Limiter) *harness {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret", "HS256", time.Hour)
	require.NoError(t, err)
	hasher := auth.NewHasher(auth.Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	repos := repomanager.NewMemoryRepositoryManager()
	authn, err := services.NewAuthenticator(repos, hasher, tokens)
	require.NoError(t, err)
	m := metrics.New()
	activity := &syncBuffer{}

	srv := NewGRPCServer("bufnet", logging.Nop(), Dependencies{
		Authenticator: authn,
		Access:        services.NewAccessController(repos, tokens),
		Records:       services.NewRecordService(repos),
		Limiter:       limiter,
		Metrics:       m,
		Activity:      logging.NewJSONLogger(activity, slog.LevelInfo),
	})

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	return &harness{conn: conn, repos: repos, authn: authn, metrics: m, activity: activity}
}

func (h *harness) call(t *testing.T, method, token string, fields map[string]any) (*structpb.Struct, error) {
	t.Helper()

	in, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}
	return Invoke(ctx, h.conn, method, in)
}

func (h *harness) register(t *testing.T, identity, password string) {
	t.Helper()
	_, err := h.call(t, "Register", "", map[string]any{"identity": identity, "password": password})
	require.NoError(t, err)
}

func (h *harness) login(t *testing.T, identity, password string) string {
	t.Helper()
	out, err := h.call(t, "Login", "", map[string]any{"identity": identity, "password": password})
	require.NoError(t, err)
	return out.GetFields()["access_token"].GetStringValue()
}

// superuser seeds a Superuser account and returns its token.
func (h *harness) superuser(t *testing.T) string {
	t.Helper()
	_, err := h.authn.EnsureSuperuser(context.Background(), "root@x.io", "root-pw")
	require.NoError(t, err)
	return h.login(t, "root@x.io", "root-pw")
}
