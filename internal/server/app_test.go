package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	gs "github.com/dmitrijs2005/notekeeper/internal/server/grpc"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.PasswordMemoryKiB = 1024
	c.PasswordIterations = 1
	c.PasswordParallelism = 1
	c.ActivityLogDir = t.TempDir()
	return c
}

func TestNewApp_InMemory(t *testing.T) {
	c := testConfig(t)

	app, err := newApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.close(context.Background()) })

	assert.IsType(t, &repomanager.MemoryRepositoryManager{}, app.repos)
	assert.IsType(t, ratelimit.Noop{}, app.limiter)
	assert.NotNil(t, app.grpc)

	_, err = os.Stat(filepath.Join(c.ActivityLogDir, ActivityLogName))
	assert.NoError(t, err)
}

func TestNewApp_BadTokenSettings(t *testing.T) {
	c := testConfig(t)
	c.SigningAlgorithm = "RS256"

	_, err := newApp(context.Background(), c, logging.Nop())
	assert.ErrorContains(t, err, "token service init error")
}

func TestNewApp_UnreachableRedis(t *testing.T) {
	c := testConfig(t)
	c.RedisAddr = "127.0.0.1:1"

	_, err := newApp(context.Background(), c, logging.Nop())
	assert.ErrorContains(t, err, "rate limiter init error")
}

func TestNewHasher(t *testing.T) {
	c := testConfig(t)

	h, err := NewHasher(c)
	require.NoError(t, err)

	encoded, err := h.Hash("pw")
	require.NoError(t, err)
	assert.True(t, h.Verify("pw", encoded))

	c.PasswordIterations = 0
	_, err = NewHasher(c)
	assert.Error(t, err)
}

func TestOpenRepositories_EmptyDSN(t *testing.T) {
	repos, err := OpenRepositories(context.Background(), testConfig(t), logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &repomanager.MemoryRepositoryManager{}, repos)
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(t), logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewApp_BootstrapsSuperuser(t *testing.T) {
	c := testConfig(t)
	c.SuperuserIdentity = "root@x.io"
	c.SuperuserPassword = "root-pw"

	app, err := newApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.close(context.Background()) })

	acc, err := app.repos.Accounts().FindByIdentity(context.Background(), "root@x.io")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperuser, acc.Role)
}

func TestNewApp_BootstrapKeepsExistingAccount(t *testing.T) {
	c := testConfig(t)
	c.SuperuserIdentity = "root@x.io"
	c.SuperuserPassword = "root-pw"

	app, err := newApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.close(context.Background()) })

	hasher, err := NewHasher(c)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(c.SecretKey, c.SigningAlgorithm, c.AccessTokenValidityDuration)
	require.NoError(t, err)
	authn, err := services.NewAuthenticator(app.repos, hasher, tokens)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = authn.Register(ctx, "u1", "pw")
	require.NoError(t, err)

	app.config.SuperuserIdentity = "u1"
	app.config.SuperuserPassword = "other"
	require.NoError(t, app.bootstrapSuperuser(ctx, authn))

	acc, err := app.repos.Accounts().FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, acc.Role)
	assert.True(t, hasher.Verify("pw", acc.PasswordHash))
}

// serveBufconn serves the app's gRPC API in-process and returns a client
// connection.
func serveBufconn(t *testing.T, app *App) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = app.grpc.Serve(ctx, lis)
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
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method, token string, fields map[string]any) *structpb.Struct {
	t.Helper()

	in, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}
	out, err := gs.Invoke(ctx, conn, method, in)
	require.NoError(t, err, method)
	return out
}

func TestApp_InMemorySuperuserReachesStaffOperations(t *testing.T) {
	c := testConfig(t)
	c.SuperuserIdentity = "root@x.io"
	c.SuperuserPassword = "root-pw"

	app, err := newApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.close(context.Background()) })
	conn := serveBufconn(t, app)

	invoke(t, conn, "Register", "", map[string]any{"identity": "u1", "password": "pw"})
	user := invoke(t, conn, "Login", "", map[string]any{"identity": "u1", "password": "pw"}).
		GetFields()["access_token"].GetStringValue()

	id := invoke(t, conn, "CreateRecord", user, map[string]any{"title": "T"}).
		GetFields()["id"].GetStringValue()
	invoke(t, conn, "DeleteRecord", user, map[string]any{"id": id})

	root := invoke(t, conn, "Login", "", map[string]any{"identity": "root@x.io", "password": "root-pw"}).
		GetFields()["access_token"].GetStringValue()
	require.NotEmpty(t, root)

	restored := invoke(t, conn, "RestoreRecord", root, map[string]any{"id": id})
	assert.True(t, restored.GetFields()["active"].GetBoolValue())

	got := invoke(t, conn, "GetRecord", user, map[string]any{"id": id})
	assert.Equal(t, "T", got.GetFields()["title"].GetStringValue())
}
