package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type ctxKey string

const accountKey ctxKey = "account"

func withAccount(ctx context.Context, a *models.Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

// AccountFromContext returns the account resolved by the authentication
// interceptor.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey).(*models.Account)
	return a, ok && a != nil
}

func methodName(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}

func (s *GRPCServer) policy(fullMethod string) (services.Policy, bool) {
	op, ok := operationFor(fullMethod)
	if !ok {
		return services.Policy{}, false
	}
	return services.PolicyFor(op)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.metrics.ObserveRequest(methodName(info.FullMethod), status.Code(err).String(), time.Since(start))
	return resp, err
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if op, _ := operationFor(info.FullMethod); op != services.OpLogin {
		return handler(ctx, req)
	}

	var key string
	if in, ok := req.(*structpb.Struct); ok {
		key = in.GetFields()["identity"].GetStringValue()
	}
	if !s.limiter.Allow(ctx, key) {
		s.metrics.ObserveLogin(metrics.LoginRateLimited)
		s.logger.Warn(ctx, "login rate limited", "identity", key)
		return nil, s.toStatus(ctx, common.ErrRateLimited)
	}
	return handler(ctx, req)
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	scheme, token, found := strings.Cut(values[0], " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *GRPCServer) authenticateInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	p, ok := s.policy(info.FullMethod)
	if !ok {
		return nil, status.Error(codes.Unimplemented, "unknown method")
	}
	if p.Public {
		return handler(ctx, req)
	}

	token := bearerToken(ctx)
	if token == "" {
		return nil, s.toStatus(ctx, common.ErrUnauthenticated)
	}

	account, err := s.access.ResolveIdentity(ctx, token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "method", info.FullMethod, "error", err)
		return nil, s.toStatus(ctx, err)
	}

	return handler(withAccount(ctx, account), req)
}

func (s *GRPCServer) authorizeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	p, ok := s.policy(info.FullMethod)
	if !ok {
		return nil, status.Error(codes.Unimplemented, "unknown method")
	}
	if p.Public {
		return handler(ctx, req)
	}

	account, _ := AccountFromContext(ctx)
	if err := s.access.Authorize(account, p.Allowed); err != nil {
		s.activityFailure(ctx, account, info.FullMethod, req, err)
		return nil, s.toStatus(ctx, err)
	}
	return handler(ctx, req)
}

func (s *GRPCServer) activityInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	account, ok := AccountFromContext(ctx)
	if !ok {
		return handler(ctx, req)
	}

	resp, err := handler(ctx, req)
	if err != nil {
		s.activityFailure(ctx, account, info.FullMethod, req, err)
		return resp, err
	}
	s.activity.Info(ctx, "user action", activityArgs(account, info.FullMethod, req)...)
	return resp, nil
}

func (s *GRPCServer) activityFailure(ctx context.Context, account *models.Account, fullMethod string, req any, err error) {
	args := append(activityArgs(account, fullMethod, req), "error", status.Convert(err).Message())
	s.activity.Error(ctx, "user action failed", args...)
}

func activityArgs(account *models.Account, fullMethod string, req any) []any {
	args := []any{"method", methodName(fullMethod)}
	if account != nil {
		args = append(args, "user", account.Identity, "role", string(account.Role))
	}
	if in, ok := req.(*structpb.Struct); ok {
		if id := in.GetFields()["id"].GetStringValue(); id != "" {
			args = append(args, "record_id", id)
		}
		if owner := in.GetFields()["owner"].GetStringValue(); owner != "" {
			args = append(args, "owner", owner)
		}
	}
	return args
}
