package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	msgUnauthenticated = "could not validate credentials"
	msgInternal        = "server error, try again later"
)

var unauthenticatedKinds = []error{
	common.ErrInvalidCredentials,
	common.ErrUnauthenticated,
	common.ErrAccountGone,
	common.ErrInvalidToken,
	common.ErrTokenExpired,
}

// toStatus maps a core error to a gRPC status. Credential and token problems
// share one message; unexpected faults are logged and hidden.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	for _, k := range unauthenticatedKinds {
		if errors.Is(err, k) {
			return status.Error(codes.Unauthenticated, msgUnauthenticated)
		}
	}

	switch {
	case errors.Is(err, common.ErrDuplicateIdentity):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, common.ErrForbidden.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, common.ErrNotFound.Error())
	case errors.Is(err, common.ErrInvalidRole), errors.Is(err, common.ErrNothingToUpdate):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrRoleUnchanged):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, err.Error())
	}

	s.logger.Error(ctx, "internal error", "error", err)
	return status.Error(codes.Internal, msgInternal)
}
