package grpc

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func credentials(in *structpb.Struct) (identity, password string, err error) {
	if identity, err = requiredString(in, "identity"); err != nil {
		return "", "", err
	}
	if password, err = requiredString(in, "password"); err != nil {
		return "", "", err
	}
	return identity, password, nil
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	identity, password, err := credentials(in)
	if err != nil {
		return nil, err
	}

	account, err := s.authn.Register(ctx, identity, password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "identity", account.Identity)
	return accountStruct(account), nil
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	identity, password, err := credentials(in)
	if err != nil {
		return nil, err
	}

	token, err := s.authn.Login(ctx, identity, password)
	if err != nil {
		s.metrics.ObserveLogin(metrics.LoginFailure)
		return nil, s.toStatus(ctx, err)
	}
	s.metrics.ObserveLogin(metrics.LoginSuccess)

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"access_token": structpb.NewStringValue(token),
		"token_type":   structpb.NewStringValue(common.TokenType),
	}}, nil
}

// actor returns the authenticated account or Unauthenticated.
func (s *GRPCServer) actor(ctx context.Context) (*models.Account, error) {
	a, ok := AccountFromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, common.ErrUnauthenticated)
	}
	return a, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return accountStruct(a), nil
}

func (s *GRPCServer) UpdateRole(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	target, err := requiredString(in, "identity")
	if err != nil {
		return nil, err
	}
	role, err := requiredString(in, "role")
	if err != nil {
		return nil, err
	}

	if err := s.authn.UpdateRole(ctx, a.Role, target, models.Role(role)); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"identity": structpb.NewStringValue(target),
		"role":     structpb.NewStringValue(role),
	}}, nil
}

func (s *GRPCServer) CreateRecord(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	title, err := requiredString(in, "title")
	if err != nil {
		return nil, err
	}
	body, _, err := optionalString(in, "body")
	if err != nil {
		return nil, err
	}

	rec, err := s.records.Create(ctx, a, title, body)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return ownerRecordStruct(rec), nil
}

func (s *GRPCServer) GetRecord(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, id, err := s.actorAndID(ctx, in)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.Get(ctx, a, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return ownerRecordStruct(rec), nil
}

func (s *GRPCServer) UpdateRecord(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, id, err := s.actorAndID(ctx, in)
	if err != nil {
		return nil, err
	}

	var patch models.RecordPatch
	if title, ok, err := optionalString(in, "title"); err != nil {
		return nil, err
	} else if ok {
		if title == "" {
			return nil, status.Error(codes.InvalidArgument, "title must not be empty")
		}
		patch.Title = &title
	}
	if body, ok, err := optionalString(in, "body"); err != nil {
		return nil, err
	} else if ok {
		patch.Body = &body
	}

	rec, err := s.records.Update(ctx, a, id, patch)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return ownerRecordStruct(rec), nil
}

func (s *GRPCServer) DeleteRecord(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, id, err := s.actorAndID(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.records.SoftDelete(ctx, a, id); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCServer) RestoreRecord(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, id, err := s.actorAndID(ctx, in)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.Restore(ctx, a, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return staffRecordStruct(rec), nil
}

func (s *GRPCServer) ListRecords(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	rs, err := s.records.ListForOwner(ctx, a)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return recordList(rs, ownerRecordStruct), nil
}

func (s *GRPCServer) GetRecordForStaff(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, id, err := s.actorAndID(ctx, in)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.GetForStaff(ctx, a, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return staffRecordStruct(rec), nil
}

func (s *GRPCServer) ListRecordsForStaff(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	owner, _, err := optionalString(in, "owner")
	if err != nil {
		return nil, err
	}

	rs, err := s.records.ListForStaff(ctx, a, owner)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return recordList(rs, staffRecordStruct), nil
}

func (s *GRPCServer) actorAndID(ctx context.Context, in *structpb.Struct) (*models.Account, string, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, "", err
	}
	id, err := requiredString(in, "id")
	if err != nil {
		return nil, "", err
	}
	return a, id, nil
}
