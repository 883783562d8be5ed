package grpc

import (
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// requiredString returns a non-empty string field or InvalidArgument.
func requiredString(in *structpb.Struct, name string) (string, error) {
	v, ok, err := optionalString(in, name)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return v, nil
}

// optionalString returns a string field and whether it was present.
// A present field of another kind is InvalidArgument.
func optionalString(in *structpb.Struct, name string) (string, bool, error) {
	v, ok := in.GetFields()[name]
	if !ok || v == nil {
		return "", false, nil
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return "", false, nil
	}
	sv, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", false, status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	return sv.StringValue, true, nil
}

func accountStruct(a *models.Account) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"identity":   structpb.NewStringValue(a.Identity),
		"role":       structpb.NewStringValue(string(a.Role)),
		"created_at": structpb.NewStringValue(formatTime(a.CreatedAt)),
	}}
}

// ownerRecordStruct is the record as its owner sees it. Ownership and state
// are implied by the owner-scoped methods and are left out.
func ownerRecordStruct(r *models.Record) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":         structpb.NewStringValue(r.ID),
		"title":      structpb.NewStringValue(r.Title),
		"body":       structpb.NewStringValue(r.Body),
		"created_at": structpb.NewStringValue(formatTime(r.CreatedAt)),
	}}
}

// staffRecordStruct is the full record, including owner and active state.
func staffRecordStruct(r *models.Record) *structpb.Struct {
	s := ownerRecordStruct(r)
	s.Fields["owner"] = structpb.NewStringValue(r.Owner)
	s.Fields["active"] = structpb.NewBoolValue(r.Active)
	return s
}

func recordList(rs []*models.Record, project func(*models.Record) *structpb.Struct) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(rs))
	for _, r := range rs {
		values = append(values, structpb.NewStructValue(project(r)))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"records": structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
