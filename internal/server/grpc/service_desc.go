package grpc

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "notekeeper.v1.NoteKeeper"

// NoteKeeperServer is the method set served under ServiceName. Every
// message is a google.protobuf.Struct.
type NoteKeeperServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRole(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RestoreRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRecords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecordForStaff(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRecordsForStaff(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(NoteKeeperServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

type method struct {
	name string
	op   services.Operation
	call unaryCall
}

var methods = []method{
	{"Register", services.OpRegister, NoteKeeperServer.Register},
	{"Login", services.OpLogin, NoteKeeperServer.Login},
	{"WhoAmI", services.OpWhoAmI, NoteKeeperServer.WhoAmI},
	{"UpdateRole", services.OpUpdateRole, NoteKeeperServer.UpdateRole},
	{"CreateRecord", services.OpCreateRecord, NoteKeeperServer.CreateRecord},
	{"GetRecord", services.OpGetRecord, NoteKeeperServer.GetRecord},
	{"UpdateRecord", services.OpUpdateRecord, NoteKeeperServer.UpdateRecord},
	{"DeleteRecord", services.OpDeleteRecord, NoteKeeperServer.DeleteRecord},
	{"RestoreRecord", services.OpRestoreRecord, NoteKeeperServer.RestoreRecord},
	{"ListRecords", services.OpListRecords, NoteKeeperServer.ListRecords},
	{"GetRecordForStaff", services.OpGetRecordStaff, NoteKeeperServer.GetRecordForStaff},
	{"ListRecordsForStaff", services.OpListRecordsStaff, NoteKeeperServer.ListRecordsForStaff},
}

// FullMethod returns the gRPC path of a method name, e.g. "/notekeeper.v1.NoteKeeper/Login".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// operations maps full method paths to their access policy operation.
var operations = func() map[string]services.Operation {
	m := make(map[string]services.Operation, len(methods))
	for _, md := range methods {
		m[FullMethod(md.name)] = md.op
	}
	return m
}()

func operationFor(fullMethod string) (services.Operation, bool) {
	op, ok := operations[fullMethod]
	return op, ok
}

func (m method) desc() grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: m.name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(NoteKeeperServer)
			if interceptor == nil {
				return m.call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(m.name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return m.call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

func serviceDesc() *grpc.ServiceDesc {
	descs := make([]grpc.MethodDesc, 0, len(methods))
	for _, m := range methods {
		descs = append(descs, m.desc())
	}
	return &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*NoteKeeperServer)(nil),
		Methods:     descs,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "notekeeper/v1/notekeeper.proto",
	}
}

// RegisterNoteKeeperServer registers srv on s.
func RegisterNoteKeeperServer(s grpc.ServiceRegistrar, srv NoteKeeperServer) {
	s.RegisterService(serviceDesc(), srv)
}

// Invoke calls method on conn with a Struct request and returns the Struct
// response.
func Invoke(ctx context.Context, conn grpc.ClientConnInterface, name string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
