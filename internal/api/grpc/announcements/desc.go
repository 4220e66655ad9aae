package announcements

import (
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "schedule.v1.AnnouncementService"
	// SubscribeMethod is the full method name of the announcement stream.
	SubscribeMethod = "/" + ServiceName + "/Subscribe"
)

// AnnouncementServiceServer is implemented by Server.
type AnnouncementServiceServer interface {
	Subscribe(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// ServiceDesc registers AnnouncementServiceServer implementations.
//
//nolint:gochecknoglobals // Mirrors generated service descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnnouncementServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "schedule/v1/announcements.proto",
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	req := new(emptypb.Empty)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}

	return srv.(AnnouncementServiceServer).Subscribe(req, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// Register attaches srv to registrar.
func Register(registrar grpc.ServiceRegistrar, srv AnnouncementServiceServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}
