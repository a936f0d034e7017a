package transport

import (
	"google.golang.org/grpc"
)

const (
	serviceName   = "dbtxn.transport.Session"
	callStreamName = "Call"
	callFullMethod = "/" + serviceName + "/" + callStreamName
)

// Handler serves one whole Call stream: Handle reads request Frames off
// stream and sends reply Frames back itself, until the client closes its
// send side or an error ends the stream.
type Handler interface {
	Handle(stream *ServerStream) error
}

// serviceDesc is a hand-written grpc.ServiceDesc for a single
// bidirectionally-streaming method. There is no .proto file and no
// generated _grpc.pb.go; rawCodec (codec.go) lets grpc treat every message
// as opaque bytes, so this is the entire service definition.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Handler)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    callStreamName,
			Handler:       callStreamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "dbtxn/transport.proto", // nominal; no such file is compiled
}

func callStreamHandler(srv any, stream grpc.ServerStream) error {
	h := srv.(Handler)
	return h.Handle(&ServerStream{stream: stream})
}
