package transport

import (
	"net"

	"google.golang.org/grpc"

	"github.com/cuemby/dbtxn/pkg/clog"
)

// Server hosts the Call stream for incoming sessions. It is a thin
// wrapper over grpc.Server; the caller supplies the Handler (in this
// repository, test/integration's fake server; the production client path
// only dials).
type Server struct {
	grpcServer *grpc.Server
}

// NewServer constructs a Server that dispatches every incoming stream to h.
// Transport security is out of scope, so none is configured.
func NewServer(h Handler) *Server {
	gs := grpc.NewServer(grpc.StreamInterceptor(MetricsStreamInterceptor()))
	gs.RegisterService(&serviceDesc, h)
	return &Server{grpcServer: gs}
}

// Serve accepts connections on lis until the server is stopped.
func (s *Server) Serve(lis net.Listener) error {
	clog.WithComponent("transport").Info().Str("address", lis.Addr().String()).Msg("serving")
	return s.grpcServer.Serve(lis)
}

// Stop gracefully stops the server, waiting for in-flight streams to
// finish.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}
