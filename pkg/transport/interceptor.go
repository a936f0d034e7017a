package transport

import (
	"time"

	"google.golang.org/grpc"

	"github.com/cuemby/dbtxn/pkg/clog"
	"github.com/cuemby/dbtxn/pkg/metrics"
)

// MetricsStreamInterceptor times each whole Call stream and records it
// once, when the stream ends, against pkg/metrics' RPC counters/histogram;
// the number of Frames received on the stream is only logged. It replaces
// a ReadOnlyInterceptor (which gated writes to a non-leader raft node — a
// concept this client has no analogue for).
func MetricsStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		wrapped := &observingServerStream{ServerStream: ss}
		err := handler(srv, wrapped)
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RPCRequestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		metrics.RPCRequestsTotal.WithLabelValues(info.FullMethod, status).Inc()
		clog.WithComponent("transport").Debug().
			Str("method", info.FullMethod).
			Int("frames", wrapped.frameCount).
			Dur("duration", time.Since(start)).
			Msg("stream closed")
		return err
	}
}

type observingServerStream struct {
	grpc.ServerStream
	frameCount int
}

func (s *observingServerStream) RecvMsg(m any) error {
	err := s.ServerStream.RecvMsg(m)
	if err == nil {
		s.frameCount++
	}
	return err
}
