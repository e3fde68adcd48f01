// Package grpcserver exposes the index service over gRPC. The service
// descriptor is written by hand in the shape protoc-gen-go-grpc emits,
// against the wire package's codec instead of generated stubs.
package grpcserver

import (
	"context"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"arbor/api/wire"
	"arbor/service"
)

// IndexServer is the server-side contract for the arbor.Index service.
type IndexServer interface {
	Insert(ctx context.Context, req *wire.InsertRequest) (*wire.InsertResponse, error)
	Search(ctx context.Context, req *wire.SearchRequest) (*wire.SearchResponse, error)
	Snapshot(ctx context.Context, req *wire.SnapshotRequest) (*wire.SnapshotResponse, error)
}

// Server adapts IndexService to gRPC.
type Server struct {
	svc *service.IndexService
	log *logrus.Entry
}

func NewServer(svc *service.IndexService) *Server {
	return &Server{
		svc: svc,
		log: logrus.WithField("component", "grpcserver"),
	}
}

// Register attaches srv to gs under the arbor.Index service name.
// Callers must also install wire.Codec via grpc.ForceServerCodec.
func Register(gs *grpc.Server, srv IndexServer) {
	gs.RegisterService(&ServiceDesc, srv)
}

// -------------------- Commands --------------------

func (s *Server) Insert(
	ctx context.Context,
	req *wire.InsertRequest,
) (*wire.InsertResponse, error) {
	seq, err := s.svc.Insert(req.Key)
	if err != nil {
		s.log.WithError(err).WithField("key", req.Key).Error("insert failed")
		return nil, status.Errorf(codes.Internal, "insert: %v", err)
	}

	s.log.WithFields(logrus.Fields{
		"key": req.Key,
		"seq": seq,
	}).Debug("insert")

	return &wire.InsertResponse{
		Seq:  seq,
		Size: uint64(s.svc.Len()),
	}, nil
}

// -------------------- Queries --------------------

func (s *Server) Search(
	ctx context.Context,
	req *wire.SearchRequest,
) (*wire.SearchResponse, error) {
	color, found := s.svc.Search(req.Key)
	return &wire.SearchResponse{
		Found: found,
		Color: uint32(color),
	}, nil
}

func (s *Server) Snapshot(
	ctx context.Context,
	req *wire.SnapshotRequest,
) (*wire.SnapshotResponse, error) {
	entries := s.svc.Snapshot()

	resp := &wire.SnapshotResponse{
		Seq:    s.svc.LastSeq(),
		Keys:   make([]int64, 0, len(entries)),
		Colors: make([]uint32, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Keys = append(resp.Keys, e.Key)
		resp.Colors = append(resp.Colors, uint32(e.Color))
	}
	return resp, nil
}
