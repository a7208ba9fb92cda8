package eventsvc

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/rng"
	"github.com/danielpatrickdp/lotus-engine/internal/tracker"
)

// #region server

// session is one player's context and random stream.
type session struct {
	ctx *tracker.Context
	src rng.Source
}

// Server implements EventServiceServer. A single mutex serializes every
// request, so each session's context is touched by one call at a time.
type Server struct {
	dir *director.Director

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer returns a server generating through dir.
func NewServer(dir *director.Director) *Server {
	return &Server{dir: dir, sessions: make(map[string]*session)}
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// #endregion server

// #region generate

// Generate produces the next event for a session, creating the session on
// first use. The context is not modified; callers report resolution via Record.
func (s *Server) Generate(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req GenerateRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Session == "" {
		return nil, status.Error(codes.InvalidArgument, "session is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[req.Session]
	if !ok {
		sess = &session{ctx: tracker.New(), src: rng.New(uint64(req.Seed))}
		s.sessions[req.Session] = sess
		slog.Info("session opened", "component", "eventsvc", "session", req.Session, "seed", uint64(req.Seed))
	}

	turn, err := s.dir.Next(req.Player(), sess.ctx, sess.src)
	if errors.Is(err, director.ErrNoEvent) {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	out, err := toStruct(GenerateResponse{
		Source:   string(turn.Source),
		Attempts: len(turn.Attempts),
		Event:    turn.Event,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// #endregion generate

// #region record

// Record marks a resolved event in the session's context.
func (s *Server) Record(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req RecordRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[req.Session]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown session %q", req.Session)
	}
	if req.SituationID == "" {
		sess.ctx.Advance()
	} else {
		if req.Domain == "" {
			return nil, status.Error(codes.InvalidArgument, "domain is required with a situation id")
		}
		sess.ctx.Record(req.Domain, req.SituationID)
	}

	out, err := toStruct(RecordResponse{Counter: sess.ctx.Counter()})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// #endregion record
