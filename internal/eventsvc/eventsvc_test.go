package eventsvc

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/generator"
	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// helper: serve a default-content director over an in-memory listener.
func startServer(t *testing.T, lib *library.Library) (*Server, *Client) {
	t.Helper()
	srv := NewServer(director.New(generator.New(lib, generator.DefaultConfig()), nil))

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterEventServiceServer(gs, srv)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return srv, NewClientWithConn(conn)
}

func defaultLibrary(t *testing.T) *library.Library {
	t.Helper()
	lib, err := library.Default()
	if err != nil {
		t.Fatalf("library.Default: %v", err)
	}
	return lib
}

func TestGenerate_RoundTrip(t *testing.T) {
	srv, c := startServer(t, defaultLibrary(t))
	player := state.PlayerState{Tier: 2, LifeStage: 2, SCS: 40, Finance: 30, GuanxiNetwork: 3}

	ev, source, err := c.Generate(context.Background(), "s1", 7, player)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if source != string(director.SourceProcedural) {
		t.Errorf("expected procedural source, got %q", source)
	}
	if ev.SituationID == "" || ev.Title == "" || ev.Description == "" {
		t.Errorf("incomplete event: %+v", ev)
	}
	if n := len(ev.Choices); n < 2 || n > 4 {
		t.Errorf("expected 2-4 choices, got %d", n)
	}
	for _, ch := range ev.Choices {
		if ch.Risk < 0 || ch.Risk > 95 {
			t.Errorf("risk %d out of range", ch.Risk)
		}
	}
	if srv.Sessions() != 1 {
		t.Errorf("expected 1 session, got %d", srv.Sessions())
	}
}

func TestGenerate_SameSeedSameEvent(t *testing.T) {
	lib := defaultLibrary(t)
	_, a := startServer(t, lib)
	_, b := startServer(t, lib)
	player := state.PlayerState{Tier: 1, LifeStage: 1}

	ea, _, err := a.Generate(context.Background(), "x", 42, player)
	if err != nil {
		t.Fatal(err)
	}
	eb, _, err := b.Generate(context.Background(), "x", 42, player)
	if err != nil {
		t.Fatal(err)
	}
	if ea.SituationID != eb.SituationID || ea.Description != eb.Description {
		t.Errorf("same seed diverged: %s vs %s", ea.SituationID, eb.SituationID)
	}
}

func TestRecord_ExcludesEncountered(t *testing.T) {
	_, c := startServer(t, defaultLibrary(t))
	ctx := context.Background()
	player := state.PlayerState{Tier: 2, LifeStage: 2}

	first, _, err := c.Generate(ctx, "s", 3, player)
	if err != nil {
		t.Fatal(err)
	}
	counter, err := c.Record(ctx, "s", string(first.Domain), first.SituationID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if counter != 1 {
		t.Errorf("expected counter 1, got %d", counter)
	}

	for i := 0; i < 10; i++ {
		ev, _, err := c.Generate(ctx, "s", 3, player)
		if errors.Is(err, director.ErrNoEvent) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if ev.SituationID == first.SituationID {
			t.Fatalf("recorded situation %s served again", first.SituationID)
		}
	}
}

func TestRecord_EmptySituationAdvances(t *testing.T) {
	_, c := startServer(t, defaultLibrary(t))
	ctx := context.Background()
	if _, _, err := c.Generate(ctx, "s", 1, state.PlayerState{}); err != nil {
		t.Fatal(err)
	}
	counter, err := c.Record(ctx, "s", "", "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if counter != 1 {
		t.Errorf("expected counter 1, got %d", counter)
	}
}

func TestRecord_UnknownSession(t *testing.T) {
	_, c := startServer(t, defaultLibrary(t))
	_, err := c.Record(context.Background(), "ghost", "work", "x")
	if status.Code(errors.Unwrap(err)) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestGenerate_RequiresSession(t *testing.T) {
	_, c := startServer(t, defaultLibrary(t))
	_, _, err := c.Generate(context.Background(), "", 1, state.PlayerState{})
	if status.Code(errors.Unwrap(err)) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestGenerate_NoEventMapsToErrNoEvent(t *testing.T) {
	srv := NewServer(director.New(generator.New(defaultLibrary(t), generator.DefaultConfig()), nil))
	// No template reaches tier 99.
	_, err := srv.Generate(context.Background(), mustStruct(t, map[string]any{"session": "s", "tier": 99, "life_stage": 99}))
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}

	_, c := startServer(t, defaultLibrary(t))
	if _, _, err := c.Generate(context.Background(), "s", 1, state.PlayerState{Tier: 99}); !errors.Is(err, director.ErrNoEvent) {
		t.Errorf("expected ErrNoEvent from client, got %v", err)
	}
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
