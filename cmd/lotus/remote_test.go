package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/eventsvc"
	"github.com/danielpatrickdp/lotus-engine/internal/generator"
	"github.com/danielpatrickdp/lotus-engine/internal/library"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

func remoteClient(t *testing.T) *eventsvc.Client {
	t.Helper()
	lib, err := library.Default()
	if err != nil {
		t.Fatalf("library.Default: %v", err)
	}
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	eventsvc.RegisterEventServiceServer(gs, eventsvc.NewServer(director.New(generator.New(lib, generator.DefaultConfig()), nil)))
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
	return eventsvc.NewClientWithConn(conn)
}

func TestRunRemoteGenerate_RecordsEachEvent(t *testing.T) {
	var buf bytes.Buffer
	player := state.PlayerState{Tier: 2, LifeStage: 2, SCS: 50, Finance: 20, GuanxiNetwork: 2}

	if err := runRemoteGenerate(context.Background(), &buf, remoteClient(t), "cli", 5, player, 3, true); err != nil {
		t.Fatalf("runRemoteGenerate: %v", err)
	}

	dec := json.NewDecoder(&buf)
	seen := map[string]bool{}
	for i := 1; i <= 3; i++ {
		var line struct {
			Source  string                   `json:"source"`
			Counter uint64                   `json:"counter"`
			Event   generator.GeneratedEvent `json:"event"`
		}
		if err := dec.Decode(&line); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if line.Counter != uint64(i) {
			t.Errorf("line %d: expected counter %d, got %d", i, i, line.Counter)
		}
		if seen[line.Event.SituationID] {
			t.Errorf("line %d: %s repeated after being recorded", i, line.Event.SituationID)
		}
		seen[line.Event.SituationID] = true
	}
}

func TestRunRemoteGenerate_WithoutRecord(t *testing.T) {
	var buf bytes.Buffer
	if err := runRemoteGenerate(context.Background(), &buf, remoteClient(t), "peek", 5, state.PlayerState{Tier: 1, LifeStage: 1}, 1, false); err != nil {
		t.Fatalf("runRemoteGenerate: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatal(err)
	}
	if _, ok := line["counter"]; ok {
		t.Error("counter should be omitted when not recording")
	}
}
