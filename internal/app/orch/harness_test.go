package orch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/coderoom/internal/adapters/store/memory"
	"github.com/dkeye/coderoom/internal/app"
	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type received struct {
	Type protocol.Kind   `json:"type"`
	Data json.RawMessage `json:"data"`
}

// fakeSignal records every frame; full makes TrySend report backpressure.
type fakeSignal struct {
	mu     sync.Mutex
	frames []received
	full   bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return core.ErrBackpressure
	}
	var ev received
	if err := json.Unmarshal(fr, &ev); err != nil {
		return err
	}
	f.frames = append(f.frames, ev)
	return nil
}

func (f *fakeSignal) Close() {}

func (f *fakeSignal) take() []received {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.frames
	f.frames = nil
	return out
}

type harness struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	o     *Orchestrator
	conns map[domain.ConnID]*fakeSignal
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := memory.New(time.Hour, time.Minute)
	return &harness{
		t:     t,
		ctx:   context.Background(),
		store: st,
		o: &Orchestrator{
			Registry:     app.NewRegistry(),
			Rooms:        st,
			Policy:       app.SimplePolicy{},
			StoreTimeout: time.Second,
		},
		conns: make(map[domain.ConnID]*fakeSignal),
	}
}

func (h *harness) connect(id domain.ConnID, token string) *fakeSignal {
	sig := &fakeSignal{}
	h.conns[id] = sig
	h.o.Registry.Bind(id, sig, token, nil)
	return sig
}

func (h *harness) send(id domain.ConnID, raw string) {
	h.t.Helper()
	msg, err := protocol.Decode([]byte(raw))
	require.NoError(h.t, err)
	h.o.Handle(h.ctx, id, msg)
}

func (h *harness) drain() {
	for _, s := range h.conns {
		s.take()
	}
}

func (h *harness) room(id domain.RoomID) *domain.Room {
	h.t.Helper()
	r, err := h.store.GetRoom(h.ctx, id)
	require.NoError(h.t, err)
	return r
}

// createAlgoRoom creates R1 hosted by Ada on connection s-ada and lets Bo
// join on s-bo.
func (h *harness) createAlgoRoom() {
	h.t.Helper()
	h.connect("s-ada", "tok-ada")
	h.connect("s-bo", "tok-bo")
	h.send("s-ada", `{"type":"create-room","data":{"roomId":"R1","roomName":"Algo Class","subject":"Algorithms","hostName":"Ada"}}`)
	h.send("s-bo", `{"type":"join-room","data":{"roomId":"R1","userName":"Bo"}}`)
	h.drain()
}

func kinds(evs []received) []protocol.Kind {
	out := make([]protocol.Kind, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Type)
	}
	return out
}

func find(t *testing.T, evs []received, k protocol.Kind, into any) bool {
	t.Helper()
	for _, e := range evs {
		if e.Type == k {
			if into != nil {
				require.NoError(t, json.Unmarshal(e.Data, into))
			}
			return true
		}
	}
	return false
}

func errorMessage(t *testing.T, evs []received) string {
	t.Helper()
	var d protocol.ErrorData
	if !find(t, evs, protocol.KindError, &d) {
		return ""
	}
	return d.Message
}
