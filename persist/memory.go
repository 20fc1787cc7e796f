package persist

import (
	"context"
	"sync"

	"github.com/MrEthical07/goSession/session"
)

// Memory is a process-local slot. It still round-trips through the encoder so
// it behaves like the durable backends.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (session.Record, bool, error) {
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()

	return decodeSlot(data)
}

func (m *Memory) Save(_ context.Context, rec session.Record) error {
	data, err := session.Encode(rec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// decodeSlot maps raw slot bytes onto the Load contract. A nil slice is an
// absent slot.
func decodeSlot(data []byte) (session.Record, bool, error) {
	if data == nil {
		return session.Record{}, false, nil
	}
	rec, err := session.Decode(data)
	if err != nil {
		return session.Record{}, false, err
	}
	if rec.Empty() {
		return session.Record{}, false, nil
	}
	return rec, true, nil
}
