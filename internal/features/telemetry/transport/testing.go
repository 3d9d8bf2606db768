package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
)

// RecordingSender is an in-memory Sender for tests. Each call is recorded as
// the JSON it would have sent. Fail makes the next calls return the error;
// Block makes calls wait until Release is called.
type RecordingSender struct {
	mu      sync.Mutex
	calls   []RecordedCall
	err     error
	gate    chan struct{}
	started chan struct{}
}

type RecordedCall struct {
	Path    string
	Payload []byte
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{started: make(chan struct{}, 64)}
}

func (s *RecordingSender) Send(ctx context.Context, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.calls = append(s.calls, RecordedCall{Path: path, Payload: data})
	gate := s.gate
	s.mu.Unlock()

	select {
	case s.started <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *RecordingSender) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *RecordingSender) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
}

func (s *RecordingSender) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// Started returns a channel that receives once per Send call, before the call
// blocks on the gate.
func (s *RecordingSender) Started() <-chan struct{} {
	return s.started
}

func (s *RecordingSender) Calls() []RecordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]RecordedCall, len(s.calls))
	copy(calls, s.calls)
	return calls
}

func (s *RecordingSender) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// DecodeCall unmarshals the payload of call i into target.
func (s *RecordingSender) DecodeCall(i int, target any) error {
	calls := s.Calls()
	return json.NewDecoder(bytes.NewReader(calls[i].Payload)).Decode(target)
}
