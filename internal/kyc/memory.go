package kyc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process provider for tests and offline runs. Sessions
// start PENDING; SetStatus drives transitions.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*Verification
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*Verification),
		now:      time.Now,
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) CreateVerification(_ context.Context, req Request) (*Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := &Verification{
		ID:        uuid.NewString(),
		Applicant: req.Applicant,
		Address:   req.Address,
		Status:    StatusPending,
		UpdatedAt: m.now().UTC(),
	}
	m.sessions[v.ID] = v
	out := *v
	return &out, nil
}

func (m *Memory) CheckStatus(_ context.Context, id string) (*Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("memory: no verification with id '%s'", id)
	}
	out := *v
	return &out, nil
}

func (m *Memory) GetProof(_ context.Context, id string) (*Proof, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("memory: no verification with id '%s'", id)
	}
	return &Proof{
		VerificationID: v.ID,
		Status:         v.Status,
		IssuedAt:       m.now().UTC(),
		Digest:         "memory:" + v.ID,
	}, nil
}

// SetStatus transitions a session; test hook, not part of Provider.
func (m *Memory) SetStatus(id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("memory: no verification with id '%s'", id)
	}
	v.Status = status
	v.UpdatedAt = m.now().UTC()
	return nil
}
