// Package kyc is the boundary to external identity-verification
// vendors. The pipeline only depends on the Provider interface and the
// shared status vocabulary; which vendor answered is invisible to the
// generators.
package kyc

import (
	"context"
	"fmt"
	"time"
)

// Status is the vendor-independent verification status vocabulary.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusNeedsReview Status = "NEEDS_REVIEW"
)

// Request identifies the participant a verification is opened for.
type Request struct {
	Applicant string // Vendor-side applicant identifier (e.g., email)
	Address   string // On-chain address the result will gate
	Level     string // Vendor verification level name, vendor-defined
}

// Verification is the state of one verification session.
type Verification struct {
	ID        string
	Applicant string
	Address   string
	Status    Status
	UpdatedAt time.Time
}

// Proof is a portable attestation of a verification outcome, suitable
// for handing to an oracle updater.
type Proof struct {
	VerificationID string
	Status         Status
	IssuedAt       time.Time
	Digest         string // Vendor-signed or content digest of the result
}

// Provider is the minimal vendor surface the pipeline consumes. All
// calls are remote; implementations own their timeout and retry policy.
type Provider interface {
	Name() string
	CreateVerification(ctx context.Context, req Request) (*Verification, error)
	CheckStatus(ctx context.Context, id string) (*Verification, error)
	GetProof(ctx context.Context, id string) (*Proof, error)
}

// Config carries provider credentials and endpoints. Passed explicitly
// at construction; nothing is read from disk or process-wide state.
type Config struct {
	BaseURL   string
	AppToken  string
	SecretKey string
	Timeout   time.Duration
}

// UnknownProviderError reports a provider name the factory has no
// constructor for.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown KYC provider '%s'", e.Name)
}

// Factory maps provider names to constructors.
type Factory struct {
	constructors map[string]func(Config) (Provider, error)
}

// NewFactory returns a factory with the built-in providers registered.
func NewFactory() *Factory {
	f := &Factory{constructors: make(map[string]func(Config) (Provider, error))}
	f.Register("sumsub", func(cfg Config) (Provider, error) { return NewSumsub(cfg, nil), nil })
	f.Register("memory", func(Config) (Provider, error) { return NewMemory(), nil })
	return f
}

// Register adds or overrides a provider constructor.
func (f *Factory) Register(name string, constructor func(Config) (Provider, error)) {
	f.constructors[name] = constructor
}

// Create instantiates a provider by name.
func (f *Factory) Create(name string, cfg Config) (Provider, error) {
	constructor, ok := f.constructors[name]
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}
	return constructor(cfg)
}
