package kyc

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	sumsubDefaultBaseURL = "https://api.sumsub.com"
	sumsubDefaultTimeout = 15 * time.Second
)

// Sumsub talks to the Sumsub REST API. Requests are signed with
// HMAC-SHA256 over ts + method + path + body per the vendor's scheme.
type Sumsub struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewSumsub builds the adapter. A nil logger falls back to the default.
func NewSumsub(cfg Config, logger *slog.Logger) *Sumsub {
	if cfg.BaseURL == "" {
		cfg.BaseURL = sumsubDefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = sumsubDefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sumsub{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		now:    time.Now,
	}
}

func (s *Sumsub) Name() string { return "sumsub" }

// sumsubApplicant is the subset of the vendor response the adapter reads.
type sumsubApplicant struct {
	ID         string `json:"id"`
	ExternalID string `json:"externalUserId"`
	Review     struct {
		Status string `json:"reviewStatus"`
		Result struct {
			Answer string `json:"reviewAnswer"`
		} `json:"reviewResult"`
	} `json:"review"`
	CreatedAt string `json:"createdAt"`
}

// CreateVerification opens an applicant on the vendor side.
func (s *Sumsub) CreateVerification(ctx context.Context, req Request) (*Verification, error) {
	if req.Applicant == "" {
		return nil, fmt.Errorf("sumsub: create verification: applicant identifier is required")
	}
	level := req.Level
	if level == "" {
		level = "basic-kyc-level"
	}

	body, err := json.Marshal(map[string]string{"externalUserId": req.Applicant})
	if err != nil {
		return nil, err
	}
	path := "/resources/applicants?levelName=" + level

	var applicant sumsubApplicant
	if err := s.do(ctx, http.MethodPost, path, body, &applicant); err != nil {
		return nil, fmt.Errorf("sumsub: create verification for '%s': %w", req.Applicant, err)
	}

	return &Verification{
		ID:        applicant.ID,
		Applicant: req.Applicant,
		Address:   req.Address,
		Status:    StatusPending,
		UpdatedAt: s.now().UTC(),
	}, nil
}

// CheckStatus fetches the current review state for an applicant id.
func (s *Sumsub) CheckStatus(ctx context.Context, id string) (*Verification, error) {
	var applicant sumsubApplicant
	if err := s.do(ctx, http.MethodGet, "/resources/applicants/"+id+"/one", nil, &applicant); err != nil {
		return nil, fmt.Errorf("sumsub: check status of '%s': %w", id, err)
	}
	return &Verification{
		ID:        applicant.ID,
		Applicant: applicant.ExternalID,
		Status:    mapSumsubStatus(applicant.Review.Status, applicant.Review.Result.Answer),
		UpdatedAt: s.now().UTC(),
	}, nil
}

// GetProof returns a digestible attestation of the current status.
func (s *Sumsub) GetProof(ctx context.Context, id string) (*Proof, error) {
	v, err := s.CheckStatus(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sumsub: proof for '%s': %w", id, err)
	}
	issued := s.now().UTC()
	digest := sha256.Sum256([]byte(v.ID + "|" + string(v.Status) + "|" + issued.Format(time.RFC3339)))
	return &Proof{
		VerificationID: v.ID,
		Status:         v.Status,
		IssuedAt:       issued,
		Digest:         "sha256:" + hex.EncodeToString(digest[:]),
	}, nil
}

// do signs and executes one API call, decoding the JSON response into
// out when out is non-nil.
func (s *Sumsub) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	ts := strconv.FormatInt(s.now().Unix(), 10)
	req.Header.Set("X-App-Token", s.cfg.AppToken)
	req.Header.Set("X-App-Access-Ts", ts)
	req.Header.Set("X-App-Access-Sig", s.sign(ts, method, path, body))
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Warn("sumsub API error", "method", method, "path", path, "status", resp.StatusCode)
		return fmt.Errorf("vendor returned %d: %s", resp.StatusCode, string(payload))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Sumsub) sign(ts, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.SecretKey))
	mac.Write([]byte(ts + method + path))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// mapSumsubStatus folds the vendor's review vocabulary into the shared
// enum. Completed reviews split on the answer: GREEN approves, RED
// rejects, anything else needs a human look.
func mapSumsubStatus(reviewStatus, answer string) Status {
	switch reviewStatus {
	case "init", "queued":
		return StatusPending
	case "pending", "onHold":
		return StatusInProgress
	case "completed":
		switch answer {
		case "GREEN":
			return StatusApproved
		case "RED":
			return StatusRejected
		default:
			return StatusNeedsReview
		}
	default:
		return StatusNeedsReview
	}
}
