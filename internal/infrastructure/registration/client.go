package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

const (
	registerPath     = "/internal/v1/candidates/register"
	defaultTimeout   = 30 * time.Second
	requestIDHeader  = "X-Request-Id"
	maxErrorBodySize = 4096
)

var ErrInvalidBaseURL = errors.New("invalid registration service url")

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError is returned for non-2xx responses other than 429.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("registration service returned status %d", e.StatusCode)
}

type registerRequest struct {
	CorporateUserID    int64     `json:"corporate_user_id"`
	CorporateAccountID int64     `json:"corporate_account_id"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email,omitempty"`
	Mobile             string    `json:"mobile,omitempty"`
	CountryCode        string    `json:"country_code,omitempty"`
	Gender             string    `json:"gender"`
	ProgramID          int64     `json:"program_id"`
	GroupID            int64     `json:"group_id"`
	GroupName          string    `json:"group_name"`
	GroupAssessmentID  int64     `json:"group_assessment_id"`
	Password           string    `json:"password"`
	SendEmail          bool      `json:"send_email"`
	ExamStart          time.Time `json:"exam_start"`
	ExamEnd            time.Time `json:"exam_end"`
	ExistingUserID     *int64    `json:"existing_user_id,omitempty"`
}

type registerResponse struct {
	UserID         int64 `json:"user_id"`
	RegistrationID int64 `json:"registration_id"`
	SessionID      int64 `json:"session_id"`
	ExistingUser   bool  `json:"existing_user"`
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the Candidate Registration Service over HTTP. A 429 response
// is reported as domain.ErrRateLimited so the retry policy can back off.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: u, httpClient: httpClient}, nil
}

func (c *Client) RegisterCandidate(ctx context.Context, candidate domain.CandidateRegistration, corporateUserID int64) (domain.RegistrationResult, error) {
	payload := registerRequest{
		CorporateUserID:    corporateUserID,
		CorporateAccountID: candidate.CorporateAccountID,
		FullName:           candidate.FullName,
		Email:              candidate.Email,
		Mobile:             candidate.Mobile,
		CountryCode:        candidate.CountryCode,
		Gender:             string(candidate.Gender),
		ProgramID:          candidate.ProgramID,
		GroupID:            candidate.GroupID,
		GroupName:          candidate.GroupName,
		GroupAssessmentID:  candidate.GroupAssessmentID,
		Password:           candidate.Password,
		SendEmail:          candidate.SendEmail,
		ExamStart:          candidate.ExamStart.UTC(),
		ExamEnd:            candidate.ExamEnd.UTC(),
		ExistingUserID:     candidate.ExistingUserID,
	}

	var out registerResponse
	if err := c.doJSON(ctx, http.MethodPost, registerPath, payload, &out); err != nil {
		return domain.RegistrationResult{}, err
	}

	return domain.RegistrationResult{
		UserID:         out.UserID,
		RegistrationID: out.RegistrationID,
		SessionID:      out.SessionID,
		ExistingUser:   out.ExistingUser,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path

	b, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("json marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("http read: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, errorMessage(resp.StatusCode, respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil {
			statusErr.Code = apiErr.Code
			statusErr.Message = strings.TrimSpace(apiErr.Message)
		}
		if statusErr.Message == "" {
			statusErr.Message = errorMessage(resp.StatusCode, respBody)
		}
		return statusErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("json unmarshal response: %w", err)
	}
	return nil
}

func errorMessage(status int, body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && strings.TrimSpace(apiErr.Message) != "" {
		return strings.TrimSpace(apiErr.Message)
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBodySize {
		text = text[:maxErrorBodySize]
	}
	if text == "" {
		return fmt.Sprintf("status=%d", status)
	}
	return fmt.Sprintf("status=%d body=%s", status, text)
}
