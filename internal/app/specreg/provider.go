package specreg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusflow/sectioning/internal/pkg/apperrors"
)

// Config holds the endpoints and credentials of the remote system. Only the
// eligibility and submit URLs are required; the get-all URL falls back to the
// submit URL and the check URL falls back to the get-all URL. Basic auth and
// the named API-key query parameter are both optional and independent.
type Config struct {
	EligibilityURL string
	SubmitURL      string
	GetAllURL      string
	CheckURL       string

	User     string
	Password string

	APIKeyParameter string
	APIKeyValue     string

	Timeout time.Duration
}

func (c Config) getAllURL() string {
	if c.GetAllURL != "" {
		return c.GetAllURL
	}
	return c.SubmitURL
}

func (c Config) checkURL() string {
	if c.CheckURL != "" {
		return c.CheckURL
	}
	return c.getAllURL()
}

// Provider is the HTTP client for the remote special-registration system.
type Provider struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewProvider creates a provider with the given configuration.
func NewProvider(cfg Config, logger zerolog.Logger) *Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "specreg").Logger(),
	}
}

// FormatStudentID renders a student external id the way the remote system
// expects it: zero-left-padded to 9 characters.
func FormatStudentID(externalID string) string {
	return fmt.Sprintf("%09s", externalID)
}

// CheckEligibility asks the remote system whether the given changes may be
// requested at all.
func (p *Provider) CheckEligibility(ctx context.Context, request *SpecialRegistrationRequest) (*SpecialRegistrationResponse, error) {
	var response SpecialRegistrationResponse
	if err := p.post(ctx, p.cfg.EligibilityURL, request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Submit sends a new or edited registration request. A request id is present
// when an existing request is being resubmitted.
func (p *Provider) Submit(ctx context.Context, request *SpecialRegistrationRequest) (*SpecialRegistrationResponse, error) {
	var response SpecialRegistrationResponse
	if err := p.post(ctx, p.cfg.SubmitURL, request, &response); err != nil {
		return nil, err
	}
	if !response.Success() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSpecRegFailed, response.Message)
	}
	return &response, nil
}

// Retrieve fetches one registration request by its remote id.
func (p *Provider) Retrieve(ctx context.Context, term, campus, studentID, requestID string) (*SpecialRegistrationRequest, error) {
	query := url.Values{}
	query.Set("term", term)
	query.Set("campus", campus)
	query.Set("studentId", FormatStudentID(studentID))
	query.Set("requestId", requestID)

	var request SpecialRegistrationRequest
	if err := p.get(ctx, p.cfg.SubmitURL, query, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// RetrieveAll fetches every registration request of the student in the given
// term.
func (p *Provider) RetrieveAll(ctx context.Context, term, campus, studentID string) ([]SpecialRegistrationRequest, error) {
	query := url.Values{}
	query.Set("term", term)
	query.Set("campus", campus)
	query.Set("studentId", FormatStudentID(studentID))

	var requests []SpecialRegistrationRequest
	if err := p.get(ctx, p.cfg.getAllURL(), query, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// HasRequests reports whether the student has any open registration request.
// When the check endpoint is the get-all endpoint the response is a list;
// otherwise it is a plain status object.
func (p *Provider) HasRequests(ctx context.Context, term, campus, studentID string) (bool, error) {
	query := url.Values{}
	query.Set("term", term)
	query.Set("campus", campus)
	query.Set("studentId", FormatStudentID(studentID))

	checkURL := p.cfg.checkURL()
	if checkURL == p.cfg.getAllURL() {
		var requests []SpecialRegistrationRequest
		if err := p.get(ctx, checkURL, query, &requests); err != nil {
			return false, err
		}
		return len(requests) > 0, nil
	}

	var response SpecialRegistrationResponse
	if err := p.get(ctx, checkURL, query, &response); err != nil {
		return false, err
	}
	return response.Success(), nil
}

func (p *Provider) post(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSpecRegFailed, err)
	}
	req, err := p.newRequest(ctx, http.MethodPost, endpoint, nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, out)
}

func (p *Provider) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	req, err := p.newRequest(ctx, http.MethodGet, endpoint, query, nil)
	if err != nil {
		return err
	}
	return p.do(req, out)
}

func (p *Provider) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint %q", apperrors.ErrSpecRegFailed, endpoint)
	}

	values := target.Query()
	for key, vals := range query {
		for _, v := range vals {
			values.Set(key, v)
		}
	}
	if p.cfg.APIKeyParameter != "" && p.cfg.APIKeyValue != "" {
		values.Set(p.cfg.APIKeyParameter, p.cfg.APIKeyValue)
	}
	target.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSpecRegFailed, err)
	}
	if p.cfg.User != "" {
		req.SetBasicAuth(p.cfg.User, p.cfg.Password)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (p *Provider) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSpecRegFailed, err)
	}
	defer resp.Body.Close()

	p.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Remote registration call")

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSpecRegFailed, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: unexpected status %d: %s", apperrors.ErrSpecRegFailed, resp.StatusCode, bytes.TrimSpace(payload))
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", apperrors.ErrSpecRegFailed, err)
	}
	return nil
}
