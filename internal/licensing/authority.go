package licensing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/pkg/logger"
	"github.com/valyala/fasthttp"
)

var (
	ErrRegistrationRejected = errors.New("authority rejected registration")
	ErrUnknownStatus        = errors.New("authority returned unknown status")
)

type Config struct {
	RegisterURL     string
	AuthenticateURL string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
}

// RegisterRequest is the company profile posted on first registration.
type RegisterRequest struct {
	CompanyName   string `json:"CompanyName"`
	CompanyCode   string `json:"CompanyCode"`
	Email         string `json:"Email"`
	ContactPerson string `json:"ContactPerson"`
	ContactNumber string `json:"ContactNumber"`
	Address       string `json:"Address"`
	City          string `json:"City"`
	State         string `json:"State"`
	ZipCode       string `json:"ZipCode"`
}

type RegisterResponse struct {
	Status     string `json:"status"`
	CustomerID string `json:"CustomerId"`
	Message    string `json:"message,omitempty"`
}

type AuthenticateRequest struct {
	CustomerID string `json:"CustomerId"`
}

// AuthenticateResponse carries the authority's license verdict. The
// status field is free text; "waiting..." style answers mean the license
// desk has not decided yet.
type AuthenticateResponse struct {
	AuthenticationStatus  string `json:"Authenticationstatus"`
	ProductRegistrationID int64  `json:"ProductRegistrationId"`
	UniqueIdentifier      string `json:"UniqueIdentifier"`
	ProductFromDate       string `json:"ProductFromDate"` // YYYY-MM-DD
	ProductToDate         string `json:"ProductToDate"`   // YYYY-MM-DD
	ProjectCode           string `json:"ProjectCode"`
	DeviceCount           int    `json:"DeviceCount"`
	BranchCount           int    `json:"BranchCount"`
	MobileDeviceCount     int    `json:"MobileDeviceCount"`
}

// Verdict is the authority's answer folded into the company status
// domain. Waiting means keep polling.
type Verdict struct {
	Status  model.AuthStatus
	Waiting bool
	Grant   *model.LicenseGrant
}

type Client struct {
	config Config
	http   *fasthttp.Client
}

func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	return &Client{
		config: config,
		http: &fasthttp.Client{
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}
}

// Register submits the company profile and returns the authority-assigned
// customer id.
func (c *Client) Register(ctx context.Context, company *model.Company) (string, error) {
	body, err := json.Marshal(RegisterRequest{
		CompanyName:   company.Name,
		CompanyCode:   company.CompanyCode,
		Email:         company.Email,
		ContactPerson: company.ContactPerson,
		ContactNumber: company.ContactNumber,
		Address:       company.Address,
		City:          company.City,
		State:         company.State,
		ZipCode:       company.ZipCode,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := c.doRequest(ctx, c.config.RegisterURL, body)
	if err != nil {
		return "", err
	}

	var resp RegisterResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.CustomerID == "" {
		logger.Warn("registration rejected", "company_code", company.CompanyCode, "status", resp.Status, "message", resp.Message)
		return "", ErrRegistrationRejected
	}

	logger.Info("company registered with authority", "company_code", company.CompanyCode, "customer_id", resp.CustomerID)

	return resp.CustomerID, nil
}

// Authenticate asks the authority for the current license verdict.
func (c *Client) Authenticate(ctx context.Context, customerID string) (*Verdict, error) {
	body, err := json.Marshal(AuthenticateRequest{CustomerID: customerID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := c.doRequest(ctx, c.config.AuthenticateURL, body)
	if err != nil {
		return nil, err
	}

	var resp AuthenticateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return c.interpret(&resp)
}

func (c *Client) interpret(resp *AuthenticateResponse) (*Verdict, error) {
	status := strings.TrimSpace(resp.AuthenticationStatus)

	switch {
	case status == string(model.AuthStatusApproved):
		grant, err := buildGrant(resp)
		if err != nil {
			return nil, err
		}
		return &Verdict{Status: model.AuthStatusApproved, Grant: grant}, nil
	case status == string(model.AuthStatusExpired):
		return &Verdict{Status: model.AuthStatusExpired}, nil
	case status == string(model.AuthStatusBlocked):
		return &Verdict{Status: model.AuthStatusBlocked}, nil
	case status == string(model.AuthStatusPending),
		strings.Contains(strings.ToLower(status), "waiting"):
		return &Verdict{Waiting: true}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
}

func buildGrant(resp *AuthenticateResponse) (*model.LicenseGrant, error) {
	grant := &model.LicenseGrant{
		ProductRegistrationID: resp.ProductRegistrationID,
		UniqueIdentifier:      resp.UniqueIdentifier,
		ProjectCode:           resp.ProjectCode,
		DeviceCount:           resp.DeviceCount,
		BranchCount:           resp.BranchCount,
		MobileDeviceCount:     resp.MobileDeviceCount,
	}

	if resp.ProductFromDate != "" {
		from, err := time.Parse("2006-01-02", resp.ProductFromDate)
		if err != nil {
			return nil, fmt.Errorf("bad ProductFromDate %q: %w", resp.ProductFromDate, err)
		}
		grant.ProductFromDate = &from
	}
	if resp.ProductToDate != "" {
		to, err := time.Parse("2006-01-02", resp.ProductToDate)
		if err != nil {
			return nil, fmt.Errorf("bad ProductToDate %q: %w", resp.ProductToDate, err)
		}
		grant.ProductToDate = &to
	}

	return grant, nil
}

func (c *Client) doRequest(ctx context.Context, url string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		result, err := c.doRequestOnce(ctx, url, body)
		if err == nil {
			return result, nil
		}

		logger.Warn("authority request failed", "url", url, "attempt", attempt+1, "error", err)
		lastErr = err
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) doRequestOnce(ctx context.Context, url string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}
