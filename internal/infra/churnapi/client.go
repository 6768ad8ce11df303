package churnapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"churnportal/internal/app/policies"
	"churnportal/internal/domain/employee"
)

const (
	loginPath        = "/login"
	predictPath      = "/predict"
	predictBatchPath = "/predict-batch"

	errorSnippetLimit = 512
)

var (
	ErrEmptyPrediction = errors.New("churnapi: response carried no prediction")
	ErrMissingSummary  = errors.New("churnapi: response carried no summary")
)

// Client calls the external churn prediction and login API.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Logger  *slog.Logger
}

// NewHTTPClient returns a client whose transport gives up when the API sends
// no response headers within headerTimeout. Zero keeps the wait unbounded.
func NewHTTPClient(headerTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		HTTP:    httpClient,
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Logger:  logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type predictResponse struct {
	Prediction string `json:"prediction"`
}

type predictBatchResponse struct {
	Summary     *employee.BatchSummary `json:"summary"`
	Predictions []string               `json:"predictions"`
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	if err := c.post(ctx, loginPath, loginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Predict(ctx context.Context, record employee.Record) (string, error) {
	var resp predictResponse
	if err := c.post(ctx, predictPath, record, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Prediction) == "" {
		return "", &ServerError{Endpoint: predictPath, StatusCode: http.StatusOK, Err: ErrEmptyPrediction}
	}
	return resp.Prediction, nil
}

// PredictBatch sends every record in a single request.
func (c *Client) PredictBatch(ctx context.Context, records []employee.Record) (policies.BatchResponse, error) {
	if records == nil {
		records = []employee.Record{}
	}
	var resp predictBatchResponse
	if err := c.post(ctx, predictBatchPath, records, &resp); err != nil {
		return policies.BatchResponse{}, err
	}
	if resp.Summary == nil {
		return policies.BatchResponse{}, &ServerError{Endpoint: predictBatchPath, StatusCode: http.StatusOK, Err: ErrMissingSummary}
	}
	return policies.BatchResponse{Summary: *resp.Summary, Predictions: resp.Predictions}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c == nil || c.HTTP == nil {
		return &TransportError{Endpoint: path, Err: errors.New("http client not configured")}
	}
	if c.BaseURL == "" {
		return &TransportError{Endpoint: path, Err: errors.New("base url not configured")}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		c.logError("churn api request failed", path, err)
		return &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetLimit))
		err := &ServerError{Endpoint: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		c.logError("churn api returned error", path, err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err := &ServerError{Endpoint: path, StatusCode: resp.StatusCode, Err: err}
		c.logError("churn api decode failed", path, err)
		return err
	}
	return nil
}

func (c *Client) logError(msg, path string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "endpoint", path, "error", err)
}

var (
	_ policies.PredictionPort  = (*Client)(nil)
	_ policies.CredentialsPort = (*Client)(nil)
)
