package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/deltasync/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// Пути API сервера
const (
	pathSync      = "/api/v1/sync"
	pathBootstrap = "/api/v1/sync/bootstrap"
	pathImport    = "/api/v1/admin/import"
)

// Ошибки, которые вызывающий код различает через errors.Is
var (
	ErrConflict     = errors.New("push rejected: server has newer changes")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrForbidden    = errors.New("forbidden")
)

// ClientAPI определяет операции синхронизации с сервером
type ClientAPI interface {
	Pull(ctx context.Context, accessToken string, lastPulledAt int64, turbo bool) (*api.PullResponse, error)
	Push(ctx context.Context, accessToken string, req api.PushRequest) error
	DownloadBootstrap(ctx context.Context, accessToken string, w io.Writer) (int64, error)
}

// ServerError ответ сервера с кодом ошибки
type ServerError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Is сопоставляет ответ сервера с ошибками пакета по HTTP статусу
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ ClientAPI = (*Client)(nil)

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Pull получает изменения с момента lastPulledAt (0 - первая синхронизация)
func (c *Client) Pull(ctx context.Context, accessToken string, lastPulledAt int64, turbo bool) (*api.PullResponse, error) {
	query := url.Values{}
	query.Set(api.ParamLastPulledAt, strconv.FormatInt(lastPulledAt, 10))
	if turbo {
		query.Set(api.ParamTurbo, "true")
	}

	var resp api.PullResponse
	if err := c.doRequest(ctx, http.MethodGet, pathSync+"?"+query.Encode(), accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("pull request failed: %w", err)
	}

	return &resp, nil
}

// Push отправляет локальные изменения. 409 возвращается как ошибка, совпадающая с ErrConflict
func (c *Client) Push(ctx context.Context, accessToken string, req api.PushRequest) error {
	var resp api.PushResponse
	if err := c.doRequest(ctx, http.MethodPost, pathSync, accessToken, req, &resp); err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	if !resp.OK {
		return errors.New("push request failed: server did not acknowledge")
	}
	return nil
}

// DownloadBootstrap пишет snapshot файл в w и возвращает его checkpoint
func (c *Client) DownloadBootstrap(ctx context.Context, accessToken string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathBootstrap, accessToken, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("bootstrap request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return 0, fmt.Errorf("bootstrap request failed: %w", parseError(resp.StatusCode, body))
	}

	checkpoint, err := strconv.ParseInt(resp.Header.Get(api.HeaderServerTimestamp), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s header: %w", api.HeaderServerTimestamp, err)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return 0, fmt.Errorf("failed to download snapshot: %w", err)
	}

	return checkpoint, nil
}

// Import отправляет записи в административный импорт работающего сервера.
// Нужен токен, выданный командой `token --admin`, если на сервере включена аутентификация.
func (c *Client) Import(ctx context.Context, accessToken, table string, records []api.Record) (*api.ImportResponse, error) {
	query := url.Values{}
	query.Set(api.ParamTable, table)

	var resp api.ImportResponse
	if err := c.doRequest(ctx, http.MethodPost, pathImport+"?"+query.Encode(), accessToken, records, &resp); err != nil {
		return nil, fmt.Errorf("import request failed: %w", err)
	}

	return &resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, accessToken string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return req, nil
}

// doRequest выполняет HTTP запрос с JSON телом и ответом
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result any) error {
	req, err := c.newRequest(ctx, method, path, accessToken, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, respBody)
	}

	if result != nil {
		// числа записей остаются json.Number
		dec := json.NewDecoder(bytes.NewReader(respBody))
		dec.UseNumber()
		if err := dec.Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func parseError(status int, body []byte) *ServerError {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &ServerError{StatusCode: status, Code: errResp.Code, Message: errResp.Error}
	}
	return &ServerError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}
