// Package api реализует клиент удаленного хранилища поверх HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент.
// token - bearer токен, выданный вне клиента синхронизации.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
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

// Ping проверяет доступность сервера и действительность токена
func (c *Client) Ping(ctx context.Context) error {
	var resp api.PingResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/ping", nil, &resp); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// ReadSince возвращает записи владельца заданного типа с server_seq > watermark
// и новый водяной знак сервера
func (c *Client) ReadSince(ctx context.Context, ownerID string, t models.EntityType, watermark int64) (*api.ReadResponse, error) {
	q := url.Values{}
	q.Set("since", strconv.FormatInt(watermark, 10))
	q.Set("owner_id", ownerID)
	path := fmt.Sprintf("/api/v1/records/%s?%s", url.PathEscape(string(t)), q.Encode())

	var resp api.ReadResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("read %s failed: %w", t, err)
	}
	return &resp, nil
}

// WriteBatch отправляет пакет записей одного типа
func (c *Client) WriteBatch(ctx context.Context, t models.EntityType, records []api.Record) (*api.WriteResult, error) {
	path := fmt.Sprintf("/api/v1/records/%s", url.PathEscape(string(t)))

	var resp api.WriteResult
	if err := c.doRequest(ctx, http.MethodPost, path, api.WriteRequest{Records: records}, &resp); err != nil {
		return nil, fmt.Errorf("write %s failed: %w", t, err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(method+" "+path, resp.StatusCode, respBody)
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
