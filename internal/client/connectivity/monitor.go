// Package connectivity проверяет, настроена ли синхронизация и доступно ли
// удаленное хранилище.
package connectivity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/fitsync/internal/client/api"
	"github.com/iudanet/fitsync/internal/health"
)

// DefaultProbeTimeout ограничение времени одной проверки
const DefaultProbeTimeout = 5 * time.Second

//go:generate moq -out pinger_mock.go . Pinger

// Pinger минимальная операция удаленного хранилища для проверки связи
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeResult результат проверки; ошибка описана текстом и не прерывает работу
type ProbeResult struct {
	Error     string
	Connected bool
}

// Monitor проверяет настройку и доступность удаленного хранилища
type Monitor struct {
	pinger   Pinger
	logger   *slog.Logger
	endpoint string
	token    string
	timeout  time.Duration
}

// NewMonitor создает монитор. Пустой endpoint или token означает,
// что синхронизация не настроена и проверки не выполняются.
func NewMonitor(pinger Pinger, endpoint, token string, timeout time.Duration, logger *slog.Logger) *Monitor {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Monitor{
		pinger:   pinger,
		logger:   logger,
		endpoint: endpoint,
		token:    token,
		timeout:  timeout,
	}
}

// IsSyncConfigured reports whether both the endpoint and the credential are set.
func (m *Monitor) IsSyncConfigured() bool {
	return m.endpoint != "" && m.token != "" && m.pinger != nil
}

// Probe проверяет связь с ограничением по времени. Никогда не возвращает ошибку:
// таймаут, отказ в авторизации и сетевые ошибки описываются в ProbeResult.Error.
func (m *Monitor) Probe(ctx context.Context) ProbeResult {
	if !m.IsSyncConfigured() {
		return ProbeResult{Error: "sync is not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(ctx)
	if err == nil {
		return ProbeResult{Connected: true}
	}

	result := ProbeResult{Error: m.classify(err)}
	m.logger.Debug("Connectivity probe failed", "endpoint", m.endpoint, "error", err)
	return result
}

// Status возвращает состояние для health endpoint.
func (m *Monitor) Status(ctx context.Context) health.Status {
	configured := m.IsSyncConfigured()
	probe := m.Probe(ctx)
	return health.Status{
		Configured: configured,
		Connected:  probe.Connected,
		Error:      probe.Error,
	}
}

func (m *Monitor) classify(err error) string {
	var te *api.TransportError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &te) && te.Timeout():
		return fmt.Sprintf("timeout after %s", m.timeout)
	case errors.Is(err, context.Canceled):
		return "probe cancelled"
	case errors.Is(err, api.ErrUnauthorized):
		return "authentication failed: " + err.Error()
	case errors.As(err, &te):
		return "remote store unreachable: " + err.Error()
	default:
		return err.Error()
	}
}
