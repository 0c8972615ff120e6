package crest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/config"
	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
	"github.com/fleetboss/fleet-service/pkg/metrics"
)

// Resource - один из трех ресурсов флота
type Resource string

const (
	ResourceOverview Resource = "overview"
	ResourceMembers  Resource = "members"
	ResourceWings    Resource = "wings"
)

// Resources перечисляет все ресурсы флота в порядке загрузки
var Resources = []Resource{ResourceOverview, ResourceMembers, ResourceWings}

// ParseResource проверяет имя ресурса из запроса
func ParseResource(name string) (Resource, bool) {
	switch r := Resource(name); r {
	case ResourceOverview, ResourceMembers, ResourceWings:
		return r, true
	default:
		return "", false
	}
}

// path возвращает суффикс URL ресурса относительно /fleets/{id}/
func (r Resource) path() string {
	if r == ResourceOverview {
		return ""
	}
	return string(r) + "/"
}

const maxBodySize = 4 << 20

// Client - HTTP клиент CREST API флотов
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	fleetURL   *regexp.Regexp
	logger     *zap.Logger
}

// NewClient создает клиент CREST по конфигурации
func NewClient(cfg config.CRESTConfig, logger *zap.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewClientWithHTTP создает клиент CREST с заданным http.Client
func NewClientWithHTTP(cfg config.CRESTConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    cfg.Timeout,
		fleetURL:   regexp.MustCompile(`^(?:` + regexp.QuoteMeta(baseURL) + `/fleets/(\d+)/?|(\d+))$`),
		logger:     logger,
	}
}

// ResourceURL строит URL ресурса флота
func (c *Client) ResourceURL(fleetID int64, resource Resource) string {
	return fmt.Sprintf("%s/fleets/%d/%s", c.baseURL, fleetID, resource.path())
}

// Fetch загружает ресурс флота с токеном персонажа.
// Любой статус кроме 200, сетевая ошибка или таймаут возвращают RemoteError.
func (c *Client) Fetch(ctx context.Context, fleetID int64, token string, resource Resource) (json.RawMessage, error) {
	start := time.Now()
	body, status, err := c.do(ctx, fleetID, token, resource)
	duration := time.Since(start).Seconds()
	metrics.RecordRemoteAPICall(string(resource), statusLabel(status), duration)

	if err != nil {
		c.logger.Warn("CREST request failed",
			zap.Int64("fleet_id", fleetID),
			zap.String("resource", string(resource)),
			zap.Int("status", status),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("CREST request completed",
		zap.Int64("fleet_id", fleetID),
		zap.String("resource", string(resource)),
		zap.Float64("duration", duration))

	return body, nil
}

func (c *Client) do(ctx context.Context, fleetID int64, token string, resource Resource) (json.RawMessage, int, error) {
	remoteErr := func(status int, cause error) error {
		return &internalerrors.RemoteError{
			FleetID:    fleetID,
			Resource:   string(resource),
			StatusCode: status,
			Cause:      cause,
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ResourceURL(fleetID, resource), nil)
	if err != nil {
		return nil, 0, remoteErr(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, remoteErr(0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, resp.StatusCode, remoteErr(resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, remoteErr(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}
	if !json.Valid(body) {
		return nil, resp.StatusCode, remoteErr(resp.StatusCode, fmt.Errorf("response is not valid JSON"))
	}

	return json.RawMessage(body), resp.StatusCode, nil
}

// ParseFleetURL извлекает идентификатор флота из URL CREST или строки с числом
func (c *Client) ParseFleetURL(raw string) (int64, error) {
	match := c.fleetURL.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return 0, fmt.Errorf("%w: %q", internalerrors.ErrInvalidFleetURL, raw)
	}

	digits := match[1]
	if digits == "" {
		digits = match[2]
	}

	fleetID, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || fleetID <= 0 {
		return 0, fmt.Errorf("%w: %q", internalerrors.ErrInvalidFleetURL, raw)
	}
	return fleetID, nil
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
