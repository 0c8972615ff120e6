package adapters

import (
	"strings"
	"time"

	"github.com/fleetboss/fleet-service/internal/storage"
	"github.com/fleetboss/fleet-service/pkg/metrics"
)

// MetricsAdapter адаптирует metrics для storage.MetricsInterface
type MetricsAdapter struct{}

// NewMetricsAdapter создает новый адаптер для метрик
func NewMetricsAdapter() storage.MetricsInterface {
	return &MetricsAdapter{}
}

// IncDBQuery увеличивает счетчик запросов к БД
func (a *MetricsAdapter) IncDBQuery(operation string) {
	metrics.DBQueriesTotal.WithLabelValues(operation, tableFor(operation)).Inc()
}

// ObserveDBQueryDuration записывает время выполнения запроса к БД
func (a *MetricsAdapter) ObserveDBQueryDuration(operation string, duration time.Duration) {
	metrics.DBQueryDuration.WithLabelValues(operation, tableFor(operation)).Observe(duration.Seconds())
}

// tableFor определяет таблицу по имени операции репозитория
func tableFor(operation string) string {
	switch {
	case strings.HasPrefix(operation, "fleet_viewer"):
		return "fleet_access_viewers"
	case strings.HasPrefix(operation, "fleet_access"):
		return "fleet_access"
	default:
		return "characters"
	}
}
