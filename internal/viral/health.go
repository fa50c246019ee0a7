package viral

import (
	"sort"
	"strings"
	"time"

	"reelkit/viralservice/internal/domain"
	"reelkit/viralservice/internal/metrics"
	"reelkit/viralservice/internal/providers/common"
)

// adapterHealth is observability-only bookkeeping: it feeds the diagnostics
// endpoint and the availability gauge but never gates a request, since the
// pipeline must behave identically regardless of prior requests.
type adapterHealth struct {
	consecutiveFailures int
	lastError           string
	lastErrorKind       common.ErrorKind
	lastSuccessAt       time.Time
	lastFailureAt       time.Time
	lastLatency         time.Duration
	totalRequests       int64
	totalFailures       int64
}

func (s *Service) recordAdapterResult(name string, err error, latency time.Duration, now time.Time) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return
	}

	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	state := s.health[key]
	if state == nil {
		state = &adapterHealth{}
		s.health[key] = state
	}
	state.totalRequests++
	if latency > 0 {
		state.lastLatency = latency
		metrics.ProviderRequestDuration.WithLabelValues(key).Observe(latency.Seconds())
	}

	if err == nil {
		state.consecutiveFailures = 0
		state.lastError = ""
		state.lastErrorKind = ""
		state.lastSuccessAt = now
		metrics.ProviderRequestsTotal.WithLabelValues(key, "ok").Inc()
		metrics.ProviderAvailable.WithLabelValues(key).Set(1)
		return
	}

	state.consecutiveFailures++
	state.totalFailures++
	state.lastFailureAt = now
	state.lastError = err.Error()
	state.lastErrorKind = common.KindOf(err)
	metrics.ProviderRequestsTotal.WithLabelValues(key, string(state.lastErrorKind)).Inc()
	if common.FatalForProvider(err) {
		metrics.ProviderAvailable.WithLabelValues(key).Set(0)
	}
}

func (s *Service) ProviderDiagnostics() []domain.ProviderDiagnostics {
	infos := s.Adapters()
	if len(infos) == 0 {
		return nil
	}

	s.healthMu.Lock()
	defer s.healthMu.Unlock()

	items := make([]domain.ProviderDiagnostics, 0, len(infos))
	for _, info := range infos {
		item := domain.ProviderDiagnostics{
			Name:    info.Name,
			Label:   info.Label,
			Kind:    info.Kind,
			Enabled: info.Enabled,
		}
		if state := s.health[strings.ToLower(info.Name)]; state != nil {
			item.ConsecutiveFailures = state.consecutiveFailures
			item.LastError = state.lastError
			item.LastErrorKind = string(state.lastErrorKind)
			if !state.lastSuccessAt.IsZero() {
				lastSuccessAt := state.lastSuccessAt
				item.LastSuccessAt = &lastSuccessAt
			}
			if !state.lastFailureAt.IsZero() {
				lastFailureAt := state.lastFailureAt
				item.LastFailureAt = &lastFailureAt
			}
			item.LastLatencyMS = state.lastLatency.Milliseconds()
			item.TotalRequests = state.totalRequests
			item.TotalFailures = state.totalFailures
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items
}
