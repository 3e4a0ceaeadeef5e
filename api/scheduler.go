/*
scheduler.go - Periodic low-supply monitor

PURPOSE:
  Periodically projects the supply of every active drug and remembers which
  ones run out within the low-supply threshold, so the reminder surface can
  warn before a refill is due.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Skips inactive drugs and drugs whose supply is not tracked (refill size 0)
  - Keeps the result of the last check for GET /api/alerts/low-supply

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether the monitor is active (default: true)

USAGE:
  monitor := NewSupplyMonitor(store, logger, 7)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - handlers.go: GetSupply endpoint (single drug)
  - drug/supply.go: Supply projection
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rxdose/dose-engine/drug"
)

// LowSupplyAlert is one drug whose supply runs out soon.
type LowSupplyAlert struct {
	DrugID       string `json:"drug_id"`
	Name         string `json:"name"`
	DaysOfSupply string `json:"days_of_supply"`
	RefillSize   int    `json:"refill_size"`
}

// LowSupplyResponse answers GET /api/alerts/low-supply.
type LowSupplyResponse struct {
	CheckedAt     string           `json:"checked_at,omitempty"`
	LowSupplyDays int              `json:"low_supply_days"`
	Alerts        []LowSupplyAlert `json:"alerts"`
}

// SupplyMonitor checks supplies in the background.
type SupplyMonitor struct {
	Store         drug.Store
	Logger        zerolog.Logger
	LowSupplyDays int
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	resultMu  sync.RWMutex
	checkedAt time.Time
	alerts    []LowSupplyAlert
}

// NewSupplyMonitor creates a new monitor.
func NewSupplyMonitor(store drug.Store, logger zerolog.Logger, lowSupplyDays int) *SupplyMonitor {
	return &SupplyMonitor{
		Store:         store,
		Logger:        logger.With().Str("component", "supply_monitor").Logger(),
		LowSupplyDays: lowSupplyDays,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the periodic check.
func (sm *SupplyMonitor) Start() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.Enabled || sm.CheckInterval <= 0 {
		sm.Logger.Info().Msg("disabled, not starting")
		return
	}

	if sm.ticker != nil {
		return
	}

	sm.ticker = time.NewTicker(sm.CheckInterval)
	sm.stop = make(chan struct{})
	sm.wg.Add(1)

	go sm.run(sm.ticker, sm.stop)

	sm.Logger.Info().Dur("interval", sm.CheckInterval).Msg("started")
}

// Stop stops the periodic check and waits for a running check to finish.
func (sm *SupplyMonitor) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.ticker != nil {
		sm.ticker.Stop()
		close(sm.stop)
		sm.wg.Wait()
		sm.ticker = nil
		sm.Logger.Info().Msg("stopped")
	}
}

func (sm *SupplyMonitor) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer sm.wg.Done()

	// Run immediately on start
	sm.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			sm.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow checks every active drug and replaces the stored alerts.
func (sm *SupplyMonitor) RunNow(ctx context.Context) error {
	drugs, err := sm.Store.List(ctx)
	if err != nil {
		sm.Logger.Error().Err(err).Msg("list drugs")
		return err
	}

	alerts := []LowSupplyAlert{}
	for _, d := range drugs {
		if !d.Active() {
			continue
		}
		report := d.Supply(sm.LowSupplyDays)
		if !report.Low {
			continue
		}
		alerts = append(alerts, LowSupplyAlert{
			DrugID:       string(d.ID),
			Name:         d.Name(),
			DaysOfSupply: report.DaysOfSupply.Value.String(),
			RefillSize:   d.RefillSize(),
		})
		sm.Logger.Warn().
			Str("drug_id", string(d.ID)).
			Str("name", d.Name()).
			Str("days_of_supply", report.DaysOfSupply.Value.String()).
			Msg("low supply")
	}

	sm.resultMu.Lock()
	sm.checkedAt = time.Now()
	sm.alerts = alerts
	sm.resultMu.Unlock()

	sm.Logger.Debug().Int("checked", len(drugs)).Int("low", len(alerts)).Msg("check completed")
	return nil
}

// Alerts returns the result of the last check.
func (sm *SupplyMonitor) Alerts() (time.Time, []LowSupplyAlert) {
	sm.resultMu.RLock()
	defer sm.resultMu.RUnlock()
	return sm.checkedAt, append([]LowSupplyAlert(nil), sm.alerts...)
}

// ServeHTTP answers GET /api/alerts/low-supply. ?refresh=true runs a check first.
func (sm *SupplyMonitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		if err := sm.RunNow(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "Supply check failed", err)
			return
		}
	}

	checkedAt, alerts := sm.Alerts()
	resp := LowSupplyResponse{
		LowSupplyDays: sm.LowSupplyDays,
		Alerts:        alerts,
	}
	if resp.Alerts == nil {
		resp.Alerts = []LowSupplyAlert{}
	}
	if !checkedAt.IsZero() {
		resp.CheckedAt = checkedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}
