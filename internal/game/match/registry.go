// match/registry.go
package match

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"pickleball/internal/game/shot"
)

const (
	DefaultWinningScore = 11
	DefaultWinMargin    = 2
)

// Settings are the engine-level tunables.
type Settings struct {
	WinningScore int
	WinMargin    int

	// PendingTTL expires challenges that were never accepted. With the
	// default of zero a pending challenge waits forever, which also keeps
	// both players locked out of new matches until someone forfeits.
	PendingTTL time.Duration

	// CompletedRetention keeps finished matches queryable by id until the
	// next sweep after it elapses. They are never returned by player lookups.
	CompletedRetention time.Duration
}

func DefaultSettings() Settings {
	return Settings{WinningScore: DefaultWinningScore, WinMargin: DefaultWinMargin}
}

// Registry owns every match and enforces the one-match-per-player rule.
// A single mutex guards all state; no method does I/O while holding it.
type Registry struct {
	mu       sync.Mutex
	matches  map[string]*Match
	byPlayer map[PlayerID]*Match // pending and active matches only

	rules    *shot.Rules
	settings Settings
	log      hclog.Logger
	now      func() time.Time
	newID    func() string
}

// NewRegistry builds an empty registry. A nil rules table means the reference
// table; non-positive score settings fall back to the defaults.
func NewRegistry(rules *shot.Rules, settings Settings, logger hclog.Logger) *Registry {
	if rules == nil {
		rules = shot.DefaultRules()
	}
	if settings.WinningScore <= 0 {
		settings.WinningScore = DefaultWinningScore
	}
	if settings.WinMargin <= 0 {
		settings.WinMargin = DefaultWinMargin
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Registry{
		matches:  make(map[string]*Match),
		byPlayer: make(map[PlayerID]*Match),
		rules:    rules,
		settings: settings,
		log:      logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (r *Registry) Rules() *shot.Rules { return r.rules }
func (r *Registry) Settings() Settings { return r.settings }

// lookupLocked resolves a player to their pending or active match.
func (r *Registry) lookupLocked(player PlayerID) *Match {
	return r.byPlayer[player]
}

func (r *Registry) unindexLocked(m *Match) {
	for _, p := range m.players {
		if r.byPlayer[p] == m {
			delete(r.byPlayer, p)
		}
	}
}

// Get returns a snapshot of any retained match by id, including completed ones.
func (r *Registry) Get(id string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return Snapshot{}, ErrUnknownMatch
	}
	return m.snapshot(), nil
}

// Stats counts retained matches per status.
type Stats struct {
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s Stats
	for _, m := range r.matches {
		switch m.status {
		case StatusPending:
			s.Pending++
		case StatusActive:
			s.Active++
		case StatusCompleted:
			s.Completed++
		}
	}
	return s
}

// SweepResult reports what a Sweep removed.
type SweepResult struct {
	Expired []Snapshot // pending challenges dropped by PendingTTL
	Evicted int        // completed matches dropped by CompletedRetention
}

// Sweep applies PendingTTL and CompletedRetention as of now. Expired
// challenges are completed without a winner and released immediately.
func (r *Registry) Sweep() SweepResult {
	r.mu.Lock()
	now := r.now()
	var res SweepResult
	for id, m := range r.matches {
		switch m.status {
		case StatusPending:
			if r.settings.PendingTTL > 0 && now.Sub(m.createdAt) >= r.settings.PendingTTL {
				m.complete(noSeat, now)
				r.unindexLocked(m)
				res.Expired = append(res.Expired, m.snapshot())
				delete(r.matches, id)
			}
		case StatusCompleted:
			if now.Sub(m.completedAt) >= r.settings.CompletedRetention {
				delete(r.matches, id)
				res.Evicted++
			}
		}
	}
	r.mu.Unlock()

	for _, s := range res.Expired {
		r.log.Info("challenge expired", "match", s.ID, "challenger", s.Challenger, "opponent", s.Opponent)
	}
	if res.Evicted > 0 {
		r.log.Debug("evicted completed matches", "count", res.Evicted)
	}
	return res
}
