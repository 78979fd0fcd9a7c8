package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Move results recorded on the moves counter
const (
	ResultMoved = "moved"
	ResultNoop  = "noop"
)

// Metrics holds the Prometheus collectors updated by the game service
type Metrics struct {
	Moves          *prometheus.CounterVec
	Merges         prometheus.Counter
	GamesOver      prometheus.Counter
	SessionsActive prometheus.GaugeFunc
}

// NewMetrics creates the service collectors and registers them with reg.
// A nil reg leaves them unregistered. The active sessions gauge is read from
// sessions at scrape time, so removals outside the service are reflected too;
// a nil sessions reports zero.
func NewMetrics(reg prometheus.Registerer, sessions func() int) *Metrics {
	if sessions == nil {
		sessions = func() int { return 0 }
	}
	m := &Metrics{
		Moves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "merge2048_moves_total",
				Help: "Move attempts by result",
			},
			[]string{"result"},
		),
		Merges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "merge2048_merges_total",
			Help: "Tile merges performed",
		}),
		GamesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "merge2048_games_over_total",
			Help: "Games that reached the game over state",
		}),
		SessionsActive: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "merge2048_sessions_active",
			Help: "Sessions currently held in memory",
		}, func() float64 { return float64(sessions()) }),
	}

	if reg != nil {
		reg.MustRegister(m.Moves, m.Merges, m.GamesOver, m.SessionsActive)
	}
	return m
}

func (m *Metrics) observeMove(moved bool, merges int, gameOver bool) {
	if m == nil {
		return
	}
	if !moved {
		m.Moves.WithLabelValues(ResultNoop).Inc()
		return
	}
	m.Moves.WithLabelValues(ResultMoved).Inc()
	m.Merges.Add(float64(merges))
	if gameOver {
		m.GamesOver.Inc()
	}
}
