package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_trader_backtests_total",
			Help: "Total number of backtest runs completed",
		},
		[]string{"symbol"},
	)

	tradesSimulated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_trader_trades_simulated_total",
			Help: "Total number of simulated trades",
		},
		[]string{"symbol", "side"},
	)

	optimizerEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_trader_optimizer_evaluations_total",
			Help: "Parameter configurations evaluated by the optimizer",
		},
		[]string{"symbol", "status"},
	)

	optimizerBestScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "grid_trader_optimizer_best_score",
			Help: "Best configuration score seen in the current optimization batch",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(backtestsTotal)
	prometheus.MustRegister(tradesSimulated)
	prometheus.MustRegister(optimizerEvaluations)
	prometheus.MustRegister(optimizerBestScore)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBacktest records one completed backtest run and its simulated
// trades by side.
func RecordBacktest(symbol string, buys, sells float64) {
	backtestsTotal.WithLabelValues(symbol).Inc()
	tradesSimulated.WithLabelValues(symbol, "BUY").Add(buys)
	tradesSimulated.WithLabelValues(symbol, "SELL").Add(sells)
}

// RecordEvaluations records a batch of optimizer evaluation outcomes under
// the given status ("ok" or "failed").
func RecordEvaluations(symbol, status string, count int) {
	if count <= 0 {
		return
	}
	optimizerEvaluations.WithLabelValues(symbol, status).Add(float64(count))
}

// UpdateBestScore updates the best-score gauge for the running batch.
func UpdateBestScore(symbol string, score float64) {
	optimizerBestScore.WithLabelValues(symbol).Set(score)
}
