package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sheikh-saqib/account-ledger-system/internal/models"
)

// TransactionMetrics counts committed mutations per operation type.
type TransactionMetrics struct {
	registry    *prometheus.Registry
	deposits    prometheus.Counter
	withdrawals prometheus.Counter
	transfers   prometheus.Counter
	logger      *slog.Logger
}

func NewTransactionMetrics(logger *slog.Logger) *TransactionMetrics {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &TransactionMetrics{
		registry: registry,
		deposits: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "ledger_transactions_deposit_total",
			Help: "Number of deposit transactions committed",
		}),
		withdrawals: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "ledger_transactions_withdrawal_total",
			Help: "Number of withdrawal transactions committed",
		}),
		transfers: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "ledger_transactions_transfer_total",
			Help: "Number of transfer transactions committed",
		}),
		logger: logger,
	}
}

// Record increments the counter matching the transaction type.
func (m *TransactionMetrics) Record(txType models.TransactionType) {
	switch txType {
	case models.TypeDeposit:
		m.deposits.Inc()
	case models.TypeWithdrawal:
		m.withdrawals.Inc()
	case models.TypeTransfer:
		m.transfers.Inc()
	}
}

func (m *TransactionMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartMetricsServer serves /metrics on its own listener and returns the
// server so the caller can shut it down.
func (m *TransactionMetrics) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		m.logger.Info("starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}
