package service

import (
	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"

	"github.com/robfig/cron/v3"
)

// WatchlistScheduler re-analyzes the configured watchlist on a cron
// schedule and broadcasts the results to every connected subscriber.
type WatchlistScheduler struct {
	cfg          *config.Config
	logger       *logger.Logger
	orchestrator *Orchestrator
	cron         *cron.Cron
}

// NewWatchlistScheduler creates a new WatchlistScheduler.
func NewWatchlistScheduler(cfg *config.Config, log *logger.Logger, orchestrator *Orchestrator) *WatchlistScheduler {
	return &WatchlistScheduler{
		cfg:          cfg,
		logger:       log,
		orchestrator: orchestrator,
		cron:         cron.New(),
	}
}

// Start registers the watchlist job and starts the cron loop. With no
// cron spec or an empty watchlist it does nothing.
func (s *WatchlistScheduler) Start() error {
	if s.cfg.Watchlist.CronSpec == "" || len(s.cfg.Watchlist.Symbols) == 0 {
		s.logger.Info("Watchlist scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Watchlist.CronSpec, s.run)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Watchlist scheduler started",
		logger.StringField("cron_spec", s.cfg.Watchlist.CronSpec),
		logger.IntField("symbols", len(s.cfg.Watchlist.Symbols)),
	)
	return nil
}

// Stop halts the cron loop; running jobs finish on their own.
func (s *WatchlistScheduler) Stop() {
	s.cron.Stop()
}

func (s *WatchlistScheduler) run() {
	s.logger.Info("Watchlist analysis triggered", logger.IntField("symbols", len(s.cfg.Watchlist.Symbols)))

	// Watchlists longer than the batch ceiling run as several batches.
	symbols := s.cfg.Watchlist.Symbols
	for start := 0; start < len(symbols); start += s.cfg.Analyzer.MaxBatchSize {
		end := start + s.cfg.Analyzer.MaxBatchSize
		if end > len(symbols) {
			end = len(symbols)
		}

		// No subscriber id: results broadcast to everyone connected.
		err := s.orchestrator.AnalyzeBatch(dto.BatchAnalyzeRequest{
			StockCodes: symbols[start:end],
		})
		if err != nil {
			s.logger.Error("Watchlist batch rejected", logger.ErrorField(err))
		}
	}
}
