package handlers

import (
	"github.com/finlens/backend/internal/analysis"
	"github.com/finlens/backend/internal/analysisconfig"
	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/ews"
	"github.com/finlens/backend/internal/factor"
	"github.com/finlens/backend/internal/peer"
	"github.com/finlens/backend/internal/scoring"
	"github.com/finlens/backend/internal/trend"
	"github.com/finlens/backend/internal/valuation"
	"github.com/finlens/backend/pkg/logger"
)

// AnalyticsHandler serves every analytics endpoint. All engines share
// one configuration; the handler itself holds no mutable state.
type AnalyticsHandler struct {
	source  contracts.SnapshotSource
	builder *analysis.Builder

	trend      *trend.Analyzer
	peers      *peer.Normalizer
	management *scoring.ManagementScorer
	earnings   *scoring.EarningsScorer
	valuation  *valuation.Analyzer
	factors    *factor.Engine
	warnings   *ews.Engine

	cfg    *analysisconfig.Config
	logger *logger.Logger
}

// NewAnalyticsHandler wires the handler from one configuration.
func NewAnalyticsHandler(source contracts.SnapshotSource, cfg *analysisconfig.Config, log *logger.Logger) *AnalyticsHandler {
	normalizer := peer.NewNormalizer(cfg.Peer, log)
	return &AnalyticsHandler{
		source:     source,
		builder:    analysis.NewBuilder(source, cfg, log),
		trend:      trend.NewAnalyzer(cfg.Trend, log),
		peers:      normalizer,
		management: scoring.NewManagementScorer(cfg.Scoring.Management, log),
		earnings:   scoring.NewEarningsScorer(cfg.Scoring.Earnings, log),
		valuation:  valuation.NewAnalyzer(cfg.Valuation, log),
		factors:    factor.NewEngine(cfg.Factor, normalizer, log),
		warnings:   ews.NewEngine(cfg.Warning, log),
		cfg:        cfg,
		logger:     log,
	}
}
