// Package analysis orchestrates the analytics engines into full
// per-entity reports.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

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

// TrendMetrics are the metrics every report tracks over time.
var TrendMetrics = []string{"net_revenue", "operating_margin", "net_income", "roe", "debt_ratio"}

// Builder runs every engine for one entity and assembles the report.
// Engines that fail for data reasons degrade their report section to nil
// instead of failing the whole report.
type Builder struct {
	source contracts.SnapshotSource

	trend      *trend.Analyzer
	peers      *peer.Normalizer
	management *scoring.ManagementScorer
	earnings   *scoring.EarningsScorer
	valuation  *valuation.Analyzer
	factors    *factor.Engine
	warnings   *ews.Engine

	cfg *analysisconfig.Config
	log *logger.Logger
}

// NewBuilder wires the engines from one shared configuration.
func NewBuilder(source contracts.SnapshotSource, cfg *analysisconfig.Config, log *logger.Logger) *Builder {
	normalizer := peer.NewNormalizer(cfg.Peer, log)
	return &Builder{
		source:     source,
		trend:      trend.NewAnalyzer(cfg.Trend, log),
		peers:      normalizer,
		management: scoring.NewManagementScorer(cfg.Scoring.Management, log),
		earnings:   scoring.NewEarningsScorer(cfg.Scoring.Earnings, log),
		valuation:  valuation.NewAnalyzer(cfg.Valuation, log),
		factors:    factor.NewEngine(cfg.Factor, normalizer, log),
		warnings:   ews.NewEngine(cfg.Warning, log),
		cfg:        cfg,
		log:        log,
	}
}

// Build assembles the report for one entity at its latest available
// period. Trend, earnings, valuation and warning sections run
// concurrently once the series is loaded.
func (b *Builder) Build(ctx context.Context, entityID string) (*contracts.AnalysisReport, error) {
	series, err := b.source.LoadSeries(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load series for %s: %w", entityID, err)
	}
	if len(series) == 0 {
		return nil, &contracts.MissingInputError{Field: "snapshots", EntityID: entityID}
	}

	current := series[len(series)-1]
	report := &contracts.AnalysisReport{
		EntityID:    entityID,
		CompanyName: current.CompanyName,
		Period:      current.Period,
		GeneratedAt: time.Now().UTC(),
		Snapshot:    current,
	}

	trendSeries := &contracts.TrendSeries{EntityID: entityID, Snapshots: series}
	history := series[:len(series)-1]

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report.Trends = b.buildTrends(gctx, trendSeries)
		return nil
	})
	g.Go(func() error {
		score, err := b.earnings.Score(gctx, current, history)
		if err != nil {
			b.log.WithError(err).WithField("entity", entityID).Warn("Earnings scoring skipped")
			return nil
		}
		report.Earnings = score
		return nil
	})
	g.Go(func() error {
		result, err := b.valuation.Analyze(gctx, current, b.defaultCapitalInputs())
		if err != nil {
			b.log.WithError(err).WithField("entity", entityID).Warn("Value creation analysis skipped")
			return nil
		}
		report.ValueCreation = result
		return nil
	})
	g.Go(func() error {
		warnings, err := b.warnings.Evaluate(gctx, trendSeries, ews.ExtraSignals{})
		if err != nil {
			b.log.WithError(err).WithField("entity", entityID).Warn("Early warning evaluation skipped")
			return nil
		}
		report.Warnings = warnings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.log.WithFields(map[string]interface{}{
		"entity": entityID,
		"period": current.Period.String(),
		"trends": len(report.Trends),
	}).Info("Analysis report built")

	return report, nil
}

// BuildWithManagement builds the report and fills the management section
// from caller-supplied governance observations. Those inputs never come
// from the statements, so plain Build leaves the section empty.
func (b *Builder) BuildWithManagement(ctx context.Context, entityID string, inputs scoring.ManagementInputs) (*contracts.AnalysisReport, error) {
	report, err := b.Build(ctx, entityID)
	if err != nil {
		return nil, err
	}

	score, err := b.management.Score(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("score management for %s: %w", entityID, err)
	}
	report.Management = score
	return report, nil
}

// BuildAll builds the latest report for every known entity, then adds
// cross-sectional factor exposures over the cohort sharing the most
// recent common period. Per-entity failures are logged and skipped, not
// fatal for the batch.
func (b *Builder) BuildAll(ctx context.Context) ([]*contracts.AnalysisReport, error) {
	entities, err := b.source.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	if len(entities) == 0 {
		return nil, nil
	}

	var reports []*contracts.AnalysisReport
	for _, id := range entities {
		report, err := b.Build(ctx, id)
		if err != nil {
			b.log.WithError(err).WithField("entity", id).Warn("Report build failed")
			continue
		}
		reports = append(reports, report)
	}

	b.attachFactors(ctx, reports)

	b.log.WithFields(map[string]interface{}{
		"total":   len(entities),
		"success": len(reports),
		"failed":  len(entities) - len(reports),
	}).Info("Batch analysis completed")

	return reports, nil
}

// buildTrends analyzes every tracked metric; metrics with too little
// history are dropped from the report, not errors.
func (b *Builder) buildTrends(ctx context.Context, series *contracts.TrendSeries) []*contracts.TrendResult {
	results := make([]*contracts.TrendResult, 0, len(TrendMetrics))
	for _, metric := range TrendMetrics {
		result, err := b.trend.Analyze(ctx, series, metric)
		if err != nil {
			b.log.WithError(err).WithFields(map[string]interface{}{
				"entity": series.EntityID,
				"metric": metric,
			}).Debug("Trend skipped")
			continue
		}
		results = append(results, result)
	}
	return results
}

// attachFactors standardizes factor exposures across the reports that
// share the most common latest period.
func (b *Builder) attachFactors(ctx context.Context, reports []*contracts.AnalysisReport) {
	if len(reports) < b.cfg.Peer.MinPopulation {
		return
	}

	period := mostCommonPeriod(reports)
	peerSet := &contracts.PeerSet{Period: period}
	histories := make(map[string][]*contracts.Snapshot)
	for _, r := range reports {
		if r.Period != period {
			continue
		}
		peerSet.Snapshots = append(peerSet.Snapshots, r.Snapshot)
		series, err := b.source.LoadSeries(ctx, r.EntityID)
		if err != nil {
			continue
		}
		if len(series) > 0 {
			histories[r.EntityID] = series[:len(series)-1]
		}
	}
	if len(peerSet.Snapshots) < b.cfg.Peer.MinPopulation {
		return
	}

	vectors, err := b.factors.Compute(ctx, peerSet, histories)
	if err != nil {
		b.log.WithError(err).Warn("Factor exposure computation skipped")
		return
	}
	for _, r := range reports {
		if v, ok := vectors[r.EntityID]; ok {
			r.Factors = v
		}
	}
}

// defaultCapitalInputs builds WACC inputs from the configured market
// assumptions: CAPM at beta 1 for equity, the default tax rate, and the
// balance-sheet capital split.
func (b *Builder) defaultCapitalInputs() valuation.CapitalInputs {
	return valuation.CapitalInputs{
		CostOfEquity:     contracts.Num(b.valuation.CostOfEquityCAPM(1.0)),
		CostOfDebtPretax: contracts.Num(b.cfg.Valuation.RiskFreeRate + 0.02),
		TaxRate:          contracts.Num(b.cfg.Valuation.DefaultTaxRate),
	}
}

// mostCommonPeriod picks the latest period shared by the most reports;
// ties go to the more recent period.
func mostCommonPeriod(reports []*contracts.AnalysisReport) contracts.Period {
	counts := make(map[contracts.Period]int)
	for _, r := range reports {
		counts[r.Period]++
	}
	periods := make([]contracts.Period, 0, len(counts))
	for p := range counts {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		if counts[periods[i]] != counts[periods[j]] {
			return counts[periods[i]] > counts[periods[j]]
		}
		return periods[j].Before(periods[i])
	})
	return periods[0]
}
