package screening

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parcelworks/sitescreen/internal/model"
)

// Observer receives progress events as sites move through the stage sequence.
// Implementations must be safe for concurrent use: batch workers report from
// multiple goroutines.
type Observer interface {
	StageComplete(siteID string, stage model.Stage, status model.StageStatus, elapsed time.Duration)
	SiteFinalized(result *model.ScoringResult)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) StageComplete(string, model.Stage, model.StageStatus, time.Duration) {}
func (NopObserver) SiteFinalized(*model.ScoringResult)                                  {}

// LogObserver writes progress events to the global logger.
type LogObserver struct{}

func (LogObserver) StageComplete(siteID string, stage model.Stage, status model.StageStatus, elapsed time.Duration) {
	log := zap.L().With(
		zap.String("site", siteID),
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", elapsed),
	)
	if status == model.StageSuccess {
		log.Debug("screening: stage complete")
		return
	}
	log.Warn("screening: stage degraded", zap.String("status", string(status)))
}

func (LogObserver) SiteFinalized(result *model.ScoringResult) {
	zap.L().Info("screening: site scored",
		zap.String("site", result.SiteID),
		zap.Float64("score_4pct", result.Score4Pct),
		zap.Float64("score_9pct", result.Score9Pct),
		zap.String("tier", string(result.RecommendationTier)),
		zap.Bool("partial", result.PartialResult))
}

// MetricsSnapshot holds a point-in-time view of a batch run's health.
type MetricsSnapshot struct {
	SitesScored    int                                       `json:"sites_scored"`
	PartialResults int                                       `json:"partial_results"`
	Eliminated9Pct int                                       `json:"eliminated_9pct"`
	StageStatuses  map[model.Stage]map[model.StageStatus]int `json:"stage_statuses"`
	CollectedAt    time.Time                                 `json:"collected_at"`
}

// Collector is an Observer that aggregates batch statistics.
type Collector struct {
	mu             sync.Mutex
	sitesScored    int
	partialResults int
	eliminated9pct int
	stageStatuses  map[model.Stage]map[model.StageStatus]int
}

// NewCollector creates an empty batch metrics collector.
func NewCollector() *Collector {
	return &Collector{stageStatuses: make(map[model.Stage]map[model.StageStatus]int)}
}

func (c *Collector) StageComplete(_ string, stage model.Stage, status model.StageStatus, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byStatus := c.stageStatuses[stage]
	if byStatus == nil {
		byStatus = make(map[model.StageStatus]int)
		c.stageStatuses[stage] = byStatus
	}
	byStatus[status]++
}

func (c *Collector) SiteFinalized(result *model.ScoringResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sitesScored++
	if result.PartialResult {
		c.partialResults++
	}
	if result.Competition.Eliminated9Pct {
		c.eliminated9pct++
	}
}

// Snapshot returns a copy of the accumulated statistics.
func (c *Collector) Snapshot() *MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := make(map[model.Stage]map[model.StageStatus]int, len(c.stageStatuses))
	for stage, byStatus := range c.stageStatuses {
		cp := make(map[model.StageStatus]int, len(byStatus))
		for st, n := range byStatus {
			cp[st] = n
		}
		statuses[stage] = cp
	}
	return &MetricsSnapshot{
		SitesScored:    c.sitesScored,
		PartialResults: c.partialResults,
		Eliminated9Pct: c.eliminated9pct,
		StageStatuses:  statuses,
		CollectedAt:    time.Now().UTC(),
	}
}
