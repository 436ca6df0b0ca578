package aggregation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/internal/report"
	"github.com/smukkama/aquasure-server/internal/standards"
	"github.com/smukkama/aquasure-server/pkg/config"
)

// Store is the persistence the aggregator needs. *database.DB implements it.
type Store interface {
	ListSamples(ctx context.Context, filter database.SampleFilter) ([]*database.Sample, error)
	UpsertProjectDailySummary(ctx context.Context, s *database.ProjectDailySummary) error
}

// DailyAggregator rolls up each project's samples created on one day
type DailyAggregator struct {
	store     Store
	standards *standards.Registry
	log       *logger.Logger
	now       func() time.Time
}

// NewDailyAggregator creates a new daily aggregator
func NewDailyAggregator(store Store, reg *standards.Registry, log *logger.Logger) *DailyAggregator {
	if reg == nil {
		reg = standards.Default()
	}
	return &DailyAggregator{
		store:     store,
		standards: reg,
		log:       log.With("component", "daily-aggregator"),
		now:       time.Now,
	}
}

// Aggregate summarizes the samples created on the UTC day containing
// targetDate and upserts one row per project. It returns the number of
// projects written.
func (d *DailyAggregator) Aggregate(ctx context.Context, targetDate time.Time) (int, error) {
	day := targetDate.UTC().Truncate(24 * time.Hour)
	next := day.Add(24 * time.Hour)

	samples, err := d.store.ListSamples(ctx, database.SampleFilter{
		CreatedFrom:   &day,
		CreatedBefore: &next,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load samples for %s: %w", day.Format(report.DateLayout), err)
	}

	byProject := make(map[uuid.UUID][]*database.Sample)
	for _, s := range samples {
		byProject[s.ProjectID] = append(byProject[s.ProjectID], s)
	}

	ids := make([]uuid.UUID, 0, len(byProject))
	for id := range byProject {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		summary := d.summarize(id, day, byProject[id])
		if err := d.store.UpsertProjectDailySummary(ctx, summary); err != nil {
			return 0, fmt.Errorf("failed to store summary for project %s: %w", id, err)
		}
	}

	d.log.Info("daily aggregation completed",
		"date", day.Format(report.DateLayout), "samples", len(samples), "projects", len(ids))
	return len(ids), nil
}

func (d *DailyAggregator) summarize(projectID uuid.UUID, day time.Time, samples []*database.Sample) *database.ProjectDailySummary {
	s := report.Summarize(samples)

	compliance := make(map[string]database.ComplianceSet)
	for name, metals := range report.ComplianceByStandard(samples, d.standards) {
		set := make(database.ComplianceSet, len(metals))
		for metal, c := range metals {
			set[metal] = database.ComplianceEntry{Violations: c.Violations, Total: c.Total, Rate: c.Rate}
		}
		compliance[name] = set
	}

	return &database.ProjectDailySummary{
		ProjectID:         projectID,
		Date:              day,
		SampleCount:       s.Count,
		AverageHMPI:       s.AverageIndex,
		HighRiskCount:     s.HighRiskCount,
		RiskDistribution:  s.RiskTierCounts,
		MetalDistribution: s.MetalCounts,
		Compliance:        compliance,
	}
}

// AggregatePreviousDay aggregates the previous full UTC day
func (d *DailyAggregator) AggregatePreviousDay(ctx context.Context) (int, error) {
	return d.Aggregate(ctx, d.now().UTC().AddDate(0, 0, -1))
}

// NextRunTime returns the first HH:MM strictly after now, in now's location
func NextRunTime(timeOfDay string, now time.Time) (time.Time, error) {
	hour, minute, err := config.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	run := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !run.After(now) {
		run = run.AddDate(0, 0, 1)
	}
	return run, nil
}
