package alerting

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/hmpi"
)

var ErrInvalidTransition = errors.New("invalid alert status transition")

var tierPriority = map[hmpi.RiskTier]string{
	hmpi.VeryHighRisk: database.AlertPriorityHigh,
	hmpi.HighRisk:     database.AlertPriorityHigh,
	hmpi.ModerateRisk: database.AlertPriorityMedium,
}

var recommendedActions = map[string]string{
	database.AlertPriorityHigh:   "Immediate water restriction; Emergency testing protocol; Notify authorities",
	database.AlertPriorityMedium: "Increased monitoring; Follow-up sampling; Review treatment options",
	database.AlertPriorityLow:    "Continue monitoring; Document findings; Schedule next review",
}

// PriorityFor returns the alert priority for a tier. ok is false for tiers
// that do not raise an alert (Low Risk, Safe).
func PriorityFor(tier hmpi.RiskTier) (priority string, ok bool) {
	priority, ok = tierPriority[tier]
	return priority, ok
}

// RecommendedAction returns the action text shown with an alert.
func RecommendedAction(priority string) string {
	return recommendedActions[priority]
}

// Derive builds the alert a sample should raise, or nil if none.
func Derive(sample *database.Sample, now time.Time) *database.Alert {
	priority, ok := PriorityFor(sample.RiskLevel)
	if !ok {
		return nil
	}
	return &database.Alert{
		ID:                uuid.New(),
		SampleID:          sample.ID,
		Priority:          priority,
		RiskLevel:         sample.RiskLevel,
		Status:            database.AlertStatusActive,
		RecommendedAction: RecommendedAction(priority),
		CreatedAt:         now,
	}
}

var statusOrder = map[string]int{
	database.AlertStatusActive:       0,
	database.AlertStatusAcknowledged: 1,
	database.AlertStatusResolved:     2,
}

// ValidStatus reports whether s is a known alert status.
func ValidStatus(s string) bool {
	_, ok := statusOrder[s]
	return ok
}

// ValidPriority reports whether p is a known alert priority.
func ValidPriority(p string) bool {
	_, ok := recommendedActions[p]
	return ok
}

// CheckTransition allows active -> acknowledged -> resolved one step at a
// time. Staying in the same status is allowed and is a no-op for callers.
func CheckTransition(from, to string) error {
	f, okFrom := statusOrder[from]
	t, okTo := statusOrder[to]
	if !okFrom || !okTo {
		return ErrInvalidTransition
	}
	if t == f || t == f+1 {
		return nil
	}
	return ErrInvalidTransition
}
