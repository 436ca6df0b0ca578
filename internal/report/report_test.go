package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/hmpi"
	"github.com/smukkama/aquasure-server/internal/standards"
)

func newSample(metal hmpi.Metal, concentration float64) *database.Sample {
	res := hmpi.Evaluate(metal, concentration, hmpi.Overrides{})
	return &database.Sample{
		ID:            uuid.New(),
		SampleCode:    "S-" + string(metal),
		Metal:         metal,
		Concentration: concentration,
		DateCollected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		HMPIValue:     res.Index,
		RiskLevel:     res.Tier,
	}
}

func withIndex(index float64) *database.Sample {
	return &database.Sample{Metal: hmpi.Lead, HMPIValue: index, RiskLevel: hmpi.Classify(index)}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	if s.Count != 0 || s.AverageIndex != 0 || s.HighRiskCount != 0 {
		t.Errorf("Expected zeroed summary, got %+v", s)
	}
	if len(s.RiskTierCounts) != 0 || len(s.MetalCounts) != 0 || len(s.MetalAverageIndex) != 0 {
		t.Errorf("Expected empty maps, got %+v", s)
	}
}

func TestSummarize_Average(t *testing.T) {
	s := Summarize([]*database.Sample{withIndex(10), withIndex(20), withIndex(30)})

	if s.Count != 3 {
		t.Errorf("Expected count 3, got %d", s.Count)
	}
	if s.AverageIndex != 20 {
		t.Errorf("Expected average 20, got %v", s.AverageIndex)
	}
}

func TestSummarize_Groupings(t *testing.T) {
	samples := []*database.Sample{
		newSample(hmpi.Lead, 0.09),       // 630 Very High
		newSample(hmpi.Lead, 0.001),      // 7 Safe
		newSample(hmpi.Arsenic, 0.006),   // 30 Moderate
		newSample(hmpi.Chromium, 0.0125), // 7.5 Safe
	}

	s := Summarize(samples)

	if s.RiskTierCounts[hmpi.Safe] != 2 || s.RiskTierCounts[hmpi.VeryHighRisk] != 1 || s.RiskTierCounts[hmpi.ModerateRisk] != 1 {
		t.Errorf("Unexpected tier counts: %v", s.RiskTierCounts)
	}
	if _, ok := s.RiskTierCounts[hmpi.HighRisk]; ok {
		t.Error("Tier with zero occurrences should be absent")
	}
	if s.MetalCounts[hmpi.Lead] != 2 {
		t.Errorf("Expected 2 lead samples, got %d", s.MetalCounts[hmpi.Lead])
	}
	if _, ok := s.MetalAverageIndex[hmpi.Mercury]; ok {
		t.Error("Metal without samples should have no average")
	}
	if got := s.MetalAverageIndex[hmpi.Lead]; got != 318.5 {
		t.Errorf("Expected lead average 318.5, got %v", got)
	}
	if s.HighRiskCount != 1 {
		t.Errorf("Expected 1 high-risk sample, got %d", s.HighRiskCount)
	}
}

func TestHighRiskCount_CountsBothTiers(t *testing.T) {
	samples := []*database.Sample{withIndex(50), withIndex(150), withIndex(49.99), withIndex(5)}

	if got := HighRiskCount(samples); got != 2 {
		t.Errorf("Expected High + Very High = 2, got %d", got)
	}
}

func TestComplianceRate(t *testing.T) {
	limits := standards.Table{hmpi.Lead: 0.01, hmpi.Mercury: 0.006}
	samples := []*database.Sample{
		newSample(hmpi.Lead, 0.005),
		newSample(hmpi.Lead, 0.01), // equal is compliant
		newSample(hmpi.Lead, 0.02),
		newSample(hmpi.Lead, 0.03),
		newSample(hmpi.Arsenic, 1), // not in table
	}

	got := ComplianceRate(samples, limits)

	lead := got[hmpi.Lead]
	if lead.Total != 4 || lead.Violations != 2 || lead.Rate != 50 {
		t.Errorf("Expected lead 2/4 violations at 50%%, got %+v", lead)
	}
	mercury := got[hmpi.Mercury]
	if mercury.Total != 0 || mercury.Violations != 0 || mercury.Rate != 100 {
		t.Errorf("Expected mercury fully compliant with no samples, got %+v", mercury)
	}
	if _, ok := got[hmpi.Arsenic]; ok {
		t.Error("Metal outside the limit table should not be reported")
	}
}

func TestComplianceByStandard_IndependentTables(t *testing.T) {
	samples := []*database.Sample{newSample(hmpi.Mercury, 0.003)}

	got := ComplianceByStandard(samples, standards.Default())

	if got[standards.WHO][hmpi.Mercury].Violations != 0 {
		t.Errorf("Expected mercury compliant under WHO, got %+v", got[standards.WHO][hmpi.Mercury])
	}
	if got[standards.BBI][hmpi.Mercury].Violations != 1 {
		t.Errorf("Expected mercury violating BBI, got %+v", got[standards.BBI][hmpi.Mercury])
	}
}

func TestBuild(t *testing.T) {
	project := &database.Project{ID: uuid.New(), Name: "Yamuna Survey", District: "Central", City: "Delhi"}
	projects := map[uuid.UUID]*database.Project{project.ID: project}

	lead := newSample(hmpi.Lead, 0.09)
	lead.ProjectID = project.ID
	zinc := newSample("Zinc", 0.001)
	zinc.ProjectID = uuid.New()

	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	r := Build(project, []*database.Sample{lead, zinc}, projects, standards.Default(), now)

	expectedCols := []string{
		"Sample ID", "Project", "Location", "Metal", "Concentration", "HMPI", "Risk Level", "Date",
		"WHO Limit", "BBI Limit", "Exceeds WHO", "Exceeds BBI",
	}
	cols := r.Columns()
	if len(cols) != len(expectedCols) {
		t.Fatalf("Expected %d columns, got %d: %v", len(expectedCols), len(cols), cols)
	}
	for i := range cols {
		if cols[i] != expectedCols[i] {
			t.Errorf("Column %d: expected %q, got %q", i, expectedCols[i], cols[i])
		}
	}

	if r.ProjectCount != 1 {
		t.Errorf("Expected project count 1, got %d", r.ProjectCount)
	}

	row := r.Rows[0]
	if row.Project != "Yamuna Survey" || row.Location != "Central, Delhi" {
		t.Errorf("Unexpected project/location: %q / %q", row.Project, row.Location)
	}
	if row.HMPI != 630 || row.RiskLevel != hmpi.VeryHighRisk || row.Date != "2024-03-01" {
		t.Errorf("Unexpected row values: %+v", row)
	}
	if row.Checks[0].Standard != standards.WHO || row.Checks[0].Limit == nil || !row.Checks[0].Exceeds {
		t.Errorf("Expected lead to exceed WHO, got %+v", row.Checks[0])
	}

	unknown := r.Rows[1]
	if unknown.Project != "Unknown" {
		t.Errorf("Expected unknown project name, got %q", unknown.Project)
	}
	if unknown.Checks[0].Limit != nil || unknown.Checks[0].Exceeds {
		t.Errorf("Expected no WHO limit for zinc, got %+v", unknown.Checks[0])
	}

	if r.HighRiskShare() != 50 {
		t.Errorf("Expected high-risk share 50, got %v", r.HighRiskShare())
	}
}

func TestBuild_AllProjects(t *testing.T) {
	projects := map[uuid.UUID]*database.Project{
		uuid.New(): {Name: "A"},
		uuid.New(): {Name: "B"},
	}

	r := Build(nil, nil, projects, standards.Default(), time.Now())

	if r.ProjectCount != 2 {
		t.Errorf("Expected project count 2, got %d", r.ProjectCount)
	}
	if r.Title != "Comprehensive Report - All Projects" {
		t.Errorf("Unexpected title %q", r.Title)
	}
	if r.HighRiskShare() != 0 {
		t.Errorf("Expected zero share for empty report, got %v", r.HighRiskShare())
	}
}
