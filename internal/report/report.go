package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/hmpi"
	"github.com/smukkama/aquasure-server/internal/standards"
)

const DateLayout = "2006-01-02"

// Report is everything an exporter needs to render one report. All values
// come from Summarize, ComplianceRate and the stored sample fields.
type Report struct {
	Title        string                               `json:"title"`
	Project      *database.Project                    `json:"project,omitempty"`
	ProjectCount int                                  `json:"project_count"`
	GeneratedAt  time.Time                            `json:"generated_at"`
	Summary      Summary                              `json:"summary"`
	Standards    []string                             `json:"standards"`
	Compliance   map[string]map[hmpi.Metal]Compliance `json:"compliance"`
	Rows         []Row                                `json:"rows"`
}

// Row is one sample line of an export.
type Row struct {
	SampleID      string        `json:"sample_id"`
	Project       string        `json:"project"`
	Location      string        `json:"location"`
	Metal         hmpi.Metal    `json:"metal"`
	Concentration float64       `json:"concentration"`
	HMPI          float64       `json:"hmpi"`
	RiskLevel     hmpi.RiskTier `json:"risk_level"`
	Date          string        `json:"date"`
	Checks        []LimitCheck  `json:"checks"`
}

// LimitCheck is a sample measured against one standard. Limit is nil when the
// standard has no entry for the metal.
type LimitCheck struct {
	Standard string   `json:"standard"`
	Limit    *float64 `json:"limit"`
	Exceeds  bool     `json:"exceeds"`
}

// Build assembles a report. project nil means all projects. projects is used
// to resolve names and locations for rows.
func Build(project *database.Project, samples []*database.Sample, projects map[uuid.UUID]*database.Project, reg *standards.Registry, now time.Time) *Report {
	r := &Report{
		Project:     project,
		GeneratedAt: now,
		Summary:     Summarize(samples),
		Standards:   OrderedStandards(reg),
		Compliance:  ComplianceByStandard(samples, reg),
		Rows:        make([]Row, 0, len(samples)),
	}

	if project != nil {
		r.Title = "Project Report - " + project.Name
		r.ProjectCount = 1
	} else {
		r.Title = "Comprehensive Report - All Projects"
		r.ProjectCount = len(projects)
	}

	tables := make([]standards.Table, len(r.Standards))
	for i, name := range r.Standards {
		tables[i], _ = reg.Table(name)
	}

	for _, s := range samples {
		row := Row{
			SampleID:      s.SampleCode,
			Project:       "Unknown",
			Metal:         s.Metal,
			Concentration: s.Concentration,
			HMPI:          s.HMPIValue,
			RiskLevel:     s.RiskLevel,
			Date:          s.DateCollected.Format(DateLayout),
			Checks:        make([]LimitCheck, len(tables)),
		}
		if p, ok := projects[s.ProjectID]; ok {
			row.Project = p.Name
			row.Location = p.Location()
		}
		for i, t := range tables {
			check := LimitCheck{Standard: r.Standards[i]}
			if limit, ok := t.Limit(s.Metal); ok {
				l := limit
				check.Limit = &l
				check.Exceeds = s.Concentration > limit
			}
			row.Checks[i] = check
		}
		r.Rows = append(r.Rows, row)
	}

	return r
}

// OrderedStandards lists WHO then BBI, then any further standards by name.
func OrderedStandards(reg *standards.Registry) []string {
	rank := func(name string) int {
		switch name {
		case standards.WHO:
			return 0
		case standards.BBI:
			return 1
		default:
			return 2
		}
	}
	names := reg.Names()
	sort.SliceStable(names, func(i, j int) bool {
		return rank(names[i]) < rank(names[j])
	})
	return names
}

// Columns returns the export header line for a report.
func (r *Report) Columns() []string {
	cols := []string{"Sample ID", "Project", "Location", "Metal", "Concentration", "HMPI", "Risk Level", "Date"}
	for _, name := range r.Standards {
		cols = append(cols, name+" Limit")
	}
	for _, name := range r.Standards {
		cols = append(cols, "Exceeds "+name)
	}
	return cols
}

// HighRiskShare is the percentage of samples counted as high risk, 0 when
// there are no samples.
func (r *Report) HighRiskShare() float64 {
	if r.Summary.Count == 0 {
		return 0
	}
	return float64(r.Summary.HighRiskCount) / float64(r.Summary.Count) * 100
}
