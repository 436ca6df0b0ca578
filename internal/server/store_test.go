package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/database"
)

// memStore is an in-memory Store for handler tests
type memStore struct {
	mu        sync.Mutex
	projects  []*database.Project
	samples   []*database.Sample
	alerts    []*database.Alert
	summaries []*database.ProjectDailySummary
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) CreateProject(ctx context.Context, p *database.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	cp := *p
	m.projects = append(m.projects, &cp)
	return nil
}

func (m *memStore) UpdateProject(ctx context.Context, p *database.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.projects {
		if existing.ID == p.ID {
			p.CreatedBy = existing.CreatedBy
			p.CreatedAt = existing.CreatedAt
			cp := *p
			m.projects[i] = &cp
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memStore) GetProject(ctx context.Context, id uuid.UUID) (*database.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memStore) ListProjects(ctx context.Context) ([]*database.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*database.Project, 0, len(m.projects))
	for _, p := range m.projects {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) ListProjectDailySummaries(ctx context.Context, projectID uuid.UUID, since time.Time) ([]*database.ProjectDailySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*database.ProjectDailySummary
	for _, s := range m.summaries {
		if s.ProjectID == projectID && !s.Date.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) InsertSamples(ctx context.Context, samples []*database.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, s := range samples {
		s.CreatedAt = now
		m.samples = append(m.samples, s)
	}
	return nil
}

func (m *memStore) ListSamples(ctx context.Context, filter database.SampleFilter) ([]*database.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*database.Sample
	for _, s := range m.samples {
		if filter.ProjectID != nil && s.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.Metal != "" && s.Metal != filter.Metal {
			continue
		}
		if filter.RiskLevel != "" && s.RiskLevel != filter.RiskLevel {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) GetSample(ctx context.Context, id uuid.UUID) (*database.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.samples {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memStore) GetAlert(ctx context.Context, id uuid.UUID) (*database.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memStore) ListAlerts(ctx context.Context, filter database.AlertFilter) ([]*database.AlertDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*database.AlertDetail
	for _, a := range m.alerts {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && a.Priority != filter.Priority {
			continue
		}
		out = append(out, &database.AlertDetail{Alert: *a})
	}
	return out, nil
}

func (m *memStore) UpdateAlertStatus(ctx context.Context, id uuid.UUID, from, to string) (*database.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.ID != id {
			continue
		}
		if a.Status != from {
			return nil, database.ErrConflict
		}
		a.Status = to
		cp := *a
		return &cp, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) AcknowledgeActive(ctx context.Context, priority string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.alerts {
		if a.Status != database.AlertStatusActive {
			continue
		}
		if priority != "" && a.Priority != priority {
			continue
		}
		a.Status = database.AlertStatusAcknowledged
		n++
	}
	return n, nil
}

func (m *memStore) GetAlertStats(ctx context.Context) (*database.AlertStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := database.NewAlertStats()
	for _, a := range m.alerts {
		stats.Add(a.Status, a.Priority, 1)
	}
	return stats, nil
}

func (m *memStore) addAlert(status, priority string) *database.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &database.Alert{
		ID:        uuid.New(),
		SampleID:  uuid.New(),
		Priority:  priority,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	m.alerts = append(m.alerts, a)
	return a
}

// recordingEvents captures submitted batches
type recordingEvents struct {
	mu      sync.Mutex
	batches [][]*database.Sample
}

func (r *recordingEvents) Submit(samples []*database.Sample, projects map[uuid.UUID]*database.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, samples)
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}
