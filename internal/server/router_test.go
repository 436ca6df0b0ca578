package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/auth"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/ingest"
	"github.com/smukkama/aquasure-server/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t        *testing.T
	store    *memStore
	events   *recordingEvents
	router   *gin.Engine
	verifier *auth.Verifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	verifier, err := auth.NewVerifier("test-secret", "aquasure")
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}
	env := &testEnv{
		t:        t,
		store:    newMemStore(),
		events:   &recordingEvents{},
		verifier: verifier,
	}
	env.router = NewRouter(RouterConfig{
		Store:    env.store,
		Events:   env.events,
		Verifier: verifier,
		Log:      logger.Nop(),
	})
	return env
}

func (e *testEnv) token(role auth.Role) string {
	e.t.Helper()
	token, err := e.verifier.Issue(auth.Identity{UserID: uuid.New(), Name: "tester", Role: role}, time.Hour)
	if err != nil {
		e.t.Fatalf("Issue failed: %v", err)
	}
	return token
}

func (e *testEnv) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(method, path string, role auth.Role, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("Failed to marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	return e.do(method, path, e.token(role), r, "application/json")
}

func (e *testEnv) seedProject(name string) *database.Project {
	e.t.Helper()
	p := &database.Project{Name: name, District: "Central", City: "Delhi", State: "Delhi"}
	if err := e.store.CreateProject(context.Background(), p); err != nil {
		e.t.Fatalf("CreateProject failed: %v", err)
	}
	return p
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func sampleBody(projectID uuid.UUID, code string, metal string, concentration float64) map[string]interface{} {
	return map[string]interface{}{
		"sample_id":      code,
		"project_id":     projectID.String(),
		"latitude":       28.6139,
		"longitude":      77.2090,
		"metal":          metal,
		"concentration":  concentration,
		"date_collected": "2024-01-15",
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/healthz", "", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestAuthorization(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		expected int
	}{
		{"no token", http.MethodGet, "/api/projects", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/projects", "not-a-jwt", http.StatusUnauthorized},
		{"researcher reads", http.MethodGet, "/api/projects", env.token(auth.RoleResearcher), http.StatusOK},
		{"researcher writes", http.MethodPost, "/api/projects", env.token(auth.RoleResearcher), http.StatusForbidden},
		{"researcher acknowledges", http.MethodPost, "/api/alerts/acknowledge-all", env.token(auth.RoleResearcher), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.token, strings.NewReader(`{}`), "application/json")
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d (%s)", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestProjects(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodPost, "/api/projects", auth.RoleScientist, map[string]string{
		"name":              "Yamuna Survey",
		"location_district": "North",
		"location_city":     "Delhi",
		"location_state":    "Delhi",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}
	var created database.Project
	decode(t, w, &created)
	if created.ID == uuid.Nil || created.CreatedBy == nil {
		t.Errorf("Expected id and created_by to be set, got %+v", created)
	}

	w = env.doJSON(http.MethodPost, "/api/projects", auth.RolePolicyMaker, map[string]string{"name": "No location"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing location, got %d", w.Code)
	}

	w = env.doJSON(http.MethodPut, "/api/projects/"+created.ID.String(), auth.RoleScientist, map[string]string{
		"name":              "Yamuna Survey 2",
		"location_district": "North",
		"location_city":     "Delhi",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}

	w = env.doJSON(http.MethodGet, "/api/projects/"+created.ID.String(), auth.RoleResearcher, nil)
	var fetched database.Project
	decode(t, w, &fetched)
	if fetched.Name != "Yamuna Survey 2" {
		t.Errorf("Expected updated name, got %q", fetched.Name)
	}

	w = env.doJSON(http.MethodGet, "/api/projects/"+uuid.NewString(), auth.RoleResearcher, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	w = env.doJSON(http.MethodGet, "/api/projects/not-a-uuid", auth.RoleResearcher, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCreateSample(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")

	w := env.doJSON(http.MethodPost, "/api/samples", auth.RoleScientist, sampleBody(project.ID, "WS001", "Lead", 0.09))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}

	var sample database.Sample
	decode(t, w, &sample)
	if sample.HMPIValue != 630 {
		t.Errorf("Expected HMPI 630, got %v", sample.HMPIValue)
	}
	if sample.RiskLevel != "Very High Risk" {
		t.Errorf("Expected Very High Risk, got %s", sample.RiskLevel)
	}
	if env.events.count() != 1 {
		t.Errorf("Expected 1 sample event, got %d", env.events.count())
	}

	w = env.doJSON(http.MethodGet, "/api/samples/"+sample.ID.String(), auth.RoleResearcher, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 fetching the sample, got %d", w.Code)
	}
	w = env.doJSON(http.MethodGet, "/api/samples/"+uuid.NewString(), auth.RoleResearcher, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown sample, got %d", w.Code)
	}
}

func TestCreateSample_MissingMeasurements(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")

	for _, field := range []string{"latitude", "longitude", "concentration"} {
		t.Run(field, func(t *testing.T) {
			body := sampleBody(project.ID, "WS001", "Lead", 0.09)
			delete(body, field)

			w := env.doJSON(http.MethodPost, "/api/samples", auth.RoleScientist, body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d (%s)", w.Code, w.Body.String())
			}
			var envelope struct {
				Error struct {
					Details []ingest.FieldError `json:"details"`
				} `json:"error"`
			}
			decode(t, w, &envelope)
			if len(envelope.Error.Details) != 1 || envelope.Error.Details[0].Message != field+" is required" {
				t.Errorf("Expected %q is required error, got %+v", field, envelope.Error.Details)
			}
		})
	}

	samples, _ := env.store.ListSamples(context.Background(), database.SampleFilter{})
	if len(samples) != 0 {
		t.Errorf("Expected no samples stored, got %d", len(samples))
	}
}

func TestBulkCreateSamples_ValidationRejectsBatch(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")

	bad := sampleBody(project.ID, "WS002", "Arsenic", 0.05)
	bad["latitude"] = 95.0
	body := []map[string]interface{}{
		sampleBody(project.ID, "WS001", "Lead", 0.09),
		bad,
		sampleBody(uuid.New(), "WS003", "Lead", 0.01),
	}

	w := env.doJSON(http.MethodPost, "/api/samples/bulk", auth.RoleScientist, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d (%s)", w.Code, w.Body.String())
	}

	var envelope struct {
		Error struct {
			Code    string              `json:"code"`
			Details []ingest.FieldError `json:"details"`
		} `json:"error"`
	}
	decode(t, w, &envelope)
	if envelope.Error.Code != "validation_failed" {
		t.Errorf("Expected code validation_failed, got %q", envelope.Error.Code)
	}
	if len(envelope.Error.Details) != 2 {
		t.Fatalf("Expected 2 field errors, got %+v", envelope.Error.Details)
	}
	if d := envelope.Error.Details[0]; d.Row != 2 || d.Field != "Latitude" {
		t.Errorf("Expected row 2 Latitude error, got %+v", d)
	}
	if d := envelope.Error.Details[1]; d.Row != 3 || d.Field != "ProjectID" {
		t.Errorf("Expected row 3 ProjectID error, got %+v", d)
	}

	samples, _ := env.store.ListSamples(context.Background(), database.SampleFilter{})
	if len(samples) != 0 {
		t.Errorf("Expected no samples stored, got %d", len(samples))
	}
	if env.events.count() != 0 {
		t.Errorf("Expected no sample events, got %d", env.events.count())
	}
}

func TestBulkCreateSamples_Empty(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodPost, "/api/samples/bulk", auth.RoleScientist, []interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestUploadSamples(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "samples.csv")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	csvData := strings.Join(ingest.Columns, ",") + "\n" +
		"WS001," + project.ID.String() + ",28.6139,77.2090,Lead,0.09,,,2024-01-15\n" +
		"WS002," + project.ID.String() + ",28.7,77.1,Cadmium,0.001,,,2024-01-16\n"
	part.Write([]byte(csvData))
	mw.Close()

	w := env.do(http.MethodPost, "/api/samples/upload", env.token(auth.RoleScientist), &buf, mw.FormDataContentType())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	decode(t, w, &resp)
	if resp.Count != 2 {
		t.Errorf("Expected count 2, got %d", resp.Count)
	}
	if env.events.count() != 2 {
		t.Errorf("Expected 2 sample events, got %d", env.events.count())
	}
}

func TestUploadSamples_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "samples.txt")
	part.Write([]byte("hello"))
	mw.Close()

	w := env.do(http.MethodPost, "/api/samples/upload", env.token(auth.RoleScientist), &buf, mw.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListSamples_Filters(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")
	body := []map[string]interface{}{
		sampleBody(project.ID, "WS001", "Lead", 0.09),
		sampleBody(project.ID, "WS002", "Lead", 0.0001),
	}
	if w := env.doJSON(http.MethodPost, "/api/samples/bulk", auth.RoleScientist, body); w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}

	w := env.doJSON(http.MethodGet, "/api/samples?risk_level=Very+High+Risk&project_id="+project.ID.String(), auth.RoleResearcher, nil)
	var resp struct {
		Samples []database.Sample `json:"samples"`
	}
	decode(t, w, &resp)
	if len(resp.Samples) != 1 || resp.Samples[0].SampleCode != "WS001" {
		t.Errorf("Expected only WS001, got %+v", resp.Samples)
	}

	w = env.doJSON(http.MethodGet, "/api/samples?risk_level=Extreme", auth.RoleResearcher, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown risk level, got %d", w.Code)
	}
}

func TestSampleTemplate(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(http.MethodGet, "/api/samples/template", auth.RoleResearcher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "AquaSure_Sample_Template.csv") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), strings.Join(ingest.Columns, ",")) {
		t.Errorf("Expected template header, got %q", w.Body.String())
	}

	w = env.doJSON(http.MethodGet, "/api/samples/template?format=pdf", auth.RoleResearcher, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestSamplesGeoJSON(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")
	far := sampleBody(project.ID, "WS002", "Lead", 0.01)
	far["latitude"] = 19.07
	far["longitude"] = 72.87
	body := []map[string]interface{}{sampleBody(project.ID, "WS001", "Lead", 0.09), far}
	if w := env.doJSON(http.MethodPost, "/api/samples/bulk", auth.RoleScientist, body); w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}

	w := env.doJSON(http.MethodGet, "/api/samples/geojson?bbox=77,28,78,29", auth.RoleResearcher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/geo+json") {
		t.Errorf("Expected geo+json content type, got %q", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	decode(t, w, &fc)
	if fc.Type != "FeatureCollection" {
		t.Errorf("Expected FeatureCollection, got %q", fc.Type)
	}
	if len(fc.Features) != 1 || fc.Features[0].Properties["sample_id"] != "WS001" {
		t.Errorf("Expected only WS001 inside bbox, got %+v", fc.Features)
	}

	w = env.doJSON(http.MethodGet, "/api/samples/geojson?bbox=78,28,77,29", auth.RoleResearcher, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for inverted bbox, got %d", w.Code)
	}
}

func TestAlertTransitions(t *testing.T) {
	env := newTestEnv(t)
	alert := env.store.addAlert(database.AlertStatusActive, database.AlertPriorityHigh)
	base := "/api/alerts/" + alert.ID.String()

	steps := []struct {
		name     string
		action   string
		expected int
		status   string
	}{
		{"resolve active", "/resolve", http.StatusConflict, database.AlertStatusActive},
		{"acknowledge", "/acknowledge", http.StatusOK, database.AlertStatusAcknowledged},
		{"acknowledge again", "/acknowledge", http.StatusOK, database.AlertStatusAcknowledged},
		{"resolve", "/resolve", http.StatusOK, database.AlertStatusResolved},
		{"acknowledge resolved", "/acknowledge", http.StatusConflict, database.AlertStatusResolved},
	}

	for _, step := range steps {
		w := env.doJSON(http.MethodPost, base+step.action, auth.RoleScientist, nil)
		if w.Code != step.expected {
			t.Errorf("%s: expected status %d, got %d (%s)", step.name, step.expected, w.Code, w.Body.String())
		}
		current, _ := env.store.GetAlert(context.Background(), alert.ID)
		if current.Status != step.status {
			t.Errorf("%s: expected status %s, got %s", step.name, step.status, current.Status)
		}
	}

	w := env.doJSON(http.MethodPost, "/api/alerts/"+uuid.NewString()+"/acknowledge", auth.RoleScientist, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown alert, got %d", w.Code)
	}
}

func TestAcknowledgeAllAndStats(t *testing.T) {
	env := newTestEnv(t)
	env.store.addAlert(database.AlertStatusActive, database.AlertPriorityHigh)
	env.store.addAlert(database.AlertStatusActive, database.AlertPriorityMedium)
	env.store.addAlert(database.AlertStatusActive, database.AlertPriorityHigh)
	env.store.addAlert(database.AlertStatusResolved, database.AlertPriorityHigh)

	w := env.doJSON(http.MethodPost, "/api/alerts/acknowledge-all?priority=high", auth.RolePolicyMaker, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}
	var ack struct {
		Acknowledged int `json:"acknowledged"`
	}
	decode(t, w, &ack)
	if ack.Acknowledged != 2 {
		t.Errorf("Expected 2 acknowledged, got %d", ack.Acknowledged)
	}

	w = env.doJSON(http.MethodGet, "/api/alerts/stats", auth.RoleResearcher, nil)
	var stats database.AlertStats
	decode(t, w, &stats)
	if stats.Total != 4 {
		t.Errorf("Expected total 4, got %d", stats.Total)
	}
	if stats.ByStatus[database.AlertStatusActive] != 1 || stats.ByStatus[database.AlertStatusAcknowledged] != 2 {
		t.Errorf("Unexpected status counts %v", stats.ByStatus)
	}
	if stats.ByPriority[database.AlertPriorityLow] != 0 || stats.ByPriority[database.AlertPriorityHigh] != 3 {
		t.Errorf("Unexpected priority counts %v", stats.ByPriority)
	}

	w = env.doJSON(http.MethodGet, "/api/alerts?status=active", auth.RoleResearcher, nil)
	var list struct {
		Alerts []database.AlertDetail `json:"alerts"`
	}
	decode(t, w, &list)
	if len(list.Alerts) != 1 || list.Alerts[0].Priority != database.AlertPriorityMedium {
		t.Errorf("Expected the medium alert only, got %+v", list.Alerts)
	}

	w = env.doJSON(http.MethodGet, "/api/alerts?status=open", auth.RoleResearcher, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown status, got %d", w.Code)
	}
}

func TestExportReport_CSV(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")
	if w := env.doJSON(http.MethodPost, "/api/samples", auth.RoleScientist, sampleBody(project.ID, "WS001", "Lead", 0.09)); w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}

	w := env.doJSON(http.MethodGet, "/api/reports/export?format=csv&project_id="+project.ID.String(), auth.RoleResearcher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "AquaSure_Report_"+project.ID.String()) {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header and 1 row, got %d records", len(records))
	}
	if records[0][0] != "Sample ID" || records[1][0] != "WS001" {
		t.Errorf("Unexpected records %v", records)
	}
	if records[1][5] != "630.00" {
		t.Errorf("Expected HMPI 630.00, got %s", records[1][5])
	}

	w = env.doJSON(http.MethodGet, "/api/reports/export?format=docx", auth.RoleResearcher, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown format, got %d", w.Code)
	}
}

func TestReportSummary(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")
	body := []map[string]interface{}{
		sampleBody(project.ID, "WS001", "Lead", 0.09),
		sampleBody(project.ID, "WS002", "Arsenic", 0.05),
	}
	if w := env.doJSON(http.MethodPost, "/api/samples/bulk", auth.RoleScientist, body); w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", w.Code, w.Body.String())
	}

	w := env.doJSON(http.MethodGet, "/api/reports/summary?project_id=all", auth.RoleResearcher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		ProjectCount int `json:"project_count"`
		Summary      struct {
			Count         int     `json:"count"`
			AverageIndex  float64 `json:"average_index"`
			HighRiskCount int     `json:"high_risk_count"`
		} `json:"summary"`
	}
	decode(t, w, &resp)
	if resp.ProjectCount != 1 || resp.Summary.Count != 2 || resp.Summary.HighRiskCount != 2 {
		t.Errorf("Unexpected summary %+v", resp)
	}
	if resp.Summary.AverageIndex != 440 {
		t.Errorf("Expected average 440, got %v", resp.Summary.AverageIndex)
	}

	w = env.doJSON(http.MethodGet, "/api/reports/summary?project_id="+uuid.NewString(), auth.RoleResearcher, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown project, got %d", w.Code)
	}
}

func TestProjectHistory(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject("Delhi Wells")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	env.store.summaries = []*database.ProjectDailySummary{
		{ProjectID: project.ID, Date: today.AddDate(0, 0, -1), SampleCount: 3},
		{ProjectID: project.ID, Date: today.AddDate(0, 0, -60), SampleCount: 5},
	}

	w := env.doJSON(http.MethodGet, "/api/projects/"+project.ID.String()+"/history", auth.RoleResearcher, nil)
	var resp struct {
		History []database.ProjectDailySummary `json:"history"`
	}
	decode(t, w, &resp)
	if len(resp.History) != 1 {
		t.Errorf("Expected 1 summary in the last 30 days, got %d", len(resp.History))
	}

	w = env.doJSON(http.MethodGet, "/api/projects/"+project.ID.String()+"/history?days=0", auth.RoleResearcher, nil)
	decode(t, w, &resp)
	if len(resp.History) != 2 {
		t.Errorf("Expected 2 summaries with days=0, got %d", len(resp.History))
	}
}
