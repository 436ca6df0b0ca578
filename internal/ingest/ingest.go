package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/hmpi"
	"golang.org/x/sync/errgroup"
)

// DateLayout is the accepted collection date format
const DateLayout = "2006-01-02"

// Columns is the upload template header, in order
var Columns = []string{"SampleID", "ProjectID", "Latitude", "Longitude", "Metal", "Concentration", "Ii", "Mi", "Date"}

// ErrEmptyBatch is returned when an upload carries no sample rows
var ErrEmptyBatch = errors.New("no samples to save")

// Input is one sample as submitted, before HMPI evaluation. Row is the
// 1-based data row for file uploads and the array position for JSON.
// Measurements are pointers so an omitted field is not read as zero.
type Input struct {
	Row           int        `json:"-"`
	SampleCode    string     `json:"sample_id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	Metal         hmpi.Metal `json:"metal"`
	Concentration *float64   `json:"concentration"`
	Ideal         *float64   `json:"ii,omitempty"`
	Weight        *float64   `json:"mi,omitempty"`
	Date          string     `json:"date_collected"`

	parseErrs []FieldError
}

// FieldError describes one invalid field of one row
type FieldError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// ValidationError rejects a whole batch
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d invalid fields, first: %s", len(e.Errors), e.Errors[0].Error())
}

// Validate checks every input and returns all field errors found. known
// reports whether a project exists.
func Validate(inputs []*Input, known func(uuid.UUID) bool) []FieldError {
	var errs []FieldError
	for _, in := range inputs {
		errs = append(errs, in.validate(known)...)
	}
	return errs
}

func (in *Input) validate(known func(uuid.UUID) bool) []FieldError {
	errs := append([]FieldError(nil), in.parseErrs...)
	failed := make(map[string]bool, len(errs))
	for _, e := range errs {
		failed[e.Field] = true
	}
	add := func(field, msg string) {
		if !failed[field] {
			errs = append(errs, FieldError{Row: in.Row, Field: field, Message: msg})
		}
	}

	if strings.TrimSpace(in.SampleCode) == "" {
		add("SampleID", "sample id is required")
	}
	if in.ProjectID == uuid.Nil {
		add("ProjectID", "project id is required")
	} else if known != nil && !known(in.ProjectID) {
		add("ProjectID", "Invalid project ID")
	}
	switch {
	case in.Latitude == nil:
		add("Latitude", "latitude is required")
	case !finite(*in.Latitude) || *in.Latitude < -90 || *in.Latitude > 90:
		add("Latitude", "Invalid latitude")
	}
	switch {
	case in.Longitude == nil:
		add("Longitude", "longitude is required")
	case !finite(*in.Longitude) || *in.Longitude < -180 || *in.Longitude > 180:
		add("Longitude", "Invalid longitude")
	}
	if strings.TrimSpace(string(in.Metal)) == "" {
		add("Metal", "metal is required")
	}
	switch {
	case in.Concentration == nil:
		add("Concentration", "concentration is required")
	case !finite(*in.Concentration) || *in.Concentration < 0:
		add("Concentration", "Invalid concentration")
	}
	if in.Ideal != nil && (!finite(*in.Ideal) || *in.Ideal <= 0) {
		add("Ii", "Invalid Ii value")
	}
	if in.Weight != nil && (!finite(*in.Weight) || *in.Weight <= 0) {
		add("Mi", "Invalid Mi value")
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		add("Date", "date must be YYYY-MM-DD")
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// EvaluateBatch computes HMPI for every input in parallel and returns the
// samples in input order. Inputs must already be valid.
func EvaluateBatch(ctx context.Context, inputs []*Input) ([]*database.Sample, error) {
	samples := make([]*database.Sample, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := in.Evaluate()
			if err != nil {
				return err
			}
			samples[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

// Evaluate computes the HMPI value and risk level for one input
func (in *Input) Evaluate() (*database.Sample, error) {
	date, err := time.Parse(DateLayout, in.Date)
	if err != nil {
		return nil, fmt.Errorf("row %d: invalid date %q: %w", in.Row, in.Date, err)
	}
	if in.Latitude == nil || in.Longitude == nil || in.Concentration == nil {
		return nil, fmt.Errorf("row %d: missing measurement", in.Row)
	}

	res := hmpi.Evaluate(in.Metal, *in.Concentration, hmpi.Overrides{Ideal: in.Ideal, Weight: in.Weight})
	return &database.Sample{
		ID:            uuid.New(),
		ProjectID:     in.ProjectID,
		SampleCode:    strings.TrimSpace(in.SampleCode),
		Metal:         in.Metal,
		Concentration: *in.Concentration,
		Latitude:      *in.Latitude,
		Longitude:     *in.Longitude,
		DateCollected: date,
		HMPIValue:     res.Index,
		RiskLevel:     res.Tier,
	}, nil
}

// Prepare validates a batch and evaluates it only if every row is valid
func Prepare(ctx context.Context, inputs []*Input, known func(uuid.UUID) bool) ([]*database.Sample, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	if errs := Validate(inputs, known); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return EvaluateBatch(ctx, inputs)
}

// fromRecord converts one template row. Cells that do not parse are kept as
// field errors for Validate to report.
func fromRecord(row int, record []string) *Input {
	cell := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	in := &Input{
		Row:        row,
		SampleCode: cell(0),
		Metal:      hmpi.Metal(cell(4)),
		Date:       cell(8),
	}
	fail := func(field, msg string) {
		in.parseErrs = append(in.parseErrs, FieldError{Row: row, Field: field, Message: msg})
	}

	if v := cell(1); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			fail("ProjectID", "Invalid project ID")
		}
		in.ProjectID = id
	}

	number := func(i int, field, msg string) *float64 {
		v, err := strconv.ParseFloat(cell(i), 64)
		if err != nil {
			fail(field, msg)
			return nil
		}
		return &v
	}
	in.Latitude = number(2, "Latitude", "Invalid latitude")
	in.Longitude = number(3, "Longitude", "Invalid longitude")
	in.Concentration = number(5, "Concentration", "Invalid concentration")
	if cell(6) != "" {
		in.Ideal = number(6, "Ii", "Invalid Ii value")
	}
	if cell(7) != "" {
		in.Weight = number(7, "Mi", "Invalid Mi value")
	}

	return in
}
