package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

const projectColumns = `id, name, location_district, location_city, location_state, description, created_by, created_at`

// CreateProject inserts a project and fills in its creation timestamp
func (db *DB) CreateProject(ctx context.Context, p *Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO projects (id, name, location_district, location_city, location_state, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.District, p.City, p.State, p.Description, p.CreatedBy,
	).Scan(&p.CreatedAt)
}

// UpdateProject changes the descriptive fields of a project
func (db *DB) UpdateProject(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects
		SET name = $2, location_district = $3, location_city = $4,
		    location_state = $5, description = $6
		WHERE id = $1
		RETURNING created_by, created_at
	`

	err := db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.District, p.City, p.State, p.Description,
	).Scan(&p.CreatedBy, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// GetProject retrieves a project by id
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns all projects, newest first
func (db *DB) ListProjects(ctx context.Context) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*Project, error) {
	var p Project
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.District,
		&p.City,
		&p.State,
		&p.Description,
		&p.CreatedBy,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
