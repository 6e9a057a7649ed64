// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/northbound/seekkb/internal/bridge"
	"github.com/northbound/seekkb/internal/seekkberr"
)

// CreateProject inserts a new Project row. Fails with ProjectNameExists if
// name collides (projects.name is UNIQUE, spec.md §3).
func (s *Store) CreateProject(name, description string) (Project, error) {
	existing, err := s.GetProjectByName(name)
	if err != nil {
		return Project{}, err
	}
	if existing != nil {
		return Project{}, seekkberr.New(seekkberr.ProjectNameExists, fmt.Sprintf("a project named %q already exists", name)).WithField("name")
	}

	now := time.Now().UTC()
	p := Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      ProjectCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sql := fmt.Sprintf(
		`INSERT INTO projects (id, name, description, status, document_count, created_at, updated_at) VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		bridge.Literal(bridge.Text(p.ID)),
		bridge.Literal(bridge.Text(p.Name)),
		bridge.Literal(bridge.Text(p.Description)),
		bridge.Literal(bridge.Text(string(p.Status))),
		bridge.Literal(bridge.Int(0)),
		bridge.Literal(bridge.Text(formatTime(p.CreatedAt))),
		bridge.Literal(bridge.Text(formatTime(p.UpdatedAt))),
	)
	if _, err := s.exec(sql); err != nil {
		return Project{}, err
	}
	return p, nil
}

// GetProjectByName returns the Project named name, or nil if none exists.
func (s *Store) GetProjectByName(name string) (*Project, error) {
	sql := fmt.Sprintf(`SELECT id, name, description, status, document_count, created_at, updated_at FROM projects WHERE name = %s`, bridge.Literal(bridge.Text(name)))
	row, err := s.queryOne(sql)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	p := decodeProject(row)
	return &p, nil
}

// GetProject returns the Project with the given id, or ErrNotFound.
func (s *Store) GetProject(id string) (Project, error) {
	sql := fmt.Sprintf(`SELECT id, name, description, status, document_count, created_at, updated_at FROM projects WHERE id = %s`, bridge.Literal(bridge.Text(id)))
	row, err := s.queryOne(sql)
	if err != nil {
		return Project{}, err
	}
	if row == nil {
		return Project{}, seekkberr.New(seekkberr.NotFound, fmt.Sprintf("project %s not found", id))
	}
	return decodeProject(row), nil
}

// ListProjects returns every Project, ordered updated_at desc per the
// in-memory ordering policy (spec.md §4.3).
func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.query(`SELECT id, name, description, status, document_count, created_at, updated_at FROM projects`)
	if err != nil {
		return nil, err
	}
	projects := make([]Project, len(rows))
	for i, row := range rows {
		projects[i] = decodeProject(row)
	}
	sortProjects(projects)
	return projects, nil
}

// RenameProject updates a Project's name, rejecting a collision with
// another project.
func (s *Store) RenameProject(id, newName string) error {
	existing, err := s.GetProjectByName(newName)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != id {
		return seekkberr.New(seekkberr.ProjectNameExists, fmt.Sprintf("a project named %q already exists", newName)).WithField("name")
	}
	sql := fmt.Sprintf(`UPDATE projects SET name = %s, updated_at = %s WHERE id = %s`,
		bridge.Literal(bridge.Text(newName)),
		bridge.Literal(bridge.Text(formatTime(time.Now().UTC()))),
		bridge.Literal(bridge.Text(id)),
	)
	_, err = s.exec(sql)
	return err
}

// SetProjectStatus updates status and bumps updated_at.
func (s *Store) SetProjectStatus(id string, status ProjectStatus) error {
	sql := fmt.Sprintf(`UPDATE projects SET status = %s, updated_at = %s WHERE id = %s`,
		bridge.Literal(bridge.Text(string(status))),
		bridge.Literal(bridge.Text(formatTime(time.Now().UTC()))),
		bridge.Literal(bridge.Text(id)),
	)
	_, err := s.exec(sql)
	return err
}

// IncrementDocumentCount adjusts projects.document_count by delta (can be
// negative, used on delete) and bumps updated_at.
func (s *Store) IncrementDocumentCount(id string, delta int) error {
	sql := fmt.Sprintf(`UPDATE projects SET document_count = document_count + %s, updated_at = %s WHERE id = %s`,
		bridge.Literal(bridge.Int(int64(delta))),
		bridge.Literal(bridge.Text(formatTime(time.Now().UTC()))),
		bridge.Literal(bridge.Text(id)),
	)
	_, err := s.exec(sql)
	return err
}

// DeleteProject removes a Project; CASCADE DELETE (declared in the schema)
// removes its Documents, VectorChunks, Conversations, and Messages.
func (s *Store) DeleteProject(id string) error {
	sql := fmt.Sprintf(`DELETE FROM projects WHERE id = %s`, bridge.Literal(bridge.Text(id)))
	_, err := s.exec(sql)
	return err
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
