package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pburrows/lepidoptera/pkg/types"
)

var projectColumns = []string{
	"id",
	"created_at",
	"updated_at",
	"name",
	"description",
	"created_by",
	"updated_by",
	"is_active",
}

func scanProject(row RowScanner) (*types.Project, error) {
	var (
		p           types.Project
		createdAt   string
		updatedAt   sql.NullString
		description sql.NullString
		createdBy   sql.NullString
		updatedBy   sql.NullString
		isActive    int
	)
	err := row.Scan(&p.ID, &createdAt, &updatedAt, &p.Name, &description,
		&createdBy, &updatedBy, &isActive)
	if err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	p.Description = stringOrEmpty(description)
	p.CreatedBy = stringOrEmpty(createdBy)
	p.UpdatedBy = stringOrEmpty(updatedBy)
	p.IsActive = isActive != 0
	return &p, nil
}

func projectInsertValues(p *types.Project) []Value {
	return []Value{
		Text(p.ID),
		Time(p.CreatedAt),
		Time(p.UpdatedAt),
		Text(p.Name),
		NullableText(p.Description),
		NullableText(p.CreatedBy),
		NullableText(p.UpdatedBy),
		Bool(p.IsActive),
	}
}

var projectCodec = Codec[types.Project]{
	Table:        "projects",
	Columns:      projectColumns,
	Scan:         scanProject,
	ID:           func(p *types.Project) string { return p.ID },
	InsertValues: projectInsertValues,
	UpdateValues: func(p *types.Project) []Value { return projectInsertValues(p)[1:] },
}

// ProjectsRepo stores projects.
type ProjectsRepo struct {
	*Repository[types.Project]
}

// NewProjectsRepo builds the projects repository over pool.
func NewProjectsRepo(pool *Pool) *ProjectsRepo {
	return &ProjectsRepo{Repository: NewRepository(pool, projectCodec)}
}

// ListActive returns every active project ordered by name.
func (r *ProjectsRepo) ListActive(ctx context.Context, q Querier) ([]types.Project, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf("SELECT %s FROM projects WHERE is_active = 1 ORDER BY name",
		strings.Join(projectColumns, ", "))
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

var projectSettingColumns = []string{
	"id",
	"project_id",
	"setting_key",
	"setting_value",
	"created_at",
	"updated_at",
	"created_by",
	"updated_by",
}

func scanProjectSetting(row RowScanner) (*types.ProjectSetting, error) {
	var (
		s         types.ProjectSetting
		createdAt string
		updatedAt sql.NullString
		updatedBy sql.NullString
	)
	err := row.Scan(&s.ID, &s.ProjectID, &s.SettingKey, &s.SettingValue,
		&createdAt, &updatedAt, &s.CreatedBy, &updatedBy)
	if err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	s.UpdatedBy = stringOrEmpty(updatedBy)
	return &s, nil
}

func projectSettingInsertValues(s *types.ProjectSetting) []Value {
	return []Value{
		Text(s.ID),
		Text(s.ProjectID),
		Text(s.SettingKey),
		Text(s.SettingValue),
		Time(s.CreatedAt),
		Time(s.UpdatedAt),
		Text(s.CreatedBy),
		NullableText(s.UpdatedBy),
	}
}

var projectSettingCodec = Codec[types.ProjectSetting]{
	Table:        "project_settings",
	Columns:      projectSettingColumns,
	Scan:         scanProjectSetting,
	ID:           func(s *types.ProjectSetting) string { return s.ID },
	InsertValues: projectSettingInsertValues,
	UpdateValues: func(s *types.ProjectSetting) []Value { return projectSettingInsertValues(s)[1:] },
}

// SettingsRepo stores per-project key/value settings.
type SettingsRepo struct {
	*Repository[types.ProjectSetting]
}

// NewSettingsRepo builds the project settings repository over pool.
func NewSettingsRepo(pool *Pool) *SettingsRepo {
	return &SettingsRepo{Repository: NewRepository(pool, projectSettingCodec)}
}

// GetSetting returns the setting for (projectID, key), or
// types.ErrSettingNotFound when the project has no such setting.
func (r *SettingsRepo) GetSetting(ctx context.Context, q Querier, projectID, key string) (*types.ProjectSetting, error) {
	q, release, err := r.querier(ctx, q)
	if err != nil {
		return nil, err
	}
	defer release()

	query := fmt.Sprintf(
		"SELECT %s FROM project_settings WHERE project_id = ?1 AND setting_key = ?2",
		strings.Join(projectSettingColumns, ", "))
	s, err := scanProjectSetting(q.QueryRowContext(ctx, query, projectID, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("setting %s for project %s: %w", key, projectID, types.ErrSettingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying setting %s for project %s: %w", key, projectID, err)
	}
	return s, nil
}

// SetSetting upserts the setting for (projectID, key). The unique index on
// sequence_prefix values rejects a prefix already used by another project.
func (r *SettingsRepo) SetSetting(ctx context.Context, q Querier, projectID, key, value, user string) (*types.ProjectSetting, error) {
	existing, err := r.GetSetting(ctx, q, projectID, key)
	switch {
	case err == nil:
		existing.SettingValue = value
		existing.UpdatedAt = nowUTC()
		existing.UpdatedBy = user
		if err := r.Update(ctx, q, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, types.ErrSettingNotFound):
		s := &types.ProjectSetting{
			ID:           uuid.Must(uuid.NewV7()).String(),
			ProjectID:    projectID,
			SettingKey:   key,
			SettingValue: value,
			CreatedAt:    nowUTC(),
			CreatedBy:    user,
		}
		return r.Create(ctx, q, s)
	default:
		return nil, err
	}
}
