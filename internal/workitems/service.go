// Package workitems is the manager layer over the storage package: work item
// creation and listing with hydration, the sequential number allocator,
// custom field validation, template application, and relationships.
package workitems

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pburrows/lepidoptera/internal/sqlite"
	"github.com/pburrows/lepidoptera/pkg/types"
)

// Service exposes the work item operations consumed by the CLI and any
// other outer surface. It owns the machine identity used by the number
// allocator and threads transactions through multi-step writes.
type Service struct {
	store *sqlite.Store
	alloc *Allocator
	log   zerolog.Logger
	user  string

	mu        sync.Mutex
	machineID string
}

// NewService builds the manager over an open store. user names the local
// operator recorded in audit columns.
func NewService(store *sqlite.Store, user string, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		alloc: NewAllocator(store, log),
		log:   log,
		user:  user,
	}
}

// Store exposes the underlying storage for callers composing lower-level
// operations, mainly tests.
func (s *Service) Store() *sqlite.Store {
	return s.store
}

// Close shuts the underlying store down.
func (s *Service) Close() error {
	return s.store.Close()
}

// MachineID returns the stable identifier of this machine, registering it on
// first use. The identifier feeds the number range allocator so each machine
// claims its own ranges.
func (s *Service) MachineID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machineID != "" {
		return s.machineID, nil
	}

	osID, name, err := localIdentity()
	if err != nil {
		return "", err
	}
	m, err := s.store.Machines.Ensure(ctx, nil, osID, s.user, name)
	if err != nil {
		return "", fmt.Errorf("registering machine: %w", err)
	}
	s.machineID = m.ID
	return s.machineID, nil
}

// CreateProject creates a project and, when prefix is non-empty, records its
// sequence prefix setting.
func (s *Service) CreateProject(ctx context.Context, name, description, prefix string) (*types.Project, error) {
	p := &types.Project{
		ID:          newUUID(),
		Name:        name,
		Description: description,
		CreatedAt:   nowUTC(),
		CreatedBy:   s.user,
		IsActive:    true,
	}
	err := s.store.WithTx(ctx, func(tx sqlite.Querier) error {
		if _, err := s.store.Projects.Create(ctx, tx, p); err != nil {
			return err
		}
		if prefix != "" {
			if _, err := s.store.Settings.SetSetting(ctx, tx, p.ID, types.SettingSequencePrefix, prefix, s.user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns every active project.
func (s *Service) ListProjects(ctx context.Context) ([]types.Project, error) {
	return s.store.Projects.ListActive(ctx, nil)
}

// SetSequencePrefix records the project's display prefix for sequential
// numbers. Prefixes are unique across projects; a clash surfaces as a
// constraint violation.
func (s *Service) SetSequencePrefix(ctx context.Context, projectID, prefix string) (*types.ProjectSetting, error) {
	return s.store.Settings.SetSetting(ctx, nil, projectID, types.SettingSequencePrefix, prefix, s.user)
}

// SequencePrefix returns the project's display prefix, or
// types.ErrSettingNotFound when it has not been configured.
func (s *Service) SequencePrefix(ctx context.Context, projectID string) (string, error) {
	setting, err := s.store.Settings.GetSetting(ctx, nil, projectID, types.SettingSequencePrefix)
	if err != nil {
		return "", err
	}
	return setting.SettingValue, nil
}

// ListTypes returns the project's active work item types, fully parsed.
func (s *Service) ListTypes(ctx context.Context, projectID string) ([]*types.TypeConfig, error) {
	return s.store.Types.FindActiveByProject(ctx, nil, projectID)
}

// GetType returns one parsed type configuration.
func (s *Service) GetType(ctx context.Context, typeID string) (*types.TypeConfig, error) {
	return s.store.Types.FindConfig(ctx, nil, typeID)
}

// CreateRelationship links two work items. The relationship kind must be one
// of the recognized constants in pkg/types; the pair plus kind is unique.
func (s *Service) CreateRelationship(ctx context.Context, projectID, sourceID, targetID, relType string) (*types.Relationship, error) {
	if !types.ValidRelationshipType(relType) {
		return nil, fmt.Errorf("relationship type %q: %w", relType, types.ErrInvalidRelationship)
	}
	rel := &types.Relationship{
		ID:               newUUID(),
		ProjectID:        projectID,
		SourceWorkItemID: sourceID,
		TargetWorkItemID: targetID,
		RelationshipType: relType,
		CreatedAt:        nowUTC(),
		CreatedBy:        s.user,
		IsActive:         true,
	}
	return s.store.Relationships.Create(ctx, nil, rel)
}

// ListRelationships returns the active relationships touching the work item,
// optionally restricted to one kind.
func (s *Service) ListRelationships(ctx context.Context, workItemID, relType string) ([]types.Relationship, error) {
	return s.store.Relationships.ListByWorkItem(ctx, nil, workItemID, relType)
}

// DeleteRelationship soft-deletes a relationship.
func (s *Service) DeleteRelationship(ctx context.Context, id string) error {
	return s.store.Relationships.Deactivate(ctx, nil, id, s.user)
}

// newUUID returns a sortable v7 UUID string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
