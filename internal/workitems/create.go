package workitems

import (
	"context"
	"fmt"

	"github.com/pburrows/lepidoptera/internal/sqlite"
	"github.com/pburrows/lepidoptera/pkg/types"
)

// CreateWorkItem creates a work item together with its field values in one
// transaction: the sequential number is minted, the row inserted, and every
// field value written atomically, so a failure partway leaves nothing
// behind. Returns the created item hydrated the same way a list page is.
func (s *Service) CreateWorkItem(ctx context.Context, req *types.CreateWorkItemRequest) (*types.ListItem, error) {
	if req.ProjectID == "" {
		return nil, types.ErrProjectRequired
	}

	cfg, err := s.store.Types.FindConfig(ctx, nil, req.TypeID)
	if err != nil {
		return nil, err
	}
	if len(cfg.AllowedStatuses) > 0 && cfg.StatusDetail(req.Status) == nil {
		return nil, fmt.Errorf("status %q is not allowed for type %q", req.Status, cfg.Name)
	}
	if err := validateFieldValues(cfg, req.FieldValues); err != nil {
		return nil, err
	}

	prefix, err := s.SequencePrefix(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("project %s has no sequence prefix: %w", req.ProjectID, err)
	}
	machineID, err := s.MachineID(ctx)
	if err != nil {
		return nil, err
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = s.user
	}
	item := &types.WorkItem{
		ID:          newUUID(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedAt:   nowUTC(),
		CreatedBy:   createdBy,
		AssignedTo:  req.AssignedTo,
		ProjectID:   req.ProjectID,
		TypeID:      req.TypeID,
	}

	create := func(tx sqlite.Querier) error {
		n, err := s.alloc.nextNumberTx(ctx, tx, req.ProjectID, machineID)
		if err != nil {
			return err
		}
		item.SequentialNumber = types.FormatSequenceNumber(prefix, n)

		if _, err := s.store.WorkItems.Create(ctx, tx, item); err != nil {
			return err
		}
		for _, in := range req.FieldValues {
			fv := &types.WorkItemFieldValue{
				ID:                newUUID(),
				ProjectID:         req.ProjectID,
				WorkItemID:        item.ID,
				FieldID:           in.FieldID,
				IsAssignmentField: in.IsAssignmentField,
				Value:             in.Value,
				CreatedAt:         item.CreatedAt,
				CreatedBy:         createdBy,
				IsActive:          true,
			}
			if _, err := s.store.FieldValues.Create(ctx, tx, fv); err != nil {
				return err
			}
		}
		return nil
	}

	err = s.store.WithTx(ctx, create)
	if isUniqueViolation(err) {
		// A range claimed on another machine synced in mid-flight.
		s.log.Debug().Str("project_id", req.ProjectID).Msg("create collided with synced range, retrying")
		err = s.store.WithTx(ctx, create)
	}
	if err != nil {
		return nil, err
	}

	fieldIDs := make([]string, 0, len(req.FieldValues))
	for _, in := range req.FieldValues {
		fieldIDs = append(fieldIDs, in.FieldID)
	}
	return s.GetWorkItem(ctx, item.ID, fieldIDs)
}

// UpdateWorkItem writes the work item's mutable fields back, refreshing the
// update timestamp. Identifying fields (project, type, sequential number)
// are expected to stay as loaded.
func (s *Service) UpdateWorkItem(ctx context.Context, item *types.WorkItem) error {
	item.UpdatedAt = nowUTC()
	return s.store.WorkItems.Update(ctx, nil, item)
}

// DeleteWorkItem removes the work item and soft-deletes its field values.
func (s *Service) DeleteWorkItem(ctx context.Context, id string) error {
	return s.store.WithTx(ctx, func(tx sqlite.Querier) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE work_item_field_values SET is_active = 0 WHERE work_item_id = ?1", id); err != nil {
			return fmt.Errorf("deactivating field values for %s: %w", id, err)
		}
		return s.store.WorkItems.Delete(ctx, tx, id)
	})
}
