package workitems

import (
	"context"
	"errors"

	"github.com/pburrows/lepidoptera/internal/sqlite"
	"github.com/pburrows/lepidoptera/pkg/types"
)

// ListWorkItems runs the query and hydrates the resulting page: status and
// priority descriptors resolved from each item's type configuration, and the
// requested custom field values with their definitions attached. The whole
// operation runs on one pooled connection.
func (s *Service) ListWorkItems(ctx context.Context, req *types.ListRequest) (*types.ListResponse, error) {
	conn, err := s.store.Pool().Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	items, total, err := s.store.WorkItems.List(ctx, conn, &req.Query)
	if err != nil {
		return nil, err
	}
	hydrated, err := s.hydrate(ctx, conn, items, req.IncludeFields)
	if err != nil {
		return nil, err
	}

	resp := &types.ListResponse{
		Items: hydrated,
		Total: total,
	}
	if req.Query.Page != nil && req.Query.PageSize != nil {
		pages := (total + *req.Query.PageSize - 1) / *req.Query.PageSize
		resp.Page = req.Query.Page
		resp.PageSize = req.Query.PageSize
		resp.TotalPages = &pages
	}
	return resp, nil
}

// GetWorkItem returns one work item hydrated the same way a list page is.
// includeFields names the custom field values to load; nil skips them.
func (s *Service) GetWorkItem(ctx context.Context, id string, includeFields []string) (*types.ListItem, error) {
	conn, err := s.store.Pool().Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	item, err := s.store.WorkItems.FindByID(ctx, conn, id)
	if err != nil {
		return nil, err
	}
	hydrated, err := s.hydrate(ctx, conn, []types.WorkItem{*item}, includeFields)
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

// hydrate attaches type-derived detail to a page of work items. An item
// whose type cannot be found is still returned, just without detail;
// malformed type configuration JSON fails the whole page.
func (s *Service) hydrate(ctx context.Context, q sqlite.Querier, items []types.WorkItem, includeFields []string) ([]types.ListItem, error) {
	configs := make(map[string]*types.TypeConfig)
	for _, item := range items {
		if _, seen := configs[item.TypeID]; seen {
			continue
		}
		cfg, err := s.store.Types.FindConfig(ctx, q, item.TypeID)
		switch {
		case errors.Is(err, types.ErrNotFound):
			s.log.Warn().Str("type_id", item.TypeID).Msg("work item references unknown type")
			configs[item.TypeID] = nil
		case err != nil:
			return nil, err
		default:
			configs[item.TypeID] = cfg
		}
	}

	var values map[string][]types.WorkItemFieldValue
	if len(includeFields) > 0 {
		ids := make([]string, len(items))
		for i, item := range items {
			ids[i] = item.ID
		}
		var err error
		values, err = s.store.FieldValues.ListForItems(ctx, q, ids, includeFields)
		if err != nil {
			return nil, err
		}
	}

	hydrated := make([]types.ListItem, len(items))
	for i, item := range items {
		li := types.ListItem{
			WorkItem:    item,
			FieldValues: []types.FieldValueDetail{},
		}
		cfg := configs[item.TypeID]
		if cfg != nil {
			li.StatusDetail = cfg.StatusDetail(item.Status)
			li.PriorityDetail = cfg.PriorityDetail(item.Priority)
		}
		for _, v := range values[item.ID] {
			detail := types.FieldValueDetail{WorkItemFieldValue: v}
			if cfg != nil {
				if v.IsAssignmentField {
					detail.AssignmentField = cfg.AssignmentField(v.FieldID)
				} else {
					detail.Field = cfg.Field(v.FieldID)
				}
			}
			li.FieldValues = append(li.FieldValues, detail)
		}
		hydrated[i] = li
	}
	return hydrated, nil
}
