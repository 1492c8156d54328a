package workitems

import (
	"context"
	"fmt"

	"github.com/pburrows/lepidoptera/internal/sqlite"
	"github.com/pburrows/lepidoptera/pkg/types"
)

// ApplyTemplate bulk-creates the project's work item types from templates.
// Templates reference child types by name, so creation is two passes inside
// one transaction: every type is inserted first with an empty child list,
// then names resolve against the freshly minted IDs and the child lists are
// written back. A template naming an unknown child fails the whole
// application.
func (s *Service) ApplyTemplate(ctx context.Context, projectID string, templates []types.TypeTemplate) ([]*types.TypeConfig, error) {
	if projectID == "" {
		return nil, types.ErrProjectRequired
	}

	now := nowUTC()
	idByName := make(map[string]string, len(templates))
	configs := make([]*types.TypeConfig, 0, len(templates))
	for _, tpl := range templates {
		if _, dup := idByName[tpl.Name]; dup {
			return nil, fmt.Errorf("template declares type %q twice", tpl.Name)
		}
		cfg := &types.TypeConfig{
			ID:                         newUUID(),
			ProjectID:                  projectID,
			CreatedAt:                  now,
			IsActive:                   true,
			Name:                       tpl.Name,
			DisplayName:                tpl.DisplayName,
			AllowedStatuses:            tpl.AllowedStatuses,
			AllowedPriorities:          tpl.AllowedPriorities,
			AssignmentFieldDefinitions: tpl.AssignmentFieldDefinitions,
			Details:                    tpl.Details,
			Fields:                     tpl.Fields,
		}
		idByName[tpl.Name] = cfg.ID
		configs = append(configs, cfg)
	}

	err := s.store.WithTx(ctx, func(tx sqlite.Querier) error {
		for _, cfg := range configs {
			entity, err := cfg.Entity()
			if err != nil {
				return err
			}
			if _, err := s.store.Types.Create(ctx, tx, entity); err != nil {
				return err
			}
		}

		for i, tpl := range templates {
			if len(tpl.AllowedChildrenTypeNames) == 0 {
				continue
			}
			cfg := configs[i]
			for _, childName := range tpl.AllowedChildrenTypeNames {
				childID, ok := idByName[childName]
				if !ok {
					return fmt.Errorf("type %q allows unknown child type %q", tpl.Name, childName)
				}
				cfg.AllowedChildrenTypeIDs = append(cfg.AllowedChildrenTypeIDs, childID)
			}
			entity, err := cfg.Entity()
			if err != nil {
				return err
			}
			if err := s.store.Types.Update(ctx, tx, entity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("project_id", projectID).Int("types", len(configs)).Msg("applied type template")
	return configs, nil
}
