package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/store"
)

// ConditionService keeps the free-text list of a user's medical conditions.
type ConditionService struct {
	store store.Store
}

func NewConditionService(s store.Store) *ConditionService {
	return &ConditionService{store: s}
}

func (s *ConditionService) List(ctx context.Context, userID string) ([]string, error) {
	list, _, err := store.GetJSON[[]string](ctx, s.store, store.ConditionsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// Add appends condition unless the exact entry already exists, matching the
// client, which dedupes its local list by exact string.
func (s *ConditionService) Add(ctx context.Context, userID, condition string) ([]string, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil, invalid("Condition is required")
	}

	list, err := store.UpdateJSON(ctx, s.store, store.ConditionsKey(userID), func(list *[]string) error {
		for _, c := range *list {
			if c == condition {
				return nil
			}
		}
		*list = append(*list, condition)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add condition: %w", err)
	}
	return nonNil(list), nil
}

func (s *ConditionService) Remove(ctx context.Context, userID, condition string) ([]string, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil, invalid("Condition is required")
	}

	list, err := store.UpdateJSON(ctx, s.store, store.ConditionsKey(userID), func(list *[]string) error {
		kept := make([]string, 0, len(*list))
		for _, c := range *list {
			if c != condition {
				kept = append(kept, c)
			}
		}
		*list = kept
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove condition: %w", err)
	}
	return nonNil(list), nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
