package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

type itemRepository struct {
	db *itemTable
}

var _ assignment.Repository = (*itemRepository)(nil) // interface compliance check

func NewItemRepository(db *DB) assignment.Repository {
	return &itemRepository{db: db.item}
}

func (repo *itemRepository) CreateItems(ctx context.Context, items []assignment.WorkItem, exec ...core.DBExecutor) ([]assignment.WorkItem, error) {
	if len(items) == 0 {
		return []assignment.WorkItem{}, nil
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	created := make([]assignment.WorkItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item := item
		repo.db.table[item.ID] = &item
		created = append(created, item)
	}
	return created, nil
}

func (repo *itemRepository) ArchiveCurrentItems(ctx context.Context, filter assignment.ArchiveFilter, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	students := make(map[string]struct{}, len(filter.StudentIDs))
	for _, id := range filter.StudentIDs {
		students[id] = struct{}{}
	}
	tiers := make(map[assignment.Tier]struct{}, len(filter.Tiers))
	for _, tier := range filter.Tiers {
		tiers[tier] = struct{}{}
	}

	var archived int
	for _, item := range repo.db.table {
		if !item.IsCurrent {
			continue
		}
		if filter.SchoolID != "" && item.SchoolID != filter.SchoolID {
			continue
		}
		if _, ok := students[item.StudentID]; !ok {
			continue
		}
		if _, ok := tiers[item.Tier]; !ok {
			continue
		}
		if filter.Subject != "" && item.Subject != filter.Subject {
			continue
		}
		item.IsCurrent = false
		archived++
	}
	return archived, nil
}

func (repo *itemRepository) FilterItems(ctx context.Context, filter assignment.QueryFilter, exec ...core.DBExecutor) ([]assignment.WorkItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tiers := make(map[assignment.Tier]struct{}, len(filter.Tiers))
	for _, tier := range filter.Tiers {
		tiers[tier] = struct{}{}
	}

	items := make([]assignment.WorkItem, 0, len(repo.db.table))
	for _, item := range repo.db.table {
		if filter.SchoolID != "" && item.SchoolID != filter.SchoolID {
			continue
		}
		if filter.StudentID != "" && item.StudentID != filter.StudentID {
			continue
		}
		if filter.PlanID != "" && item.PlanID != filter.PlanID {
			continue
		}
		if len(tiers) > 0 {
			if _, ok := tiers[item.Tier]; !ok {
				continue
			}
		}
		if filter.OnlyCurrent && !item.IsCurrent {
			continue
		}
		if !filter.CreatedFrom.IsZero() && item.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && !item.CreatedAt.Before(filter.CreatedTo) {
			continue
		}
		items = append(items, *item)
	}

	ascending := true
	if len(filter.Ordering) > 0 {
		ascending = filter.Ordering[0].Ascending
	}
	sort.Slice(items, func(i, j int) bool {
		if ascending {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[j].CreatedAt.Before(items[i].CreatedAt)
	})

	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (repo *itemRepository) GetItemByID(ctx context.Context, id string, exec ...core.DBExecutor) (assignment.WorkItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if item, ok := repo.db.table[id]; ok {
		return *item, nil
	}
	return assignment.WorkItem{}, assignment.ErrNotFoundOrForbidden
}

func (repo *itemRepository) UpdateItem(ctx context.Context, item assignment.WorkItem, exec ...core.DBExecutor) (assignment.WorkItem, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[item.ID]; !ok {
		return assignment.WorkItem{}, assignment.ErrNotFoundOrForbidden
	}
	repo.db.table[item.ID] = &item
	return item, nil
}
