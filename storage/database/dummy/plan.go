package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/plan"
)

type planRepository struct {
	db *planTable
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *DB) plan.Repository {
	return &planRepository{db: db.plan}
}

func (repo *planRepository) CreatePlan(ctx context.Context, p plan.Plan, exec ...core.DBExecutor) (plan.Plan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *planRepository) GetPlanByID(ctx context.Context, id string, exec ...core.DBExecutor) (plan.Plan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return plan.Plan{}, plan.ErrNotFound
}

func (repo *planRepository) FilterPlans(ctx context.Context, filter plan.QueryFilter, exec ...core.DBExecutor) ([]plan.Plan, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	plans := make([]plan.Plan, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		if filter.SchoolID != "" && p.SchoolID != filter.SchoolID {
			continue
		}
		if !p.IsActive {
			continue
		}
		if !filter.DateFrom.IsZero() && p.TargetDate.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && p.TargetDate.After(filter.DateTo) {
			continue
		}
		plans = append(plans, *p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[j].TargetDate.Before(plans[i].TargetDate) })

	total := len(plans)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if filter.Limit == 0 || end > total {
		end = total
	}
	return plans[start:end], total, nil
}

func (repo *planRepository) UpdatePlan(ctx context.Context, p plan.Plan, exec ...core.DBExecutor) (plan.Plan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return plan.Plan{}, plan.ErrNotFound
	}
	repo.db.table[p.ID] = &p
	return p, nil
}
