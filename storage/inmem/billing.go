package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/billing"
)

type billingRepository struct {
	db *DB
}

func NewBillingRepository(db *DB) billing.Repository {
	return &billingRepository{db: db}
}

// must be called with at least the read lock held
func (repo *billingRepository) hydrate(fee billing.Fee) billing.Fee {
	if child, ok := repo.db.children[fee.StudentID]; ok {
		fee.StudentName = child.FirstName + " " + child.LastName
		fee.ParentID = child.ParentID
	}
	return fee
}

func (repo *billingRepository) CreateFee(_ context.Context, fee billing.Fee) (billing.Fee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.children[fee.StudentID]; !ok {
		return billing.Fee{}, billing.ErrStudentNotFound
	}

	fee.ID = repo.db.nextID("fees")
	repo.db.fees[fee.ID] = &fee
	return repo.hydrate(fee), nil
}

func (repo *billingRepository) QueryAllFees(_ context.Context) ([]billing.Fee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	fees := make([]billing.Fee, 0, len(repo.db.fees))
	for _, fee := range repo.db.fees {
		fees = append(fees, repo.hydrate(*fee))
	}
	sortFees(fees)
	return fees, nil
}

func (repo *billingRepository) QueryFeesByParentID(_ context.Context, parentID int) ([]billing.Fee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var fees []billing.Fee
	for _, fee := range repo.db.fees {
		hydrated := repo.hydrate(*fee)
		if hydrated.ParentID == parentID {
			fees = append(fees, hydrated)
		}
	}
	sortFees(fees)
	return fees, nil
}

func (repo *billingRepository) GetFeeByID(_ context.Context, id int) (billing.Fee, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if fee, ok := repo.db.fees[id]; ok {
		return repo.hydrate(*fee), nil
	}
	return billing.Fee{}, billing.ErrFeeNotFound
}

func (repo *billingRepository) UpdateFeeStatus(_ context.Context, id int, status string, paidDate null.Time) (billing.Fee, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	fee, ok := repo.db.fees[id]
	if !ok {
		return billing.Fee{}, billing.ErrFeeNotFound
	}
	fee.Status = status
	fee.PaidDate = paidDate
	return repo.hydrate(*fee), nil
}

func (repo *billingRepository) CountFeesByStatus(_ context.Context, status string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, fee := range repo.db.fees {
		if fee.Status == status {
			n++
		}
	}
	return n, nil
}

func sortFees(fees []billing.Fee) {
	sort.Slice(fees, func(i, j int) bool {
		if fees[i].DueDate.Equal(fees[j].DueDate) {
			return fees[i].ID < fees[j].ID
		}
		return fees[i].DueDate.Before(fees[j].DueDate)
	})
}
