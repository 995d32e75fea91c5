package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/staff"
)

type staffRepository struct {
	db *DB
}

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

// must be called with at least the read lock held
func (repo *staffRepository) hydrate(t staff.Teacher) staff.Teacher {
	if t.ClassID.Valid {
		if cls, ok := repo.db.classes[t.ClassID.Int]; ok {
			t.ClassName = null.StringFrom(cls.Name)
		}
	}
	return t
}

func (repo *staffRepository) CheckTeacherEmailUniqueness(_ context.Context, email string, excludeID int) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.teachers {
		if t.Email == email && t.ID != excludeID {
			return staff.ErrEmailExists
		}
	}
	return nil
}

func (repo *staffRepository) CreateTeacher(_ context.Context, t staff.Teacher) (staff.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = repo.db.nextID("teachers")
	repo.db.teachers[t.ID] = &t
	return repo.hydrate(t), nil
}

func (repo *staffRepository) QueryAllTeachers(_ context.Context) ([]staff.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]staff.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, repo.hydrate(*t))
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers, nil
}

func (repo *staffRepository) GetTeacherByID(_ context.Context, id int) (staff.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return repo.hydrate(*t), nil
	}
	return staff.Teacher{}, staff.ErrNotFound
}

func (repo *staffRepository) UpdateTeacher(_ context.Context, t staff.Teacher) (staff.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[t.ID]; !ok {
		return staff.Teacher{}, staff.ErrNotFound
	}
	repo.db.teachers[t.ID] = &t
	return repo.hydrate(t), nil
}
