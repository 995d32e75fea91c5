package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

// must be called with at least the read lock held
func (repo *enrollmentRepository) hydrateApplication(app enrollment.Application) enrollment.Application {
	if parent, ok := repo.db.users[app.ParentID]; ok {
		app.ParentName = parent.Name
	}
	app.ChildAge = null.IntFrom(age(app.ChildDob))
	return app
}

// must be called with at least the read lock held
func (repo *enrollmentRepository) hydrateChild(child enrollment.Child) enrollment.Child {
	if parent, ok := repo.db.users[child.ParentID]; ok {
		child.ParentName = parent.Name
		child.ParentEmail = parent.Email
		child.ParentPhone = parent.Phone.String
	}
	if child.ClassID.Valid {
		if cls, ok := repo.db.classes[child.ClassID.Int]; ok {
			child.ClassName = null.StringFrom(cls.Name)
		}
	}
	child.Age = null.IntFrom(age(child.Dob))
	return child
}

func (repo *enrollmentRepository) CreateApplication(_ context.Context, app enrollment.Application) (enrollment.Application, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	app.ID = repo.db.nextID("applications")
	repo.db.applications[app.ID] = &app
	return repo.hydrateApplication(app), nil
}

func (repo *enrollmentRepository) QueryAllApplications(_ context.Context) ([]enrollment.Application, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	apps := make([]enrollment.Application, 0, len(repo.db.applications))
	for _, app := range repo.db.applications {
		apps = append(apps, repo.hydrateApplication(*app))
	}
	sortApplications(apps)
	return apps, nil
}

func (repo *enrollmentRepository) QueryApplicationsByParentID(_ context.Context, parentID int) ([]enrollment.Application, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var apps []enrollment.Application
	for _, app := range repo.db.applications {
		if app.ParentID == parentID {
			apps = append(apps, repo.hydrateApplication(*app))
		}
	}
	sortApplications(apps)
	return apps, nil
}

func (repo *enrollmentRepository) GetApplicationByID(_ context.Context, id int) (enrollment.Application, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if app, ok := repo.db.applications[id]; ok {
		return repo.hydrateApplication(*app), nil
	}
	return enrollment.Application{}, enrollment.ErrApplicationNotFound
}

func (repo *enrollmentRepository) UpdateApplicationStatus(_ context.Context, id int, status string) (enrollment.Application, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	app, ok := repo.db.applications[id]
	if !ok {
		return enrollment.Application{}, enrollment.ErrApplicationNotFound
	}
	app.Status = status
	return repo.hydrateApplication(*app), nil
}

func (repo *enrollmentRepository) CountApplicationsByStatus(_ context.Context, status string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, app := range repo.db.applications {
		if app.Status == status {
			n++
		}
	}
	return n, nil
}

func (repo *enrollmentRepository) CreateChild(_ context.Context, child enrollment.Child) (enrollment.Child, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	child.ID = repo.db.nextID("children")
	repo.db.children[child.ID] = &child
	return repo.hydrateChild(child), nil
}

func (repo *enrollmentRepository) QueryAllChildren(_ context.Context) ([]enrollment.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	children := make([]enrollment.Child, 0, len(repo.db.children))
	for _, child := range repo.db.children {
		children = append(children, repo.hydrateChild(*child))
	}
	sortChildren(children)
	return children, nil
}

func (repo *enrollmentRepository) QueryChildrenByParentID(_ context.Context, parentID int) ([]enrollment.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var children []enrollment.Child
	for _, child := range repo.db.children {
		if child.ParentID == parentID {
			children = append(children, repo.hydrateChild(*child))
		}
	}
	sortChildren(children)
	return children, nil
}

func (repo *enrollmentRepository) QueryActiveChildren(_ context.Context, classID null.Int) ([]enrollment.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var children []enrollment.Child
	for _, child := range repo.db.children {
		if child.Status != enrollment.ChildActive {
			continue
		}
		if classID.Valid && child.ClassID != classID {
			continue
		}
		children = append(children, repo.hydrateChild(*child))
	}
	sortChildren(children)
	return children, nil
}

func (repo *enrollmentRepository) GetChildByID(_ context.Context, id int) (enrollment.Child, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if child, ok := repo.db.children[id]; ok {
		return repo.hydrateChild(*child), nil
	}
	return enrollment.Child{}, enrollment.ErrChildNotFound
}

func (repo *enrollmentRepository) UpdateChildClass(_ context.Context, id, classID int) (enrollment.Child, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	child, ok := repo.db.children[id]
	if !ok {
		return enrollment.Child{}, enrollment.ErrChildNotFound
	}
	child.ClassID = null.IntFrom(classID)
	return repo.hydrateChild(*child), nil
}

func (repo *enrollmentRepository) CountChildrenByStatus(_ context.Context, status string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, child := range repo.db.children {
		if child.Status == status {
			n++
		}
	}
	return n, nil
}

func (repo *enrollmentRepository) CreateClass(_ context.Context, cls enrollment.Class) (enrollment.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cls.ID = repo.db.nextID("classes")
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *enrollmentRepository) QueryAllClasses(_ context.Context) ([]enrollment.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]enrollment.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *enrollmentRepository) GetClassByID(_ context.Context, id int) (enrollment.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return enrollment.Class{}, enrollment.ErrClassNotFound
}

func (repo *enrollmentRepository) CreateDocument(_ context.Context, doc enrollment.Document) (enrollment.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	doc.ID = repo.db.nextID("documents")
	repo.db.documents[doc.ID] = &doc
	return doc, nil
}

func (repo *enrollmentRepository) QueryDocumentsByOwner(_ context.Context, owner enrollment.DocumentOwner) ([]enrollment.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var docs []enrollment.Document
	for _, doc := range repo.db.documents {
		if doc.DocumentOwner == owner {
			docs = append(docs, *doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func sortApplications(apps []enrollment.Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].AppliedDate.Equal(apps[j].AppliedDate) {
			return apps[i].ID > apps[j].ID
		}
		return apps[i].AppliedDate.After(apps[j].AppliedDate)
	})
}

func sortChildren(children []enrollment.Child) {
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
}

func age(dob time.Time) int {
	now := time.Now().UTC()
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
