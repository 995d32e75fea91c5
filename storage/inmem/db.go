// Package inmemdb provides map-backed implementations of the core
// repositories; used by tests and local development.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/announcement"
	"github.com/trezcool/chekechea/core/attendance"
	"github.com/trezcool/chekechea/core/billing"
	"github.com/trezcool/chekechea/core/enrollment"
	"github.com/trezcool/chekechea/core/messaging"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/staff"
	"github.com/trezcool/chekechea/core/user"
)

// DB is an in-memory database. A single RWMutex guards every table so
// cross-table reads stay consistent; txMu additionally serializes
// transactions so a multi-step operation is never interleaved with another.
type DB struct {
	mutex sync.RWMutex
	txMu  sync.Mutex

	users         map[int]*user.User
	sessions      map[string]*user.Session
	applications  map[int]*enrollment.Application
	children      map[int]*enrollment.Child
	classes       map[int]*enrollment.Class
	documents     map[int]*enrollment.Document
	fees          map[int]*billing.Fee
	attendance    map[int]*attendance.Record
	messages      map[int]*messaging.Message
	notifications map[int]*notification.Notification
	activities    map[int]*notification.Activity
	teachers      map[int]*staff.Teacher
	announcements map[int]*announcement.Announcement

	seq map[string]int
}

func NewDB() *DB {
	return &DB{
		users:         make(map[int]*user.User),
		sessions:      make(map[string]*user.Session),
		applications:  make(map[int]*enrollment.Application),
		children:      make(map[int]*enrollment.Child),
		classes:       make(map[int]*enrollment.Class),
		documents:     make(map[int]*enrollment.Document),
		fees:          make(map[int]*billing.Fee),
		attendance:    make(map[int]*attendance.Record),
		messages:      make(map[int]*messaging.Message),
		notifications: make(map[int]*notification.Notification),
		activities:    make(map[int]*notification.Activity),
		teachers:      make(map[int]*staff.Teacher),
		announcements: make(map[int]*announcement.Announcement),
		seq:           make(map[string]int),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int {
	db.seq[table]++
	return db.seq[table]
}

// RunInTx serializes fn against other transactions. There is no rollback;
// tests relying on rollback semantics use the SQL store.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	return fn(ctx)
}

var _ core.Transactor = (*DB)(nil)
