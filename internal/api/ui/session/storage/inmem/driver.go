package inmem

import (
	"context"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/skybi/pokedex/internal/api/ui/session"
)

const tableSessions = "sessions"

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableSessions: {
			Name: tableSessions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "ID"},
				},
				"expires": {
					Name:         "expires",
					Unique:       false,
					AllowMissing: false,
					Indexer:      &memdb.IntFieldIndex{Field: "Expires"},
				},
			},
		},
	},
}

// Driver represents the in-memory session storage driver built using hashicorp/go-memdb.
// Stored sessions are never mutated in place; updates insert a modified copy.
type Driver struct {
	db  *memdb.MemDB
	now func() time.Time
}

var _ session.Storage = (*Driver)(nil)

// New creates a new empty in-memory session storage driver
func New() (*Driver, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &Driver{db: db, now: time.Now}, nil
}

// Get retrieves a non-expired session by its ID
func (driver *Driver) Get(_ context.Context, id string) (*session.Session, error) {
	txn := driver.db.Txn(false)
	obj, err := txn.First(tableSessions, "id", id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}

	ses := obj.(*session.Session)
	if ses.Expires <= driver.now().Unix() {
		return nil, nil
	}
	return ses, nil
}

// Create stores a new session
func (driver *Driver) Create(_ context.Context, ses *session.Session) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableSessions, ses); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Touch moves the expiration of an existing session.
// Touching an unknown session is a no-op.
func (driver *Driver) Touch(_ context.Context, id string, expires int64) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()

	obj, err := txn.First(tableSessions, "id", id)
	if err != nil {
		return err
	}
	if obj == nil {
		return nil
	}

	updated := *obj.(*session.Session)
	updated.Expires = expires
	if err := txn.Insert(tableSessions, &updated); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Terminate terminates a session by its ID
func (driver *Driver) Terminate(_ context.Context, id string) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll(tableSessions, "id", id); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// TerminateExpired terminates all sessions that are expired
func (driver *Driver) TerminateExpired(_ context.Context) (int, error) {
	txn := driver.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(tableSessions, "expires")
	if err != nil {
		return 0, err
	}

	// The int index is varint encoded so its iteration order says nothing about the actual expiration order
	now := driver.now().Unix()
	var expired []*session.Session
	for obj := it.Next(); obj != nil; obj = it.Next() {
		ses := obj.(*session.Session)
		if ses.Expires <= now {
			expired = append(expired, ses)
		}
	}

	for _, ses := range expired {
		if err := txn.Delete(tableSessions, ses); err != nil {
			return 0, err
		}
	}
	txn.Commit()
	return len(expired), nil
}
