package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/flowprep/internal/ports"
)

// DatabaseAdmin is a test double for ports.DatabaseAdmin.
type DatabaseAdmin struct {
	mu         sync.Mutex
	databases  map[string]bool
	extensions map[string]bool

	CreateDatabaseCalls  int
	CreateExtensionCalls int

	// Errors to inject per operation; nil means success.
	ExistsErr          error
	CreateDatabaseErr  error
	CreateExtensionErr error
}

// NewDatabaseAdmin creates a new DatabaseAdmin mock.
func NewDatabaseAdmin() *DatabaseAdmin {
	return &DatabaseAdmin{
		databases:  make(map[string]bool),
		extensions: make(map[string]bool),
	}
}

// AddDatabase seeds an existing database.
func (m *DatabaseAdmin) AddDatabase(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.databases[name] = true
}

// AddExtension seeds an installed extension.
func (m *DatabaseAdmin) AddExtension(database, extension string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extensions[extensionKey(database, extension)] = true
}

// DatabaseExists reports whether the database was seeded or created.
func (m *DatabaseAdmin) DatabaseExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	return m.databases[name], nil
}

// CreateDatabase records the creation.
func (m *DatabaseAdmin) CreateDatabase(_ context.Context, name, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateDatabaseCalls++
	if m.CreateDatabaseErr != nil {
		return m.CreateDatabaseErr
	}
	m.databases[name] = true
	return nil
}

// ExtensionExists reports whether the extension was seeded or created.
func (m *DatabaseAdmin) ExtensionExists(_ context.Context, database, extension string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	return m.extensions[extensionKey(database, extension)], nil
}

// CreateExtension records the creation.
func (m *DatabaseAdmin) CreateExtension(_ context.Context, database, extension string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateExtensionCalls++
	if m.CreateExtensionErr != nil {
		return m.CreateExtensionErr
	}
	m.extensions[extensionKey(database, extension)] = true
	return nil
}

// extensionKey builds the lookup key for a database's extension.
func extensionKey(database, extension string) string {
	return fmt.Sprintf("%s/%s", database, extension)
}

// Ensure DatabaseAdmin implements ports.DatabaseAdmin.
var _ ports.DatabaseAdmin = (*DatabaseAdmin)(nil)
