package ports

import "context"

// DatabaseAdmin performs administrative operations against a database
// server. Existence checks back the creation guards; create operations
// are only issued when the guard reported the resource absent.
type DatabaseAdmin interface {
	// DatabaseExists reports whether a database with the given name exists.
	DatabaseExists(ctx context.Context, name string) (bool, error)

	// CreateDatabase creates a database, optionally owned by the given role.
	CreateDatabase(ctx context.Context, name, owner string) error

	// ExtensionExists reports whether the extension is installed in the
	// given database.
	ExtensionExists(ctx context.Context, database, extension string) (bool, error)

	// CreateExtension installs an extension into the given database.
	CreateExtension(ctx context.Context, database, extension string) error
}
