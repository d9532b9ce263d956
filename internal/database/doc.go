// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, DSN pragmas, migrations, reset
//	├── errors.go        # Sentinel errors and gorm error translation
//	├── genres/          # Genre CRUD with the unique-name and dependents checks
//	├── authors/         # Author CRUD with the dependents check
//	├── books/           # Books and book instances (read side, seeding)
//	└── audit/           # Catalog change log
//
// # Using Sub-packages
//
// The handle is opened once at startup and closed on shutdown:
//
//	db, err := database.NewDatabase("./catalog.db")
//	defer db.Close()
//
//	genresRepo := genres.NewRepository(db.DB)
//	genre, created, err := genresRepo.CreateIfAbsent(ctx, "Fantasy")
//
// # Errors
//
// Repositories return errors matching ErrNotFound, ErrDuplicateName and
// ErrHasDependents via errors.Is. A refused delete carries the blocking books
// in a *DependentsError.
//
// # Integrity
//
// Foreign keys are enabled on every connection, genre names are guarded by a
// unique index, and books reference their author and genre with
// ON DELETE RESTRICT. The repositories additionally run the dependents check
// and the delete inside a single transaction so the caller gets the list of
// blocking books instead of a constraint error.
package database
