package shared

import (
	"database/sql"
	"errors"
	"testing"
)

func memoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
	})

	t.Run("RunMigrations creates the journal tables", func(t *testing.T) {
		db := memoryDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"rewrite_runs", "rewrite_runs_sequence"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		var seq int
		if err := db.QueryRow("SELECT value FROM rewrite_runs_sequence WHERE id = 1").Scan(&seq); err != nil {
			t.Fatalf("sequence row missing: %v", err)
		}
		if seq != 0 {
			t.Errorf("expected sequence seeded at 0, got %d", seq)
		}
	})

	t.Run("RollbackMigration drops tables", func(t *testing.T) {
		db := memoryDB(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM rewrite_runs LIMIT 1"); err == nil {
			t.Error("rewrite_runs should be gone after rollback")
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected an error when nothing is left to roll back")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db := memoryDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}

func TestOpenJournal(t *testing.T) {
	t.Run("empty path disables the journal", func(t *testing.T) {
		_, err := OpenJournal(DatabaseConfig{})
		if !errors.Is(err, ErrJournalUnavailable) {
			t.Errorf("expected ErrJournalUnavailable, got %v", err)
		}
	})

	t.Run("opens and migrates", func(t *testing.T) {
		db, err := OpenJournal(DatabaseConfig{Path: ":memory:"})
		if err != nil {
			t.Fatalf("OpenJournal() error = %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("SELECT 1 FROM rewrite_runs LIMIT 1"); err != nil {
			t.Errorf("rewrite_runs should exist: %v", err)
		}
	})
}
