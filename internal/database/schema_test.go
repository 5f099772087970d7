package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_create_users_table.sql",
		"00002_create_refresh_tokens_table.sql",
		"00003_create_employees_table.sql",
		"00004_create_customers_table.sql",
		"00005_create_products_table.sql",
		"00006_create_sales_table.sql",
		"00007_create_sale_items_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		// Check for goose Up directive
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		// Check for goose Down directive
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}

		// Check for StatementBegin/End
		if !strings.Contains(contentStr, "-- +goose StatementBegin") {
			t.Errorf("Migration file %s missing '-- +goose StatementBegin' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose StatementEnd") {
			t.Errorf("Migration file %s missing '-- +goose StatementEnd' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"users":          "00001_create_users_table.sql",
		"refresh_tokens": "00002_create_refresh_tokens_table.sql",
		"employees":      "00003_create_employees_table.sql",
		"customers":      "00004_create_customers_table.sql",
		"products":       "00005_create_products_table.sql",
		"sales":          "00006_create_sales_table.sql",
		"sale_items":     "00007_create_sale_items_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		// Check if migration creates the table
		createTableStmt := "CREATE TABLE IF NOT EXISTS " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		// Check if migration has drop table in down section
		dropTableStmt := "DROP TABLE IF EXISTS " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestMigrationsEnforceLedgerConstraints(t *testing.T) {
	migrationsDir := "../../migrations"

	checks := []struct {
		file     string
		fragment string
		reason   string
	}{
		{"00005_create_products_table.sql", "CHECK (stock >= 0)", "stock must never go negative"},
		{"00006_create_sales_table.sql", "uq_sales_idempotency_key", "duplicate commits must be detectable"},
		{"00006_create_sales_table.sql", "ON DELETE SET NULL", "ledger rows must survive deleted references"},
		{"00007_create_sale_items_table.sql", "CHECK (quantity >= 1)", "sale lines need a positive quantity"},
		{"00003_create_employees_table.sql", "'admin'", "role values are constrained"},
	}

	for _, check := range checks {
		content, err := os.ReadFile(filepath.Join(migrationsDir, check.file))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", check.file, err)
			continue
		}
		if !strings.Contains(string(content), check.fragment) {
			t.Errorf("Migration file %s missing %q (%s)", check.file, check.fragment, check.reason)
		}
	}
}
