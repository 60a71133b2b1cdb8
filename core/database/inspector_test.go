package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	// Setup In-Memory DB
	db, err := Connect(Config{Driver: DriverSQLite, Path: ":memory:"})
	assert.NoError(t, err)
	assert.NotNil(t, db)

	// Create a test table with SQLite types
	err = db.Exec("CREATE TABLE claim_list (id INTEGER PRIMARY KEY, patient_name TEXT, billed_amount DECIMAL(15,2))").Error
	assert.NoError(t, err)

	columns, err := GetTableColumns(db, "claim_list")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["patient_name"])
	assert.Equal(t, "decimal(15,2)", colMap["billed_amount"])

	// PRAGMA table_info returns an empty result for a non-existent table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Path: ":memory:"})
	assert.NoError(t, err)

	err = db.Exec("CREATE TABLE claim_detail (id INTEGER PRIMARY KEY, claim_id INTEGER)").Error
	assert.NoError(t, err)

	missing, err := MissingColumns(db, "claim_detail", []string{"id", "claim_id", "denial_reason"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"denial_reason"}, missing)

	missing, err = MissingColumns(db, "claim_detail", []string{"id", "claim_id"})
	assert.NoError(t, err)
	assert.Empty(t, missing)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "BIGINT", "NO", "PRI", nil, "").
		AddRow("Patient_Name", "VARCHAR(255)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `claim_list`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "claim_list")
	assert.NoError(t, err)
	assert.Len(t, columns, 2)
	// Names and types are normalized to lower case.
	assert.Equal(t, "bigint", columns[0].Type)
	assert.Equal(t, "patient_name", columns[1].Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}
