package helpers

import (
	"database/sql/driver"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/valpere/nebo/internal/models"
)

// MockDB represents a mocked database connection for testing
type MockDB struct {
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

// NewMockDB creates a new mock postgres connection
func NewMockDB(t *testing.T) *MockDB {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		},
	})
	require.NoError(t, err)

	return &MockDB{
		DB:   gormDB,
		Mock: mock,
	}
}

// Close closes the mock database connection
func (m *MockDB) Close() error {
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ExpectationsWereMet checks if all expected database interactions were met
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	require.NoError(t, m.Mock.ExpectationsWereMet())
}

// ExpectSlotUpsert sets up expectations for overwriting one kv_entries row
func (m *MockDB) ExpectSlotUpsert(key, value string) {
	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(`INSERT INTO "kv_entries" .* ON CONFLICT \("key"\) DO UPDATE SET`).
		WithArgs(key, value, AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	m.Mock.ExpectCommit()
}

// ExpectSlotRead sets up expectations for reading one kv_entries row
func (m *MockDB) ExpectSlotRead(key, value string) {
	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow(key, value, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	m.Mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE key = \$1`).
		WillReturnRows(rows)
}

// ExpectSlotAbsent sets up expectations for reading a missing row
func (m *MockDB) ExpectSlotAbsent() {
	m.Mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))
}

// NewSQLiteDB opens a migrated SQLite database in a temporary directory
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "nebo_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// AnyTime is a custom matcher for time values in SQL mocks
type AnyTime struct{}

// Match implements the sqlmock.Argument interface
func (a AnyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}
