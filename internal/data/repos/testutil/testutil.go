// Package testutil provides the shared database harness for repository and
// service tests. By default it runs against an in-memory SQLite database;
// set TEST_POSTGRES_DSN to exercise the same tests against Postgres.
package testutil

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tasbeha/deaconschool-backend/internal/db"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/logger"
)

var (
	openOnce sync.Once
	shared   *gorm.DB
	openErr  error
)

// DB returns the migrated shared test database. Tests that write should
// wrap themselves in Tx so state never leaks between cases.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	openOnce.Do(func() {
		cfg := &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		}
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			shared, openErr = gorm.Open(postgres.Open(dsn), cfg)
		} else {
			shared, openErr = gorm.Open(sqlite.Open("file:testdb?mode=memory&cache=shared"), cfg)
		}
		if openErr != nil {
			return
		}
		openErr = db.AutoMigrate(shared)
	})
	if openErr != nil {
		tb.Fatalf("open test database: %v", openErr)
	}
	return shared
}

// Tx begins a transaction that is rolled back when the test finishes.
func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin test tx: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}

// Logger returns a quiet logger for wiring repos and services under test.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	l, err := logger.New("test")
	if err != nil {
		tb.Fatalf("test logger: %v", err)
	}
	return l
}

func Ptr[T any](v T) *T { return &v }

// SeedUser inserts a user with the given role and returns it.
func SeedUser(tb testing.TB, tx *gorm.DB, role string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:        uuid.New(),
		FirstName: "Test",
		LastName:  "User",
		Email:     uuid.NewString() + "@example.org",
		Password:  "x",
		Role:      role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := tx.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedRecord inserts a pending activity record for the owner.
func SeedRecord(tb testing.TB, tx *gorm.DB, ownerID uuid.UUID, category domain.RecordCategory, requested int) *domain.ActivityRecord {
	tb.Helper()
	now := time.Now().UTC()
	rec := &domain.ActivityRecord{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Category:        category,
		Title:           "seeded activity",
		OccurredOn:      now.AddDate(0, 0, -1),
		RequestedPoints: requested,
		Status:          domain.RecordPending,
		SubmittedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Create(rec).Error; err != nil {
		tb.Fatalf("seed record: %v", err)
	}
	return rec
}

// SeedAssignment binds a deacon to a level for the current academic year.
func SeedAssignment(tb testing.TB, tx *gorm.DB, deaconID, levelID uuid.UUID, status domain.AssignmentStatus) *domain.LevelAssignment {
	tb.Helper()
	now := time.Now().UTC()
	a := &domain.LevelAssignment{
		ID:              uuid.New(),
		DeaconID:        deaconID,
		LevelID:         levelID,
		AcademicYear:    "2026-2027",
		Status:          status,
		StartDate:       now,
		ExpectedEndDate: now.AddDate(1, 0, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}

// SeedCatalog inserts a small two-subject level and returns the rows in
// catalog order. Each subject has two lessons and one quiz.
func SeedCatalog(tb testing.TB, tx *gorm.DB) (*domain.Level, []*domain.Subject, []*domain.Lesson, []*domain.Quiz) {
	tb.Helper()
	now := time.Now().UTC()
	level := &domain.Level{ID: uuid.New(), Name: "Year One", Order: 1, PassPercentage: 70, CreatedAt: now, UpdatedAt: now}
	if err := tx.Create(level).Error; err != nil {
		tb.Fatalf("seed level: %v", err)
	}

	var subjects []*domain.Subject
	var lessons []*domain.Lesson
	var quizzes []*domain.Quiz
	for i, title := range []string{"Hymns", "Rites"} {
		s := &domain.Subject{ID: uuid.New(), LevelID: level.ID, Title: title, Order: i + 1, PassPercentage: 70, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(s).Error; err != nil {
			tb.Fatalf("seed subject: %v", err)
		}
		subjects = append(subjects, s)
		for j := 1; j <= 2; j++ {
			l := &domain.Lesson{ID: uuid.New(), SubjectID: s.ID, Title: title + " lesson", Order: j, PassPercentage: 70, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(l).Error; err != nil {
				tb.Fatalf("seed lesson: %v", err)
			}
			lessons = append(lessons, l)
		}
		q := &domain.Quiz{ID: uuid.New(), SubjectID: s.ID, Title: title + " quiz", Order: 1, PassPercentage: 50, CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(q).Error; err != nil {
			tb.Fatalf("seed quiz: %v", err)
		}
		quizzes = append(quizzes, q)
	}
	return level, subjects, lessons, quizzes
}
