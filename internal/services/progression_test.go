package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/repos/testutil"
	"github.com/tasbeha/deaconschool-backend/internal/data/txn"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

type progressionFixture struct {
	tx       *gorm.DB
	prog     ProgressionService
	level    *domain.Level
	subjects []*domain.Subject
	lessons  []*domain.Lesson
	quizzes  []*domain.Quiz
}

func newProgressionFixture(t *testing.T) *progressionFixture {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	prog := NewProgressionService(
		repos.NewCatalogRepo(tx, log),
		repos.NewCompletionRepo(tx, log),
		repos.NewAssignmentRepo(tx, log),
		txn.NewGormRunner(tx),
		log,
	)
	level, subjects, lessons, quizzes := testutil.SeedCatalog(t, tx)
	return &progressionFixture{
		tx:       tx,
		prog:     prog,
		level:    level,
		subjects: subjects,
		lessons:  lessons,
		quizzes:  quizzes,
	}
}

func (f *progressionFixture) completeLesson(t *testing.T, ctx context.Context, deaconID, lessonID uuid.UUID) {
	t.Helper()
	_, err := f.prog.CompleteNode(ctx, deaconID, lessonID, CompleteNodeInput{})
	require.NoError(t, err)
}

func TestLessonChainUnlocksInOrder(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	first, second := f.lessons[0], f.lessons[1]

	_, err := f.prog.StartNode(ctx, deacon.ID, first.ID)
	require.NoError(t, err)

	_, err = f.prog.StartNode(ctx, deacon.ID, second.ID)
	require.True(t, domain.IsCode(err, domain.CodeNodeLocked))

	f.completeLesson(t, ctx, deacon.ID, first.ID)

	_, err = f.prog.StartNode(ctx, deacon.ID, second.ID)
	require.NoError(t, err)
}

func TestQuizUnlocksAtHalfTheLessons(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	quiz := f.quizzes[0]

	_, err := f.prog.StartNode(ctx, deacon.ID, quiz.ID)
	require.True(t, domain.IsCode(err, domain.CodeNodeLocked))

	f.completeLesson(t, ctx, deacon.ID, f.lessons[0].ID)

	_, err = f.prog.StartNode(ctx, deacon.ID, quiz.ID)
	require.NoError(t, err)

	_, err = f.prog.CompleteNode(ctx, deacon.ID, quiz.ID, CompleteNodeInput{})
	require.True(t, domain.IsCode(err, domain.CodeValidation))

	out, err := f.prog.CompleteNode(ctx, deacon.ID, quiz.ID, CompleteNodeInput{Score: testutil.Ptr(90.0)})
	require.NoError(t, err)
	require.True(t, out.Completed)
	require.Equal(t, 90.0, *out.Score)
}

func TestStartingContainerNodesIsRejected(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)

	_, err := f.prog.StartNode(ctx, deacon.ID, f.level.ID)
	require.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = f.prog.StartNode(ctx, deacon.ID, f.subjects[0].ID)
	require.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestRetakeKeepsBestScore(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	quiz := f.quizzes[0]
	f.completeLesson(t, ctx, deacon.ID, f.lessons[0].ID)

	_, err := f.prog.CompleteNode(ctx, deacon.ID, quiz.ID, CompleteNodeInput{Score: testutil.Ptr(80.0)})
	require.NoError(t, err)
	out, err := f.prog.CompleteNode(ctx, deacon.ID, quiz.ID, CompleteNodeInput{Score: testutil.Ptr(60.0)})
	require.NoError(t, err)
	require.Equal(t, 80.0, *out.Score)
}

func TestLevelOverviewReportsProgress(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	f.completeLesson(t, ctx, deacon.ID, f.lessons[0].ID)
	f.completeLesson(t, ctx, deacon.ID, f.lessons[1].ID)

	statuses, err := f.prog.LevelOverview(ctx, deacon.ID, f.level.ID)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)

	require.Equal(t, f.level.ID, statuses[0].NodeID)
	// First subject fully complete, second untouched: level sits at 50%.
	require.InDelta(t, 50, statuses[0].Progress, 0.01)

	byNode := make(map[uuid.UUID]*NodeStatus, len(statuses))
	for _, st := range statuses {
		byNode[st.NodeID] = st
	}
	require.InDelta(t, 100, byNode[f.subjects[0].ID].Progress, 0.01)
	require.InDelta(t, 0, byNode[f.subjects[1].ID].Progress, 0.01)
	require.True(t, byNode[f.subjects[1].ID].Unlocked)
}

// Level pass threshold 80%; completing 3 of 4 lessons yields 75% level
// progress (subject one full, subject two half), all 4 yields 100%.
func TestCertificateProgressThreshold(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	testutil.SeedAssignment(t, f.tx, deacon.ID, f.level.ID, domain.AssignmentInProgress)

	require.NoError(t, f.tx.Model(&domain.Level{}).
		Where("id = ?", f.level.ID).
		Update("pass_percentage", 80).Error)

	for _, l := range f.lessons[:3] {
		f.completeLesson(t, ctx, deacon.ID, l.ID)
	}
	out, err := f.prog.CanIssueCertificate(ctx, deacon.ID, f.level.ID)
	require.NoError(t, err)
	require.False(t, out.Eligible)
	require.InDelta(t, 75, out.Progress, 0.01)
	require.NotEmpty(t, out.Reasons)

	f.completeLesson(t, ctx, deacon.ID, f.lessons[3].ID)
	out, err = f.prog.CanIssueCertificate(ctx, deacon.ID, f.level.ID)
	require.NoError(t, err)
	require.True(t, out.Eligible)
	require.InDelta(t, 100, out.Progress, 0.01)
}

func TestCertificateCompletedAssignmentAlwaysEligible(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)
	testutil.SeedAssignment(t, f.tx, deacon.ID, f.level.ID, domain.AssignmentCompleted)

	out, err := f.prog.CanIssueCertificate(ctx, deacon.ID, f.level.ID)
	require.NoError(t, err)
	require.True(t, out.Eligible)
}

func TestCertificateRequiresAssignment(t *testing.T) {
	f := newProgressionFixture(t)
	ctx := context.Background()
	deacon := testutil.SeedUser(t, f.tx, domain.RoleDeacon)

	out, err := f.prog.CanIssueCertificate(ctx, deacon.ID, f.level.ID)
	require.NoError(t, err)
	require.False(t, out.Eligible)
	require.NotEmpty(t, out.Reasons)

	// A merely assigned (not started) level cannot certify either.
	testutil.SeedAssignment(t, f.tx, deacon.ID, f.level.ID, domain.AssignmentAssigned)
	out, err = f.prog.CanIssueCertificate(ctx, deacon.ID, f.level.ID)
	require.NoError(t, err)
	require.False(t, out.Eligible)
}
