package curriculum

import (
	"testing"

	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

func testLevel(order int) *domain.Level {
	return &domain.Level{ID: uuid.New(), Name: "level", Order: order, PassPercentage: 80}
}

func testSubject(levelID uuid.UUID, order int, pass float64) *domain.Subject {
	return &domain.Subject{ID: uuid.New(), LevelID: levelID, Title: "subject", Order: order, PassPercentage: pass}
}

func testLesson(subjectID uuid.UUID, order int) *domain.Lesson {
	return &domain.Lesson{ID: uuid.New(), SubjectID: subjectID, Title: "lesson", Order: order, PassPercentage: 70}
}

func testQuiz(subjectID uuid.UUID, order int) *domain.Quiz {
	return &domain.Quiz{ID: uuid.New(), SubjectID: subjectID, Title: "quiz", Order: order, PassPercentage: 50}
}

func TestBuildIndexesAndOrders(t *testing.T) {
	lv := testLevel(0)
	s1 := testSubject(lv.ID, 0, 70)
	s2 := testSubject(lv.ID, 1, 70)
	// Inserted out of order on purpose.
	l2 := testLesson(s1.ID, 1)
	l1 := testLesson(s1.ID, 0)
	q1 := testQuiz(s1.ID, 0)

	g, err := Build([]*domain.Level{lv}, []*domain.Subject{s2, s1}, []*domain.Lesson{l2, l1}, []*domain.Quiz{q1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	subjects, err := g.SubjectsOf(lv.ID)
	if err != nil || len(subjects) != 2 {
		t.Fatalf("SubjectsOf: err=%v len=%d", err, len(subjects))
	}
	if subjects[0].ID != s1.ID || subjects[1].ID != s2.ID {
		t.Fatalf("subjects not ordered by sort order")
	}

	lessons, err := g.LessonsOf(s1.ID)
	if err != nil || len(lessons) != 2 {
		t.Fatalf("LessonsOf: err=%v len=%d", err, len(lessons))
	}
	if lessons[0].ID != l1.ID {
		t.Fatalf("lessons not ordered by sort order")
	}

	children, err := g.ChildrenOf(s1.ID)
	if err != nil || len(children) != 3 {
		t.Fatalf("ChildrenOf: err=%v len=%d", err, len(children))
	}

	pred, err := g.PredecessorOf(s2.ID)
	if err != nil || pred == nil || pred.ID != s1.ID {
		t.Fatalf("PredecessorOf(s2): pred=%v err=%v", pred, err)
	}
	pred, err = g.PredecessorOf(s1.ID)
	if err != nil || pred != nil {
		t.Fatalf("PredecessorOf(s1) should be nil, got %v err=%v", pred, err)
	}

	// Lessons and quizzes chain separately: the first quiz has no
	// predecessor even though lessons sort before it.
	pred, err = g.PredecessorOf(q1.ID)
	if err != nil || pred != nil {
		t.Fatalf("PredecessorOf(q1) should be nil, got %v err=%v", pred, err)
	}

	threshold, err := g.PassThreshold(s2.ID)
	if err != nil || threshold != 70 {
		t.Fatalf("PassThreshold: got %v err=%v", threshold, err)
	}
}

func TestBuildRejectsDanglingReferences(t *testing.T) {
	lv := testLevel(0)
	orphan := testSubject(uuid.New(), 0, 70)

	_, err := Build([]*domain.Level{lv}, []*domain.Subject{orphan}, nil, nil)
	if !domain.IsCode(err, domain.CodeCatalogInconsistency) {
		t.Fatalf("expected catalog_inconsistency, got %v", err)
	}

	s := testSubject(lv.ID, 0, 70)
	danglingLesson := testLesson(uuid.New(), 0)
	_, err = Build([]*domain.Level{lv}, []*domain.Subject{s}, []*domain.Lesson{danglingLesson}, nil)
	if !domain.IsCode(err, domain.CodeCatalogInconsistency) {
		t.Fatalf("expected catalog_inconsistency for dangling lesson, got %v", err)
	}

	dup := &domain.Subject{ID: s.ID, LevelID: lv.ID, Title: "dup", Order: 1}
	_, err = Build([]*domain.Level{lv}, []*domain.Subject{s, dup}, nil, nil)
	if !domain.IsCode(err, domain.CodeCatalogInconsistency) {
		t.Fatalf("expected catalog_inconsistency for duplicate id, got %v", err)
	}
}

func TestNodeLookupUnknown(t *testing.T) {
	g, err := Build(nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := g.Node(uuid.New()); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if _, err := g.ChildrenOf(uuid.New()); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
