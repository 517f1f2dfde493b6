package curriculum

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

// Node is one entry in the prerequisite graph. ParentID is uuid.Nil for
// levels. Order defines the prerequisite predecessor within a parent.
type Node struct {
	ID             uuid.UUID
	Kind           domain.NodeKind
	ParentID       uuid.UUID
	Order          int
	Title          string
	PassPercentage float64
}

// Graph is the static Level -> Subject -> {Lesson, Quiz} prerequisite
// structure, indexed by node id. It is read-only once built; the caller
// rebuilds it whenever the catalog changes.
type Graph struct {
	nodes    map[uuid.UUID]*Node
	children map[uuid.UUID][]*Node
	levels   []*Node
}

// Build indexes the supplied catalog rows. Dangling parent references and
// duplicate ids fail with a catalog_inconsistency error rather than being
// silently skipped.
func Build(levels []*domain.Level, subjects []*domain.Subject, lessons []*domain.Lesson, quizzes []*domain.Quiz) (*Graph, error) {
	const op = "curriculum.Build"

	g := &Graph{
		nodes:    make(map[uuid.UUID]*Node),
		children: make(map[uuid.UUID][]*Node),
	}

	add := func(n *Node) error {
		if n.ID == uuid.Nil {
			return domain.NewError(domain.CodeCatalogInconsistency, op, fmt.Sprintf("%s node with nil id", n.Kind), nil)
		}
		if _, ok := g.nodes[n.ID]; ok {
			return domain.NewError(domain.CodeCatalogInconsistency, op, fmt.Sprintf("duplicate node id %s", n.ID), nil)
		}
		g.nodes[n.ID] = n
		return nil
	}

	for _, lv := range levels {
		n := &Node{ID: lv.ID, Kind: domain.NodeLevel, Order: lv.Order, Title: lv.Name, PassPercentage: lv.PassPercentage}
		if err := add(n); err != nil {
			return nil, err
		}
		g.levels = append(g.levels, n)
	}
	for _, s := range subjects {
		parent, ok := g.nodes[s.LevelID]
		if !ok || parent.Kind != domain.NodeLevel {
			return nil, domain.NewError(domain.CodeCatalogInconsistency, op,
				fmt.Sprintf("subject %s references unknown level %s", s.ID, s.LevelID), nil)
		}
		n := &Node{ID: s.ID, Kind: domain.NodeSubject, ParentID: s.LevelID, Order: s.Order, Title: s.Title, PassPercentage: s.PassPercentage}
		if err := add(n); err != nil {
			return nil, err
		}
		g.children[s.LevelID] = append(g.children[s.LevelID], n)
	}
	for _, l := range lessons {
		parent, ok := g.nodes[l.SubjectID]
		if !ok || parent.Kind != domain.NodeSubject {
			return nil, domain.NewError(domain.CodeCatalogInconsistency, op,
				fmt.Sprintf("lesson %s references unknown subject %s", l.ID, l.SubjectID), nil)
		}
		n := &Node{ID: l.ID, Kind: domain.NodeLesson, ParentID: l.SubjectID, Order: l.Order, Title: l.Title, PassPercentage: l.PassPercentage}
		if err := add(n); err != nil {
			return nil, err
		}
		g.children[l.SubjectID] = append(g.children[l.SubjectID], n)
	}
	for _, q := range quizzes {
		parent, ok := g.nodes[q.SubjectID]
		if !ok || parent.Kind != domain.NodeSubject {
			return nil, domain.NewError(domain.CodeCatalogInconsistency, op,
				fmt.Sprintf("quiz %s references unknown subject %s", q.ID, q.SubjectID), nil)
		}
		n := &Node{ID: q.ID, Kind: domain.NodeQuiz, ParentID: q.SubjectID, Order: q.Order, Title: q.Title, PassPercentage: q.PassPercentage}
		if err := add(n); err != nil {
			return nil, err
		}
		g.children[q.SubjectID] = append(g.children[q.SubjectID], n)
	}

	for id := range g.children {
		sort.SliceStable(g.children[id], func(i, j int) bool {
			return g.children[id][i].Order < g.children[id][j].Order
		})
	}
	sort.SliceStable(g.levels, func(i, j int) bool { return g.levels[i].Order < g.levels[j].Order })

	return g, nil
}

// Node resolves a node id.
func (g *Graph) Node(id uuid.UUID) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, domain.NewError(domain.CodeNotFound, "curriculum.Node", fmt.Sprintf("unknown node %s", id), nil)
	}
	return n, nil
}

// ChildrenOf returns the ordered children of a node.
func (g *Graph) ChildrenOf(id uuid.UUID) ([]*Node, error) {
	if _, err := g.Node(id); err != nil {
		return nil, err
	}
	return g.children[id], nil
}

// PredecessorOf returns the immediately preceding sibling under the same
// parent, or nil when the node is first.
func (g *Graph) PredecessorOf(id uuid.UUID) (*Node, error) {
	n, err := g.Node(id)
	if err != nil {
		return nil, err
	}
	siblings := g.siblingsOf(n)
	var pred *Node
	for _, s := range siblings {
		if s.ID == n.ID {
			return pred, nil
		}
		pred = s
	}
	return nil, domain.NewError(domain.CodeCatalogInconsistency, "curriculum.PredecessorOf",
		fmt.Sprintf("node %s missing from its parent's children", id), nil)
}

// PassThreshold returns the node's configured pass percentage.
func (g *Graph) PassThreshold(id uuid.UUID) (float64, error) {
	n, err := g.Node(id)
	if err != nil {
		return 0, err
	}
	return n.PassPercentage, nil
}

// Levels returns the ordered top-level nodes.
func (g *Graph) Levels() []*Node { return g.levels }

// SubjectsOf returns a level's ordered subjects.
func (g *Graph) SubjectsOf(levelID uuid.UUID) ([]*Node, error) {
	n, err := g.Node(levelID)
	if err != nil {
		return nil, err
	}
	if n.Kind != domain.NodeLevel {
		return nil, domain.NewError(domain.CodeValidation, "curriculum.SubjectsOf",
			fmt.Sprintf("node %s is a %s, not a level", levelID, n.Kind), nil)
	}
	return g.children[levelID], nil
}

// LessonsOf returns a subject's ordered lessons (quizzes excluded).
func (g *Graph) LessonsOf(subjectID uuid.UUID) ([]*Node, error) {
	n, err := g.Node(subjectID)
	if err != nil {
		return nil, err
	}
	if n.Kind != domain.NodeSubject {
		return nil, domain.NewError(domain.CodeValidation, "curriculum.LessonsOf",
			fmt.Sprintf("node %s is a %s, not a subject", subjectID, n.Kind), nil)
	}
	var out []*Node
	for _, c := range g.children[subjectID] {
		if c.Kind == domain.NodeLesson {
			out = append(out, c)
		}
	}
	return out, nil
}

// siblingsOf returns the node's ordered sibling list. Lessons and quizzes
// form separate prerequisite chains under their subject.
func (g *Graph) siblingsOf(n *Node) []*Node {
	if n.Kind == domain.NodeLevel {
		return g.levels
	}
	all := g.children[n.ParentID]
	if n.Kind == domain.NodeSubject {
		return all
	}
	var out []*Node
	for _, c := range all {
		if c.Kind == n.Kind {
			out = append(out, c)
		}
	}
	return out
}
