package core

import (
	"sort"

	"curricore/pkg/domain"
)

// MoveKind describes how a course classification change relocates the
// course within the program structure.
type MoveKind int

const (
	// MoveNone keeps the current location; the type change is purely nominal.
	MoveNone MoveKind = iota
	// MoveToRoot relocates the course into a branch root list.
	MoveToRoot
	// MoveToBlock relocates the course into an existing elective block.
	MoveToBlock
	// MoveAutoCreate creates a default elective block in the branch and
	// relocates the course into it.
	MoveAutoCreate
	// MoveChoiceRequired means several elective blocks are eligible and the
	// caller must pick one.
	MoveChoiceRequired
)

// MovePlan is the structural consequence of a course type change.
type MovePlan struct {
	Kind       MoveKind
	Branch     domain.BlockParent
	BlockID    string
	Candidates []string
}

// PlanTypeChange computes where a course must move when its type changes.
// The planner is pure; callers apply the plan inside a transaction so the
// type update and the move commit together.
func PlanTypeChange(course domain.Course, newType domain.CourseType, area domain.KnowledgeArea, blocks []domain.ProgramBlock) MovePlan {
	branch := area.Branch
	if branch == "" {
		branch = domain.BranchFundamental
	}
	if course.Type.IsElective() == newType.IsElective() {
		return MovePlan{Kind: MoveNone, Branch: branch}
	}
	if !newType.IsElective() {
		return MovePlan{Kind: MoveToRoot, Branch: branch}
	}

	var candidates []string
	for _, b := range blocks {
		if b.Parent == branch && b.Type == domain.BlockElective {
			candidates = append(candidates, b.ID)
		}
	}
	sort.Strings(candidates)
	switch len(candidates) {
	case 0:
		return MovePlan{Kind: MoveAutoCreate, Branch: branch}
	case 1:
		return MovePlan{Kind: MoveToBlock, Branch: branch, BlockID: candidates[0]}
	default:
		return MovePlan{Kind: MoveChoiceRequired, Branch: branch, Candidates: candidates}
	}
}
