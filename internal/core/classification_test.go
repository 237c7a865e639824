package core

import (
	"reflect"
	"testing"

	"curricore/pkg/domain"
)

func TestPlanTypeChangeSameElectivenessIsNominal(t *testing.T) {
	course := domain.Course{Type: domain.CourseElective}
	plan := PlanTypeChange(course, domain.CourseSelectedElective, domain.KnowledgeArea{Branch: domain.BranchSpecialized}, nil)
	if plan.Kind != MoveNone {
		t.Fatalf("elective to elective must not move, got %v", plan.Kind)
	}
}

func TestPlanTypeChangeToRequiredMovesToBranchRoot(t *testing.T) {
	course := domain.Course{Type: domain.CourseElective}
	plan := PlanTypeChange(course, domain.CourseRequired, domain.KnowledgeArea{Branch: domain.BranchGeneral}, nil)
	if plan.Kind != MoveToRoot || plan.Branch != domain.BranchGeneral {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestPlanTypeChangeDefaultsBranchWithoutArea(t *testing.T) {
	course := domain.Course{Type: domain.CourseElective}
	plan := PlanTypeChange(course, domain.CourseRequired, domain.KnowledgeArea{}, nil)
	if plan.Branch != domain.BranchFundamental {
		t.Fatalf("missing area must fall back to the fundamental branch, got %s", plan.Branch)
	}
}

func TestPlanTypeChangeToElective(t *testing.T) {
	course := domain.Course{Type: domain.CourseRequired}
	area := domain.KnowledgeArea{Branch: domain.BranchSpecialized}
	electiveB := domain.ProgramBlock{Base: domain.Base{ID: "blk-b"}, Parent: domain.BranchSpecialized, Type: domain.BlockElective}
	electiveA := domain.ProgramBlock{Base: domain.Base{ID: "blk-a"}, Parent: domain.BranchSpecialized, Type: domain.BlockElective}
	compulsory := domain.ProgramBlock{Base: domain.Base{ID: "blk-c"}, Parent: domain.BranchSpecialized, Type: domain.BlockCompulsory}
	otherBranch := domain.ProgramBlock{Base: domain.Base{ID: "blk-d"}, Parent: domain.BranchGeneral, Type: domain.BlockElective}

	plan := PlanTypeChange(course, domain.CourseElective, area, nil)
	if plan.Kind != MoveAutoCreate {
		t.Fatalf("no eligible block must auto-create, got %+v", plan)
	}

	plan = PlanTypeChange(course, domain.CourseElective, area, []domain.ProgramBlock{electiveA, compulsory, otherBranch})
	if plan.Kind != MoveToBlock || plan.BlockID != "blk-a" {
		t.Fatalf("single eligible block must be chosen directly, got %+v", plan)
	}

	plan = PlanTypeChange(course, domain.CourseElective, area, []domain.ProgramBlock{electiveB, electiveA})
	if plan.Kind != MoveChoiceRequired {
		t.Fatalf("multiple eligible blocks must require a choice, got %+v", plan)
	}
	if !reflect.DeepEqual(plan.Candidates, []string{"blk-a", "blk-b"}) {
		t.Fatalf("candidates must be sorted: %v", plan.Candidates)
	}
}
