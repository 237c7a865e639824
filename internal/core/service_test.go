package core

import (
	"context"
	"errors"
	"testing"

	"curricore/internal/infra/persistence/memory"
	"curricore/pkg/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewInMemoryService(nil)
}

func mustCreateArea(t *testing.T, svc *Service, id string, branch domain.BlockParent) domain.KnowledgeArea {
	t.Helper()
	area, _, err := svc.CreateKnowledgeArea(context.Background(), domain.KnowledgeArea{
		Base:   domain.Base{ID: id},
		Name:   domain.LocalizedText{EN: id},
		Branch: branch,
	})
	if err != nil {
		t.Fatalf("create area %s: %v", id, err)
	}
	return area
}

func mustCreateCourse(t *testing.T, svc *Service, id, code string, courseType domain.CourseType, areaID string) domain.Course {
	t.Helper()
	course, _, err := svc.CreateCourse(context.Background(), domain.Course{
		Base:            domain.Base{ID: id},
		Code:            code,
		Name:            domain.LocalizedText{EN: code},
		Credits:         3,
		Type:            courseType,
		KnowledgeAreaID: areaID,
	})
	if err != nil {
		t.Fatalf("create course %s: %v", code, err)
	}
	return course
}

func TestCreateCourseAppliesGeneralInfoDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.SetGeneralInfo(ctx, domain.GeneralInfo{
		DefaultCourseCode: "NEW000",
		DefaultCourseName: domain.LocalizedText{VI: "Học phần mới", EN: "New course"},
		DefaultCredits:    2,
	}); err != nil {
		t.Fatalf("set general info: %v", err)
	}
	course, _, err := svc.CreateCourse(ctx, domain.Course{})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if course.Code != "NEW000" || course.Name.EN != "New course" || course.Credits != 2 {
		t.Fatalf("defaults not applied: %+v", course)
	}
	if course.Type != domain.CourseRequired {
		t.Fatalf("blank type must default to required, got %s", course.Type)
	}
}

func TestChangeCourseTypeAutoCreatesElectiveBlock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreateArea(t, svc, "ka-spec", domain.BranchSpecialized)
	course := mustCreateCourse(t, svc, "c1", "CS401", domain.CourseRequired, "ka-spec")

	updated, _, err := svc.ChangeCourseType(ctx, course.ID, domain.CourseElective, "")
	if err != nil {
		t.Fatalf("change type: %v", err)
	}
	if updated.Type != domain.CourseElective {
		t.Fatalf("type not updated: %s", updated.Type)
	}
	blocks := svc.Store().ListProgramBlocks()
	if len(blocks) != 1 {
		t.Fatalf("expected one auto-created block, got %d", len(blocks))
	}
	block := blocks[0]
	if block.Parent != domain.BranchSpecialized || block.Type != domain.BlockElective {
		t.Fatalf("unexpected block %+v", block)
	}
	if len(block.CourseIDs) != 1 || block.CourseIDs[0] != course.ID {
		t.Fatalf("course not placed into new block: %+v", block)
	}
	for _, ids := range svc.Store().Structure() {
		for _, id := range ids {
			if id == course.ID {
				t.Fatalf("course must leave the root lists")
			}
		}
	}
}

func TestChangeCourseTypeRequiresBlockChoice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreateArea(t, svc, "ka-spec", domain.BranchSpecialized)
	course := mustCreateCourse(t, svc, "c1", "CS401", domain.CourseRequired, "ka-spec")
	for _, id := range []string{"blk-a", "blk-b"} {
		if _, _, err := svc.CreateProgramBlock(ctx, domain.ProgramBlock{
			Base:   domain.Base{ID: id},
			Name:   domain.LocalizedText{EN: id},
			Parent: domain.BranchSpecialized,
			Type:   domain.BlockElective,
		}); err != nil {
			t.Fatalf("create block %s: %v", id, err)
		}
	}

	_, _, err := svc.ChangeCourseType(ctx, course.ID, domain.CourseElective, "")
	var choice domain.BlockChoiceRequiredError
	if !errors.As(err, &choice) {
		t.Fatalf("expected BlockChoiceRequiredError, got %v", err)
	}
	if len(choice.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %v", choice.Candidates)
	}
	if got, _ := svc.Store().GetCourse(course.ID); got.Type != domain.CourseRequired {
		t.Fatalf("failed change must not alter the course: %+v", got)
	}

	if _, _, err := svc.ChangeCourseType(ctx, course.ID, domain.CourseElective, "nonsense"); err == nil {
		t.Fatalf("ineligible target block must be rejected")
	}

	updated, _, err := svc.ChangeCourseType(ctx, course.ID, domain.CourseElective, "blk-b")
	if err != nil {
		t.Fatalf("change with explicit block: %v", err)
	}
	if updated.Type != domain.CourseElective {
		t.Fatalf("type not updated: %s", updated.Type)
	}
	var blkB domain.ProgramBlock
	for _, b := range svc.Store().ListProgramBlocks() {
		if b.ID == "blk-b" {
			blkB = b
		}
	}
	if len(blkB.CourseIDs) != 1 || blkB.CourseIDs[0] != course.ID {
		t.Fatalf("course not in chosen block: %+v", blkB)
	}
}

func TestChangeCourseTypeBackToRequiredReturnsToRoot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreateArea(t, svc, "ka-gen", domain.BranchGeneral)
	course := mustCreateCourse(t, svc, "c1", "PE101", domain.CourseRequired, "ka-gen")
	if _, _, err := svc.ChangeCourseType(ctx, course.ID, domain.CourseElective, ""); err != nil {
		t.Fatalf("to elective: %v", err)
	}
	if _, _, err := svc.ChangeCourseType(ctx, course.ID, domain.CourseRequired, ""); err != nil {
		t.Fatalf("back to required: %v", err)
	}
	root := svc.Store().Structure()[domain.BranchGeneral]
	if len(root) != 1 || root[0] != course.ID {
		t.Fatalf("course must return to the general root list: %v", root)
	}
	for _, b := range svc.Store().ListProgramBlocks() {
		if len(b.CourseIDs) != 0 {
			t.Fatalf("block must be emptied: %+v", b)
		}
	}
}

func TestDeleteElectiveBlockRequiresEmptying(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreateArea(t, svc, "ka-spec", domain.BranchSpecialized)
	course := mustCreateCourse(t, svc, "c1", "CS401", domain.CourseRequired, "ka-spec")

	if _, _, err := svc.ChangeCourseType(ctx, course.ID, domain.CourseElective, ""); err != nil {
		t.Fatalf("to elective: %v", err)
	}
	blocks := svc.Store().ListProgramBlocks()
	if len(blocks) != 1 {
		t.Fatalf("expected auto-created block, got %d", len(blocks))
	}
	blockID := blocks[0].ID

	_, err := svc.DeleteProgramBlock(ctx, blockID)
	var inUse domain.EntityInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("expected EntityInUseError for populated elective block, got %v", err)
	}
	if inUse.Count != 1 {
		t.Fatalf("expected one blocking member, got %d", inUse.Count)
	}

	if _, _, err := svc.ChangeCourseType(ctx, course.ID, domain.CourseRequired, ""); err != nil {
		t.Fatalf("retype member: %v", err)
	}
	if _, err := svc.DeleteProgramBlock(ctx, blockID); err != nil {
		t.Fatalf("delete emptied block: %v", err)
	}
	if len(svc.Store().ListProgramBlocks()) != 0 {
		t.Fatalf("emptied block should be deletable")
	}
}

func TestRenameKnowledgeAreaReportsTouchedCourses(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreateArea(t, svc, "ka-old", domain.BranchFundamental)
	mustCreateCourse(t, svc, "c1", "CS101", domain.CourseRequired, "ka-old")
	mustCreateCourse(t, svc, "c2", "CS102", domain.CourseRequired, "ka-old")

	touched, _, err := svc.RenameKnowledgeArea(ctx, "ka-old", "ka-new")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if touched != 2 {
		t.Fatalf("expected 2 touched courses, got %d", touched)
	}
	for _, c := range svc.Store().ListCourses() {
		if c.KnowledgeAreaID != "ka-new" {
			t.Fatalf("course not cascaded: %+v", c)
		}
	}
}

func TestCycleOutcomeLevelThroughService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreateArea(t, svc, "ka", domain.BranchFundamental)
	course := mustCreateCourse(t, svc, "c1", "CS101", domain.CourseRequired, "ka")
	outcome, _, err := svc.CreateStudentOutcome(ctx, domain.StudentOutcome{Number: 1, Code: "SO1"})
	if err != nil {
		t.Fatalf("create outcome: %v", err)
	}

	want := []domain.CoverageLevel{domain.LevelIntroduce, domain.LevelReinforce, domain.LevelMaster, domain.LevelNone}
	for _, expected := range want {
		level, _, err := svc.CycleOutcomeLevel(ctx, course.ID, outcome.ID)
		if err != nil {
			t.Fatalf("cycle: %v", err)
		}
		if level != expected {
			t.Fatalf("expected %q, got %q", expected, level)
		}
	}
	if links := svc.Store().CourseOutcomeLinks(); len(links) != 0 {
		t.Fatalf("full cycle must leave no stored link: %v", links)
	}
}

func TestAppendAndDeleteCLOKeepsMappingAligned(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreateArea(t, svc, "ka", domain.BranchFundamental)
	course := mustCreateCourse(t, svc, "c1", "CS101", domain.CourseRequired, "ka")

	for _, text := range []string{"first", "second", "third"} {
		if _, _, err := svc.AppendCLO(ctx, course.ID, domain.LanguageEN, text); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if _, err := svc.PutCLOMapping(ctx, course.ID, domain.CLOMapping{CLOIndex: 2, Coverage: domain.CLOCoverageHigh}); err != nil {
		t.Fatalf("put mapping: %v", err)
	}
	if _, err := svc.DeleteCLO(ctx, course.ID, 0); err != nil {
		t.Fatalf("delete clo: %v", err)
	}
	got, _ := svc.Store().GetCourse(course.ID)
	if len(got.CLOs.EN) != 2 || got.CLOs.EN[0] != "second" {
		t.Fatalf("row deletion wrong: %v", got.CLOs.EN)
	}
	if len(got.CLOMap) != 1 || got.CLOMap[0].CLOIndex != 1 {
		t.Fatalf("mapping index must shift down: %+v", got.CLOMap)
	}
}

func TestRulesEngineBlocksInconsistentState(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	store.ImportState(memory.Snapshot{
		CourseOutcomeLinks: []domain.CourseOutcomeLink{
			{CourseID: "ghost", OutcomeID: "so-ghost", Level: domain.LevelIntroduce},
		},
	})
	svc := NewService(store)

	_, err := svc.SetGeneralInfo(context.Background(), domain.GeneralInfo{DefaultCredits: 3})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if !violation.Result.HasBlocking() {
		t.Fatalf("expected blocking violations: %+v", violation.Result)
	}
	if got := store.GeneralInfo(); got.DefaultCredits != 0 {
		t.Fatalf("blocked transaction must not commit: %+v", got)
	}
}

func TestElectivePlacedInRootIsBlocked(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustCreateArea(t, svc, "ka", domain.BranchFundamental)
	course := mustCreateCourse(t, svc, "c1", "CS101", domain.CourseElective, "ka")

	_, err := svc.PlaceCourseInRoot(ctx, course.ID, domain.BranchFundamental)
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if len(svc.Store().Structure()[domain.BranchFundamental]) != 0 {
		t.Fatalf("blocked placement must not commit")
	}
}
