package matrix

import (
	"fmt"
	"testing"

	"curricore/pkg/domain"
)

func TestOutcomeCoverageSkipsEmptyLevels(t *testing.T) {
	links := []domain.CourseOutcomeLink{
		{CourseID: "c1", OutcomeID: "so1", Level: domain.LevelIntroduce},
		{CourseID: "c1", OutcomeID: "so2", Level: domain.LevelNone},
	}
	cov := OutcomeCoverage(links)
	if len(cov) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(cov))
	}
	if cov[CourseOutcome{CourseID: "c1", OutcomeID: "so1"}] != domain.LevelIntroduce {
		t.Fatal("expected I level for c1/so1")
	}
}

func TestOutcomeCoverageStatsLimitedToSubset(t *testing.T) {
	courses := []domain.Course{
		{Base: domain.Base{ID: "c1"}, Credits: 3},
		{Base: domain.Base{ID: "c2"}, Credits: 4},
	}
	links := []domain.CourseOutcomeLink{
		{CourseID: "c1", OutcomeID: "so1", Level: domain.LevelIntroduce},
		{CourseID: "c2", OutcomeID: "so1", Level: domain.LevelMaster},
		{CourseID: "c3", OutcomeID: "so1", Level: domain.LevelMaster}, // outside subset
	}
	stats := OutcomeCoverageStats(courses, links)
	if stats["so1"].Courses != 2 || stats["so1"].Credits != 7 {
		t.Fatalf("unexpected stats: %+v", stats["so1"])
	}
}

func TestCreditsBySemesterInjectsBlockMinCredits(t *testing.T) {
	sem2 := 2
	courses := []domain.Course{
		{Base: domain.Base{ID: "c1"}, Credits: 3, Semester: 1},
		{Base: domain.Base{ID: "e1"}, Credits: 3, Semester: 2},
		{Base: domain.Base{ID: "e2"}, Credits: 3, Semester: 2},
	}
	blocks := []domain.ProgramBlock{{
		Base:              domain.Base{ID: "b1"},
		Type:              domain.BlockElective,
		MinCredits:        3,
		CourseIDs:         []string{"e1", "e2"},
		PreferredSemester: &sem2,
	}}

	got := CreditsBySemester(courses, blocks)
	if got[1] != 3 {
		t.Fatalf("semester 1 expected 3, got %d", got[1])
	}
	// Pool members are excluded; only the block minimum counts.
	if got[2] != 3 {
		t.Fatalf("semester 2 expected 3, got %d", got[2])
	}
	if TotalCredits(courses, blocks) != 6 {
		t.Fatalf("total expected 6, got %d", TotalCredits(courses, blocks))
	}
}

func TestCreditsBySemesterEmptyBlockContributesNothing(t *testing.T) {
	blocks := []domain.ProgramBlock{{
		Base:       domain.Base{ID: "b1"},
		Type:       domain.BlockElective,
		MinCredits: 6,
	}}
	if total := TotalCredits(nil, blocks); total != 0 {
		t.Fatalf("empty block must not inject credits, got %d", total)
	}
}

func TestObjectiveLabelsFollowCategoryThenCreationOrder(t *testing.T) {
	objectives := []domain.MoetObjective{
		{Base: domain.Base{ID: "s1"}, Category: domain.CategorySkills, Seq: 0},
		{Base: domain.Base{ID: "k2"}, Category: domain.CategoryKnowledge, Seq: 5},
		{Base: domain.Base{ID: "k1"}, Category: domain.CategoryKnowledge, Seq: 1},
		{Base: domain.Base{ID: "l1"}, Category: domain.CategoryLearning, Seq: 2},
	}
	labels := ObjectiveLabels(objectives)
	want := map[string]string{"k1": "A", "k2": "B", "s1": "C", "l1": "D"}
	for id, label := range want {
		if labels[id] != label {
			t.Fatalf("objective %s: expected %q, got %q", id, label, labels[id])
		}
	}
}

func TestObjectiveLabelsWrapAfterTwentySix(t *testing.T) {
	var objectives []domain.MoetObjective
	for i := 0; i < 28; i++ {
		objectives = append(objectives, domain.MoetObjective{
			Base:     domain.Base{ID: fmt.Sprintf("o%02d", i)},
			Category: domain.CategoryKnowledge,
			Seq:      i,
		})
	}
	labels := ObjectiveLabels(objectives)
	if labels["o00"] != "A" || labels["o25"] != "Z" {
		t.Fatalf("first round wrong: %q %q", labels["o00"], labels["o25"])
	}
	if labels["o26"] != "A1" || labels["o27"] != "B1" {
		t.Fatalf("wrap wrong: %q %q", labels["o26"], labels["o27"])
	}
	seen := map[string]bool{}
	for _, label := range labels {
		if seen[label] {
			t.Fatalf("duplicate label %q", label)
		}
		seen[label] = true
	}
}

func TestObjectiveLinkStatePrecedence(t *testing.T) {
	courses := []domain.Course{{
		Base: domain.Base{ID: "c1"},
		CLOMap: []domain.CLOMapping{
			{CLOIndex: 0, ObjectiveIDs: []string{"obj1", "obj2"}},
		},
	}}
	objectives := []domain.MoetObjective{
		{Base: domain.Base{ID: "obj1"}, OutcomeIDs: []string{"so1"}},
		{Base: domain.Base{ID: "obj2"}},
		{Base: domain.Base{ID: "obj3"}, OutcomeIDs: []string{"so1"}},
	}
	outcomeLinks := []domain.CourseOutcomeLink{
		{CourseID: "c1", OutcomeID: "so1", Level: domain.LevelReinforce},
	}
	manual := []domain.CourseObjectiveLink{
		{CourseID: "c1", ObjectiveID: "obj1"},
	}

	states := ObjectiveLinkStates(courses, objectives, outcomeLinks, manual)
	if states[CourseObjective{"c1", "obj1"}] != LinkManual {
		t.Fatal("manual must win over both implied sources")
	}
	if states[CourseObjective{"c1", "obj2"}] != LinkSyllabusImplied {
		t.Fatal("expected syllabus-implied for obj2")
	}
	if states[CourseObjective{"c1", "obj3"}] != LinkOutcomeImplied {
		t.Fatal("expected outcome-implied for obj3")
	}
}
