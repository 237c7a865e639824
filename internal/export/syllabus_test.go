package export

import (
	"reflect"
	"testing"

	"curricore/pkg/domain"
)

func fixtureCourse() domain.Course {
	return domain.Course{
		Base:            domain.Base{ID: "c-algo"},
		Code:            "CS201",
		Name:            domain.LocalizedText{VI: "Cấu trúc dữ liệu", EN: "Data Structures"},
		Credits:         3,
		Type:            domain.CourseRequired,
		Semester:        3,
		PrerequisiteIDs: []string{"c-intro"},
		Description:     domain.LocalizedText{EN: "Core data structures and algorithm analysis."},
		CLOs: domain.CLOSet{
			VI: []string{"Cài đặt các cấu trúc dữ liệu cơ bản", "Phân tích độ phức tạp"},
			EN: []string{"Implement fundamental data structures", "Analyze complexity"},
		},
		CLOMap: []domain.CLOMapping{
			{CLOIndex: 0, OutcomeIDs: []string{"so-1"}, Coverage: domain.CLOCoverageHigh},
			{CLOIndex: 1, ObjectiveIDs: []string{"obj-k1"}},
		},
		Topics: []domain.CourseTopic{
			{ID: "t1", No: 1, Topic: "Lists and trees", Activities: []domain.TopicActivity{{MethodID: "tm-lec", Hours: 6}}},
		},
		AssessmentPlan: []domain.AssessmentItem{
			{ID: "a1", MethodID: "am-exam", Name: "Final exam", Weight: 60},
		},
		Textbooks: []domain.Textbook{{Title: "Introduction to Algorithms", Authors: "Cormen et al.", Year: 2009}},
	}
}

func fixtureInput(dialect domain.Dialect) SyllabusInput {
	return SyllabusInput{
		Course:   fixtureCourse(),
		Index:    2,
		Language: domain.LanguageEN,
		Dialect:  dialect,
		Courses: []domain.Course{
			{Base: domain.Base{ID: "c-intro"}, Code: "CS101"},
			fixtureCourse(),
		},
		StudentOutcomes: []domain.StudentOutcome{
			{Base: domain.Base{ID: "so-1"}, Number: 1, Code: "SO1"},
			{Base: domain.Base{ID: "so-2"}, Number: 2, Code: "SO2"},
		},
		Objectives: []domain.MoetObjective{
			{Base: domain.Base{ID: "obj-k1"}, Seq: 0, Category: domain.CategoryKnowledge, Description: "foundations"},
			{Base: domain.Base{ID: "obj-s1"}, Seq: 1, Category: domain.CategorySkills, Description: "practice"},
		},
		TeachingMethods:   []domain.TeachingMethod{{Base: domain.Base{ID: "tm-lec"}, Code: "LEC"}},
		AssessmentMethods: []domain.AssessmentMethod{{Base: domain.Base{ID: "am-exam"}, Name: domain.LocalizedText{EN: "Written exam"}}},
	}
}

func findTableAfterHeading(t *testing.T, doc Document, heading string) Table {
	t.Helper()
	for i, block := range doc.Blocks {
		if block.Kind == BlockParagraph && block.Paragraph.Text == heading {
			for _, next := range doc.Blocks[i+1:] {
				if next.Kind == BlockTable {
					return *next.Table
				}
			}
		}
	}
	t.Fatalf("no table after heading %q", heading)
	return Table{}
}

func TestBuildSyllabusAbetAlignment(t *testing.T) {
	doc := BuildSyllabus(fixtureInput(domain.DialectABET))
	table := findTableAfterHeading(t, doc, "6. Outcome alignment matrix")
	if !reflect.DeepEqual(table.Header, []string{"", "SO1", "SO2"}) {
		t.Fatalf("unexpected header %v", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected one row per CLO, got %v", table.Rows)
	}
	if table.Rows[0][1] != "H" || table.Rows[0][2] != "" {
		t.Fatalf("unexpected CLO1 row %v", table.Rows[0])
	}
	if table.Rows[1][1] != "" {
		t.Fatalf("CLO2 should not map any outcome: %v", table.Rows[1])
	}
}

func TestBuildSyllabusMoetAlignmentUsesDerivedLabels(t *testing.T) {
	doc := BuildSyllabus(fixtureInput(domain.DialectMOET))
	table := findTableAfterHeading(t, doc, "6. Outcome alignment matrix")
	if !reflect.DeepEqual(table.Header, []string{"", "A", "B"}) {
		t.Fatalf("unexpected header %v", table.Header)
	}
	if table.Rows[1][1] != "x" {
		t.Fatalf("CLO2 should map objective A: %v", table.Rows[1])
	}
	if table.Rows[0][1] != "" || table.Rows[0][2] != "" {
		t.Fatalf("CLO1 should map no objective: %v", table.Rows[0])
	}
}

func TestBuildSyllabusResolvesPrerequisiteCodes(t *testing.T) {
	doc := BuildSyllabus(fixtureInput(domain.DialectABET))
	table := findTableAfterHeading(t, doc, "1. General information")
	found := false
	for _, row := range table.Rows {
		if row[0] == "Prerequisites" {
			found = true
			if row[1] != "CS101" {
				t.Fatalf("expected prerequisite code CS101, got %q", row[1])
			}
		}
	}
	if !found {
		t.Fatalf("no prerequisites row in %v", table.Rows)
	}
}

func TestBuildSyllabusDoesNotMutateInput(t *testing.T) {
	in := fixtureInput(domain.DialectMOET)
	before := fixtureInput(domain.DialectMOET)
	_ = BuildSyllabus(in)
	if !reflect.DeepEqual(in, before) {
		t.Fatalf("builder mutated its input")
	}
}

func TestBuildSyllabusVietnameseFallsBackAcrossLanguages(t *testing.T) {
	in := fixtureInput(domain.DialectABET)
	in.Language = domain.LanguageVI
	doc := BuildSyllabus(in)
	if doc.Blocks[0].Paragraph.Text != "ĐỀ CƯƠNG HỌC PHẦN" {
		t.Fatalf("expected Vietnamese title, got %q", doc.Blocks[0].Paragraph.Text)
	}
	table := findTableAfterHeading(t, doc, "3. Chuẩn đầu ra học phần")
	if len(table.Rows) != 2 || table.Rows[0][1] != "Cài đặt các cấu trúc dữ liệu cơ bản" {
		t.Fatalf("unexpected CLO rows %v", table.Rows)
	}
}
