package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"curricore/pkg/domain"
)

func catalogFixture() CatalogCSVInput {
	return CatalogCSVInput{
		Courses: []domain.Course{
			{
				Base:            domain.Base{ID: "c1"},
				Code:            "CS101",
				Name:            domain.LocalizedText{VI: "Nhập môn lập trình", EN: "Intro to Programming"},
				Credits:         3,
				Semester:        1,
				Type:            domain.CourseRequired,
				KnowledgeAreaID: "ka-cs",
			},
			{
				Base:            domain.Base{ID: "c2"},
				Code:            "CS201",
				Name:            domain.LocalizedText{VI: "Cấu trúc dữ liệu, giải thuật", EN: "Data Structures"},
				Credits:         4,
				Semester:        3,
				Type:            domain.CourseElective,
				KnowledgeAreaID: "ka-cs",
				PrerequisiteIDs: []string{"c1"},
			},
		},
		Outcomes: []domain.StudentOutcome{
			{Base: domain.Base{ID: "so-1"}, Number: 1, Code: "SO1"},
		},
		OutcomeLinks: []domain.CourseOutcomeLink{
			{CourseID: "c1", OutcomeID: "so-1", Level: domain.LevelIntroduce},
		},
	}
}

func TestWriteCatalogCSVStartsWithBOM(t *testing.T) {
	data, err := WriteCatalogCSV(catalogFixture())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Fatalf("missing UTF-8 BOM")
	}
	header := strings.SplitN(string(bytes.TrimPrefix(data, utf8BOM)), "\n", 2)[0]
	if strings.TrimSpace(header) != strings.Join(catalogHeader, ",") {
		t.Fatalf("unexpected header %q", header)
	}
}

func TestCatalogCSVRoundTrip(t *testing.T) {
	data, err := WriteCatalogCSV(catalogFixture())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := ParseCatalogCSV(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Code != "CS101" || rows[0].Type != domain.CourseRequired || rows[0].KnowledgeAreaID != "ka-cs" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Name.VI != "Cấu trúc dữ liệu, giải thuật" {
		t.Fatalf("comma-containing name lost: %+v", rows[1])
	}
	if len(rows[1].PrerequisiteCodes) != 1 || rows[1].PrerequisiteCodes[0] != "CS101" {
		t.Fatalf("prerequisite codes not round-tripped: %+v", rows[1])
	}
}

func TestParseCatalogCSVRejectsWholeBatchOnMalformedRow(t *testing.T) {
	lines := []string{
		strings.Join(catalogHeader, ","),
		"id1,CS101,A,A,3,1,required,,,x,,",
		"id2,CS102,B,B,three,1,required,,,x,,",
	}
	_, err := ParseCatalogCSV([]byte(strings.Join(lines, "\n")))
	var rowErr CSVRowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("expected CSVRowError, got %v", err)
	}
	if rowErr.Line != 3 {
		t.Fatalf("expected failure at line 3, got %d", rowErr.Line)
	}
}

func TestParseCatalogCSVRejectsEmptyCode(t *testing.T) {
	lines := []string{
		strings.Join(catalogHeader, ","),
		"id1,,A,A,3,1,required,,,x,,",
	}
	if _, err := ParseCatalogCSV([]byte(strings.Join(lines, "\n"))); err == nil {
		t.Fatalf("expected empty code to be rejected")
	}
}

func TestParseCatalogCSVRejectsWrongHeader(t *testing.T) {
	if _, err := ParseCatalogCSV([]byte("Code,Name\nCS101,A")); err == nil {
		t.Fatalf("expected header mismatch to be rejected")
	}
}

func TestParseCourseTypeFallsBackToEssentialMarker(t *testing.T) {
	got, err := parseCourseType("", "x")
	if err != nil || got != domain.CourseRequired {
		t.Fatalf("essential marker: got %v %v", got, err)
	}
	got, err = parseCourseType("", "")
	if err != nil || got != domain.CourseElective {
		t.Fatalf("blank type: got %v %v", got, err)
	}
	if _, err := parseCourseType("optional", ""); err == nil {
		t.Fatalf("expected unknown type to be rejected")
	}
}

func TestAbetCellOrderedByOutcomeNumber(t *testing.T) {
	outcomes := []domain.StudentOutcome{
		{Base: domain.Base{ID: "so-2"}, Number: 2, Code: "SO2"},
		{Base: domain.Base{ID: "so-1"}, Number: 1, Code: "SO1"},
	}
	links := []domain.CourseOutcomeLink{
		{CourseID: "c1", OutcomeID: "so-2", Level: domain.LevelMaster},
		{CourseID: "c1", OutcomeID: "so-1", Level: domain.LevelIntroduce},
	}
	if got := abetCell("c1", outcomes, links); got != "SO1:I;SO2:M" {
		t.Fatalf("unexpected cell %q", got)
	}
}
