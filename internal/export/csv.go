package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"curricore/pkg/domain"
)

// catalogHeader is the fixed column order of the catalog CSV format.
var catalogHeader = []string{
	"ID", "Code", "Name_VI", "Name_EN", "Credits", "Semester",
	"Type", "Prerequisites", "Co-requisite", "Essential", "ABET", "AreaID",
}

// utf8BOM makes Excel detect the encoding of exported files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CatalogCSVInput is the snapshot the catalog exporter reads.
type CatalogCSVInput struct {
	Courses      []domain.Course
	Outcomes     []domain.StudentOutcome
	OutcomeLinks []domain.CourseOutcomeLink
}

// WriteCatalogCSV serializes the course catalog in the fixed column
// order, UTF-8 with BOM. Prerequisites and co-requisites are written as
// codes so the file survives internal id changes.
func WriteCatalogCSV(in CatalogCSVInput) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(catalogHeader); err != nil {
		return nil, err
	}
	for _, course := range in.Courses {
		essential := ""
		if course.Type == domain.CourseRequired {
			essential = "x"
		}
		record := []string{
			course.ID,
			course.Code,
			course.Name.VI,
			course.Name.EN,
			strconv.Itoa(course.Credits),
			strconv.Itoa(course.Semester),
			string(course.Type),
			ResolveCourseCodes(course.PrerequisiteIDs, in.Courses),
			ResolveCourseCodes(course.CoRequisiteIDs, in.Courses),
			essential,
			abetCell(course.ID, in.Outcomes, in.OutcomeLinks),
			course.KnowledgeAreaID,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// abetCell summarizes a course's outcome coverage as "label:level"
// pairs in outcome number order.
func abetCell(courseID string, outcomes []domain.StudentOutcome, links []domain.CourseOutcomeLink) string {
	levelByOutcome := make(map[string]domain.CoverageLevel)
	for _, link := range links {
		if link.CourseID == courseID && link.Level != domain.LevelNone {
			levelByOutcome[link.OutcomeID] = link.Level
		}
	}
	if len(levelByOutcome) == 0 {
		return ""
	}
	sorted := append([]domain.StudentOutcome(nil), outcomes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	var cells []string
	for _, so := range sorted {
		level, ok := levelByOutcome[so.ID]
		if !ok {
			continue
		}
		label := so.Code
		if label == "" {
			label = fmt.Sprintf("SO%d", so.Number)
		}
		cells = append(cells, label+":"+string(level))
	}
	return strings.Join(cells, ";")
}

// CatalogRow is one parsed line of a catalog CSV import. Prerequisite
// and co-requisite references stay as codes until the importer resolves
// them against the target catalog.
type CatalogRow struct {
	Code              string
	Name              domain.LocalizedText
	Credits           int
	Semester          int
	Type              domain.CourseType
	PrerequisiteCodes []string
	CoRequisiteCodes  []string
	KnowledgeAreaID   string
}

// CSVRowError rejects a whole import batch, pointing at the first
// malformed row.
type CSVRowError struct {
	Line   int
	Reason string
}

func (e CSVRowError) Error() string {
	return fmt.Sprintf("csv row %d: %s", e.Line, e.Reason)
}

// ParseCatalogCSV parses a catalog file exported by WriteCatalogCSV. A
// single malformed row fails the whole batch; a partially imported
// catalog is worse than a rejected file. The ID column is ignored on
// import so re-imports never silently overwrite existing courses.
func ParseCatalogCSV(data []byte) ([]CatalogRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(catalogHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, CSVRowError{Line: 0, Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, CSVRowError{Line: 0, Reason: "empty file"}
	}
	for i, col := range catalogHeader {
		if records[0][i] != col {
			return nil, CSVRowError{Line: 1, Reason: fmt.Sprintf("expected header column %q, got %q", col, records[0][i])}
		}
	}
	rows := make([]CatalogRow, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		row, err := parseCatalogRecord(record)
		if err != nil {
			return nil, CSVRowError{Line: line, Reason: err.Error()}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCatalogRecord(record []string) (CatalogRow, error) {
	code := strings.TrimSpace(record[1])
	if code == "" {
		return CatalogRow{}, fmt.Errorf("empty course code")
	}
	credits, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return CatalogRow{}, fmt.Errorf("invalid credits %q", record[4])
	}
	if credits < 0 {
		return CatalogRow{}, fmt.Errorf("negative credits")
	}
	semester := 0
	if s := strings.TrimSpace(record[5]); s != "" {
		semester, err = strconv.Atoi(s)
		if err != nil {
			return CatalogRow{}, fmt.Errorf("invalid semester %q", record[5])
		}
	}
	courseType, err := parseCourseType(record[6], record[9])
	if err != nil {
		return CatalogRow{}, err
	}
	return CatalogRow{
		Code:              code,
		Name:              domain.LocalizedText{VI: record[2], EN: record[3]},
		Credits:           credits,
		Semester:          semester,
		Type:              courseType,
		PrerequisiteCodes: splitCodes(record[7]),
		CoRequisiteCodes:  splitCodes(record[8]),
		KnowledgeAreaID:   strings.TrimSpace(record[11]),
	}, nil
}

// parseCourseType accepts the Type column, falling back to the
// Essential marker for files written by older tooling.
func parseCourseType(typeCell, essentialCell string) (domain.CourseType, error) {
	switch t := domain.CourseType(strings.TrimSpace(typeCell)); t {
	case domain.CourseRequired, domain.CourseSelectedElective, domain.CourseElective:
		return t, nil
	case "":
		if strings.TrimSpace(essentialCell) != "" {
			return domain.CourseRequired, nil
		}
		return domain.CourseElective, nil
	default:
		return "", fmt.Errorf("unknown course type %q", typeCell)
	}
}

func splitCodes(cell string) []string {
	var codes []string
	for _, part := range strings.Split(cell, ";") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
