package export

import (
	"fmt"
	"strconv"
	"strings"

	"curricore/internal/matrix"
	"curricore/pkg/domain"
)

// SyllabusInput is the read-only snapshot the syllabus builder consumes.
// The builder never mutates any of these slices or structs.
type SyllabusInput struct {
	Course            domain.Course
	Index             int // position of the course in the rendered catalog, 1-based
	Language          domain.Language
	Dialect           domain.Dialect
	GeneralInfo       domain.GeneralInfo
	Courses           []domain.Course // full catalog, for prerequisite code resolution
	Faculties         []domain.FacultyMember
	StudentOutcomes   []domain.StudentOutcome
	Objectives        []domain.MoetObjective
	Departments       []domain.Department
	AcademicFaculties []domain.AcademicFaculty
	Schools           []domain.School
	TeachingMethods   []domain.TeachingMethod
	AssessmentMethods []domain.AssessmentMethod
	LibraryResources  []domain.LibraryResource
}

// syllabusLabels carries the section strings for one language.
type syllabusLabels struct {
	title         string
	generalInfo   string
	description   string
	outcomes      string
	schedule      string
	assessment    string
	alignment     string
	textbooks     string
	code          string
	name          string
	credits       string
	semester      string
	department    string
	prerequisites string
	corequisites  string
	instructors   string
	topicNo       string
	topic         string
	hours         string
	readings      string
	component     string
	method        string
	weight        string
	none          string
}

var labelsByLanguage = map[domain.Language]syllabusLabels{
	domain.LanguageEN: {
		title:         "COURSE SYLLABUS",
		generalInfo:   "1. General information",
		description:   "2. Course description",
		outcomes:      "3. Course learning outcomes",
		schedule:      "4. Topics and schedule",
		assessment:    "5. Assessment plan",
		alignment:     "6. Outcome alignment matrix",
		textbooks:     "7. Textbooks",
		code:          "Course code",
		name:          "Course name",
		credits:       "Credits",
		semester:      "Semester",
		department:    "Managing unit",
		prerequisites: "Prerequisites",
		corequisites:  "Co-requisites",
		instructors:   "Lecturers",
		topicNo:       "No.",
		topic:         "Topic",
		hours:         "Hours",
		readings:      "Readings",
		component:     "Component",
		method:        "Method",
		weight:        "Weight",
		none:          "None",
	},
	domain.LanguageVI: {
		title:         "ĐỀ CƯƠNG HỌC PHẦN",
		generalInfo:   "1. Thông tin chung",
		description:   "2. Mô tả học phần",
		outcomes:      "3. Chuẩn đầu ra học phần",
		schedule:      "4. Nội dung và kế hoạch giảng dạy",
		assessment:    "5. Kế hoạch đánh giá",
		alignment:     "6. Ma trận chuẩn đầu ra",
		textbooks:     "7. Giáo trình",
		code:          "Mã học phần",
		name:          "Tên học phần",
		credits:       "Số tín chỉ",
		semester:      "Học kỳ",
		department:    "Đơn vị phụ trách",
		prerequisites: "Học phần tiên quyết",
		corequisites:  "Học phần song hành",
		instructors:   "Giảng viên",
		topicNo:       "TT",
		topic:         "Nội dung",
		hours:         "Số giờ",
		readings:      "Tài liệu",
		component:     "Thành phần",
		method:        "Hình thức",
		weight:        "Trọng số",
		none:          "Không",
	},
}

// BuildSyllabus projects one course into a document in the requested
// language and accreditation dialect.
func BuildSyllabus(in SyllabusInput) Document {
	lang := in.Language
	if lang == "" {
		lang = domain.LanguageVI
	}
	labels, ok := labelsByLanguage[lang]
	if !ok {
		labels = labelsByLanguage[domain.LanguageVI]
	}
	course := in.Course

	doc := Document{Title: fmt.Sprintf("%s %s", course.Code, course.Name.In(lang))}
	doc.paragraph(StyleTitle, labels.title)
	if program := in.GeneralInfo.ProgramName.In(lang); program != "" {
		doc.paragraph(StyleBody, program)
	}

	doc.paragraph(StyleHeading, labels.generalInfo)
	doc.table(nil, generalInfoRows(in, labels, lang))

	doc.paragraph(StyleHeading, labels.description)
	description := course.Description.In(lang)
	if description == "" {
		description = labels.none
	}
	doc.paragraph(StyleBody, description)

	doc.paragraph(StyleHeading, labels.outcomes)
	doc.table([]string{labels.topicNo, labels.outcomes}, cloRows(course, lang))

	doc.paragraph(StyleHeading, labels.schedule)
	doc.table(
		[]string{labels.topicNo, labels.topic, labels.hours, labels.readings},
		topicRows(course, in.LibraryResources, lang, in.TeachingMethods),
	)

	doc.paragraph(StyleHeading, labels.assessment)
	doc.table([]string{labels.component, labels.method, labels.weight}, assessmentRows(course, in.AssessmentMethods, lang))

	doc.paragraph(StyleHeading, labels.alignment)
	if in.Dialect == domain.DialectMOET {
		header, rows := moetAlignment(course, in.Objectives)
		doc.table(header, rows)
	} else {
		header, rows := abetAlignment(course, in.StudentOutcomes)
		doc.table(header, rows)
	}

	doc.paragraph(StyleHeading, labels.textbooks)
	for _, tb := range course.Textbooks {
		doc.paragraph(StyleBody, formatTextbook(tb))
	}
	if len(course.Textbooks) == 0 {
		doc.paragraph(StyleBody, labels.none)
	}

	return doc
}

func generalInfoRows(in SyllabusInput, labels syllabusLabels, lang domain.Language) [][]string {
	course := in.Course
	rows := [][]string{
		{labels.code, course.Code},
		{labels.name, course.Name.In(lang)},
		{labels.credits, strconv.Itoa(course.Credits)},
		{labels.semester, strconv.Itoa(course.Semester)},
	}
	if unit := managingUnit(course, in, lang); unit != "" {
		rows = append(rows, []string{labels.department, unit})
	}
	rows = append(rows,
		[]string{labels.prerequisites, orNone(ResolveCourseCodes(course.PrerequisiteIDs, in.Courses), labels.none)},
		[]string{labels.corequisites, orNone(ResolveCourseCodes(course.CoRequisiteIDs, in.Courses), labels.none)},
	)
	if instructors := instructorNames(course, in.Faculties); instructors != "" {
		rows = append(rows, []string{labels.instructors, instructors})
	}
	return rows
}

// managingUnit walks department -> academic faculty -> school and joins
// whatever levels resolve.
func managingUnit(course domain.Course, in SyllabusInput, lang domain.Language) string {
	if course.DepartmentID == nil {
		return ""
	}
	var parts []string
	var facultyID *string
	for _, dept := range in.Departments {
		if dept.ID == *course.DepartmentID {
			parts = append(parts, dept.Name.In(lang))
			facultyID = dept.AcademicFacultyID
			break
		}
	}
	var schoolID *string
	if facultyID != nil {
		for _, fac := range in.AcademicFaculties {
			if fac.ID == *facultyID {
				parts = append(parts, fac.Name.In(lang))
				schoolID = fac.SchoolID
				break
			}
		}
	}
	if schoolID != nil {
		for _, school := range in.Schools {
			if school.ID == *schoolID {
				parts = append(parts, school.Name.In(lang))
				break
			}
		}
	}
	return strings.Join(parts, ", ")
}

// ResolveCourseCodes maps course ids to display codes against the full
// catalog. Unknown ids are kept verbatim so a dangling reference stays
// visible in the output instead of silently disappearing.
func ResolveCourseCodes(ids []string, courses []domain.Course) string {
	if len(ids) == 0 {
		return ""
	}
	byID := make(map[string]string, len(courses))
	for _, c := range courses {
		byID[c.ID] = c.Code
	}
	codes := make([]string, 0, len(ids))
	for _, id := range ids {
		if code, ok := byID[id]; ok && code != "" {
			codes = append(codes, code)
			continue
		}
		codes = append(codes, id)
	}
	return strings.Join(codes, "; ")
}

// instructorNames lists faculty in course order with the main lecturer first.
func instructorNames(course domain.Course, faculties []domain.FacultyMember) string {
	if len(course.InstructorIDs) == 0 {
		return ""
	}
	byID := make(map[string]domain.FacultyMember, len(faculties))
	for _, f := range faculties {
		byID[f.ID] = f
	}
	ordered := make([]string, 0, len(course.InstructorIDs))
	var main string
	for _, id := range course.InstructorIDs {
		f, ok := byID[id]
		if !ok {
			continue
		}
		name := f.Name
		if f.Title != "" {
			name = f.Title + " " + f.Name
		}
		if detail, ok := course.InstructorDetails[id]; ok && detail.IsMain && main == "" {
			main = name
			continue
		}
		ordered = append(ordered, name)
	}
	if main != "" {
		ordered = append([]string{main}, ordered...)
	}
	return strings.Join(ordered, "; ")
}

func cloRows(course domain.Course, lang domain.Language) [][]string {
	texts := course.CLOs.VI
	if lang == domain.LanguageEN {
		texts = course.CLOs.EN
	}
	rows := make([][]string, 0, len(texts))
	for i, text := range texts {
		rows = append(rows, []string{cloLabel(i), text})
	}
	return rows
}

// cloLabel renders the 1-based CLO display label.
func cloLabel(index int) string { return fmt.Sprintf("CLO%d", index+1) }

func topicRows(course domain.Course, resources []domain.LibraryResource, lang domain.Language, methods []domain.TeachingMethod) [][]string {
	methodByID := make(map[string]domain.TeachingMethod, len(methods))
	for _, m := range methods {
		methodByID[m.ID] = m
	}
	resourceByID := make(map[string]domain.LibraryResource, len(resources))
	for _, r := range resources {
		resourceByID[r.ID] = r
	}
	rows := make([][]string, 0, len(course.Topics))
	for _, topic := range course.Topics {
		var hours []string
		for _, act := range topic.Activities {
			label := act.MethodID
			if m, ok := methodByID[act.MethodID]; ok {
				label = m.Code
			}
			hours = append(hours, fmt.Sprintf("%s: %g", label, act.Hours))
		}
		var readings []string
		for _, ref := range topic.ReadingRefs {
			label := ref.ResourceID
			if r, ok := resourceByID[ref.ResourceID]; ok {
				label = r.Title
			}
			if ref.PageRange != "" {
				label = label + " (" + ref.PageRange + ")"
			}
			readings = append(readings, label)
		}
		rows = append(rows, []string{
			strconv.Itoa(topic.No),
			topic.Topic,
			strings.Join(hours, "; "),
			strings.Join(readings, "; "),
		})
	}
	return rows
}

func assessmentRows(course domain.Course, methods []domain.AssessmentMethod, lang domain.Language) [][]string {
	methodByID := make(map[string]domain.AssessmentMethod, len(methods))
	for _, m := range methods {
		methodByID[m.ID] = m
	}
	rows := make([][]string, 0, len(course.AssessmentPlan))
	for _, item := range course.AssessmentPlan {
		method := item.MethodID
		if m, ok := methodByID[item.MethodID]; ok {
			method = m.Name.In(lang)
		}
		rows = append(rows, []string{item.Name, method, fmt.Sprintf("%g%%", item.Weight)})
	}
	return rows
}

// abetAlignment emits the CLO x student-outcome matrix with the CLO's
// coverage grade in each mapped cell.
func abetAlignment(course domain.Course, outcomes []domain.StudentOutcome) ([]string, [][]string) {
	header := []string{""}
	for _, so := range outcomes {
		label := so.Code
		if label == "" {
			label = fmt.Sprintf("SO%d", so.Number)
		}
		header = append(header, label)
	}
	mappingByIndex := make(map[int]domain.CLOMapping, len(course.CLOMap))
	for _, m := range course.CLOMap {
		mappingByIndex[m.CLOIndex] = m
	}
	rows := make([][]string, 0, course.CLOs.Max())
	for i := 0; i < course.CLOs.Max(); i++ {
		row := []string{cloLabel(i)}
		mapping, mapped := mappingByIndex[i]
		for _, so := range outcomes {
			cell := ""
			if mapped && containsID(mapping.OutcomeIDs, so.ID) {
				cell = string(mapping.Coverage)
				if cell == "" {
					cell = "x"
				}
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return header, rows
}

// moetAlignment emits the CLO x objective matrix using derived letter labels.
func moetAlignment(course domain.Course, objectives []domain.MoetObjective) ([]string, [][]string) {
	sorted := matrix.SortObjectives(objectives)
	labels := matrix.ObjectiveLabels(objectives)
	header := []string{""}
	for _, obj := range sorted {
		header = append(header, labels[obj.ID])
	}
	mappingByIndex := make(map[int]domain.CLOMapping, len(course.CLOMap))
	for _, m := range course.CLOMap {
		mappingByIndex[m.CLOIndex] = m
	}
	rows := make([][]string, 0, course.CLOs.Max())
	for i := 0; i < course.CLOs.Max(); i++ {
		row := []string{cloLabel(i)}
		mapping, mapped := mappingByIndex[i]
		for _, obj := range sorted {
			cell := ""
			if mapped && containsID(mapping.ObjectiveIDs, obj.ID) {
				cell = "x"
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return header, rows
}

func formatTextbook(tb domain.Textbook) string {
	parts := make([]string, 0, 4)
	if tb.Authors != "" {
		parts = append(parts, tb.Authors)
	}
	parts = append(parts, tb.Title)
	if tb.Publisher != "" {
		parts = append(parts, tb.Publisher)
	}
	if tb.Year != 0 {
		parts = append(parts, strconv.Itoa(tb.Year))
	}
	return strings.Join(parts, ", ")
}

func orNone(s, none string) string {
	if s == "" {
		return none
	}
	return s
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
