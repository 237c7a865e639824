// Package domain defines the curriculum entities, value types, and rule
// evaluation primitives used by curricore.
package domain

import "time"

// EntityType identifies the type of record stored in the program state.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityKnowledgeArea identifies a knowledge-area classification record.
	EntityKnowledgeArea EntityType = "knowledge_area"
	// EntityStudentOutcome identifies a student/program outcome record.
	EntityStudentOutcome EntityType = "student_outcome"
	// EntityPEO identifies a program educational objective record.
	EntityPEO EntityType = "peo"
	// EntityMissionConstituent identifies a mission constituent record.
	EntityMissionConstituent EntityType = "mission_constituent"
	// EntityCourse identifies a course record.
	EntityCourse EntityType = "course"
	// EntityProgramBlock identifies a program-structure sub-block record.
	EntityProgramBlock EntityType = "program_block"
	// EntityObjective identifies a MOET objective record.
	EntityObjective EntityType = "objective"
	// EntityFacultyMember identifies a teaching-staff profile record.
	EntityFacultyMember EntityType = "faculty_member"
	// EntityDepartment identifies an administrative department record.
	EntityDepartment EntityType = "department"
	// EntityAcademicFaculty identifies an academic faculty record.
	EntityAcademicFaculty EntityType = "academic_faculty"
	// EntitySchool identifies a school record.
	EntitySchool EntityType = "school"
	// EntityTeachingMethod identifies a teaching-method record.
	EntityTeachingMethod EntityType = "teaching_method"
	// EntityAssessmentMethod identifies an assessment-method record.
	EntityAssessmentMethod EntityType = "assessment_method"
	// EntityLibraryResource identifies a library resource record.
	EntityLibraryResource EntityType = "library_resource"
)

// CourseType classifies a course within the program structure.
type CourseType string

// Canonical course classifications. A course's type and its structural
// location must always agree: required courses live in a root structure
// list, elective courses live in exactly one elective sub-block.
const (
	CourseRequired         CourseType = "required"
	CourseSelectedElective CourseType = "selected_elective"
	CourseElective         CourseType = "elective"
)

// IsElective reports whether the type places the course in an elective block.
func (t CourseType) IsElective() bool {
	return t == CourseSelectedElective || t == CourseElective
}

// CoverageLevel grades how strongly a course addresses a student outcome.
type CoverageLevel string

// Introduce/Reinforce/Master levels. Absence of a link row means "none";
// an empty level is never persisted.
const (
	LevelIntroduce CoverageLevel = "I"
	LevelReinforce CoverageLevel = "R"
	LevelMaster    CoverageLevel = "M"
	LevelNone      CoverageLevel = ""
)

// NextCoverageLevel returns the successor in the I -> R -> M -> none cycle.
func NextCoverageLevel(level CoverageLevel) CoverageLevel {
	switch level {
	case LevelNone:
		return LevelIntroduce
	case LevelIntroduce:
		return LevelReinforce
	case LevelReinforce:
		return LevelMaster
	default:
		return LevelNone
	}
}

// CLOCoverage grades how strongly a CLO covers its mapped outcomes.
type CLOCoverage string

// CLO coverage levels; absence of a mapping entry means "none".
const (
	CLOCoverageNone   CLOCoverage = ""
	CLOCoverageLow    CLOCoverage = "L"
	CLOCoverageMedium CLOCoverage = "M"
	CLOCoverageHigh   CLOCoverage = "H"
)

// ObjectiveCategory partitions MOET objectives for positional labelling.
type ObjectiveCategory string

// Fixed objective categories in display order.
const (
	CategoryKnowledge ObjectiveCategory = "knowledge"
	CategorySkills    ObjectiveCategory = "skills"
	CategoryLearning  ObjectiveCategory = "learning"
)

// CategoryOrder returns the fixed sort order used for label derivation.
func CategoryOrder() []ObjectiveCategory {
	return []ObjectiveCategory{CategoryKnowledge, CategorySkills, CategoryLearning}
}

// CategoryRank maps a category to its position in CategoryOrder.
// Unknown categories sort last.
func CategoryRank(category ObjectiveCategory) int {
	for i, c := range CategoryOrder() {
		if c == category {
			return i
		}
	}
	return len(CategoryOrder())
}

// BlockParent identifies a root list of the program structure.
type BlockParent string

// Program-structure branches. Every course sits in exactly one root list
// or one sub-block under one of these branches.
const (
	BranchGeneral     BlockParent = "gen"
	BranchPhysical    BlockParent = "phys"
	BranchFundamental BlockParent = "fund"
	BranchSpecialized BlockParent = "spec"
	BranchGraduation  BlockParent = "grad"
)

// BranchOrder returns all structure branches in display order.
func BranchOrder() []BlockParent {
	return []BlockParent{BranchGeneral, BranchPhysical, BranchFundamental, BranchSpecialized, BranchGraduation}
}

// BlockType distinguishes compulsory from elective sub-blocks.
type BlockType string

// Sub-block kinds.
const (
	BlockCompulsory BlockType = "compulsory"
	BlockElective   BlockType = "elective"
)

// Language selects one side of a localized text pair.
type Language string

// Supported authoring languages.
const (
	LanguageVI Language = "vi"
	LanguageEN Language = "en"
)

// Dialect selects an accreditation reporting format.
type Dialect string

// Supported export dialects.
const (
	DialectABET Dialect = "ABET"
	DialectMOET Dialect = "MOET"
)

// LocalizedText carries a Vietnamese/English text pair.
type LocalizedText struct {
	VI string `json:"vi"`
	EN string `json:"en"`
}

// In returns the text for the requested language, falling back to the
// other language when the requested side is empty.
func (t LocalizedText) In(lang Language) string {
	if lang == LanguageEN {
		if t.EN != "" {
			return t.EN
		}
		return t.VI
	}
	if t.VI != "" {
		return t.VI
	}
	return t.EN
}

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeArea classifies courses and anchors them to a structure branch.
type KnowledgeArea struct {
	Base
	Name   LocalizedText `json:"name"`
	Color  string        `json:"color"`
	Branch BlockParent   `json:"branch"`
}

// PerformanceIndicator is owned by its student outcome and has no
// independent lifecycle.
type PerformanceIndicator struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// StudentOutcome is an ABET-style student/program outcome with nested
// performance indicators.
type StudentOutcome struct {
	Base
	Number      int                    `json:"number"`
	Code        string                 `json:"code"`
	Description LocalizedText          `json:"description"`
	Indicators  []PerformanceIndicator `json:"indicators"`
}

// PEO is a program educational objective.
type PEO struct {
	Base
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MissionConstituent names a stakeholder group referenced by PEOs.
type MissionConstituent struct {
	Base
	Name LocalizedText `json:"name"`
}

// Textbook is embedded course bibliography data.
type Textbook struct {
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
}

// TopicActivity allocates in-class hours of a teaching method to a topic.
type TopicActivity struct {
	MethodID string  `json:"method_id"`
	Hours    float64 `json:"hours"`
}

// ReadingRef points a topic at pages of a library resource.
type ReadingRef struct {
	ResourceID string `json:"resource_id"`
	PageRange  string `json:"page_range"`
}

// CourseTopic is one row of a syllabus topic schedule.
type CourseTopic struct {
	ID          string          `json:"id"`
	No          int             `json:"no"`
	Topic       string          `json:"topic"`
	Activities  []TopicActivity `json:"activities"`
	ReadingRefs []ReadingRef    `json:"reading_refs"`
}

// AssessmentItem is one row of a course assessment plan.
type AssessmentItem struct {
	ID       string  `json:"id"`
	MethodID string  `json:"method_id"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
}

// CLOSet holds index-addressed CLO text per language. The two lists are
// independently resizable; mapping indices span both.
type CLOSet struct {
	VI []string `json:"vi"`
	EN []string `json:"en"`
}

// Max returns the larger of the two list lengths.
func (s CLOSet) Max() int {
	if len(s.VI) > len(s.EN) {
		return len(s.VI)
	}
	return len(s.EN)
}

// CLOMapping links one CLO index to syllabus evidence and outcomes.
// The mapping array is sparse: a CLO with no entry is unmapped.
type CLOMapping struct {
	CLOIndex            int         `json:"clo_index"`
	TopicIDs            []string    `json:"topic_ids"`
	TeachingMethodIDs   []string    `json:"teaching_method_ids"`
	AssessmentMethodIDs []string    `json:"assessment_method_ids"`
	Coverage            CLOCoverage `json:"coverage"`
	OutcomeIDs          []string    `json:"outcome_ids"`
	IndicatorIDs        []string    `json:"indicator_ids"`
	ObjectiveIDs        []string    `json:"objective_ids"`
}

// InstructorDetail carries per-instructor class assignment data.
// Exactly one detail has IsMain set when a course has instructors.
type InstructorDetail struct {
	ClassInfo string `json:"class_info"`
	IsMain    bool   `json:"is_main"`
}

// Course is the central entity of the program state.
//
// Prerequisites and co-requisites reference other courses by id; codes
// are resolved at display and export time only, so course-code renames
// never leave stale references behind.
type Course struct {
	Base
	Code              string                      `json:"code"`
	Name              LocalizedText               `json:"name"`
	Credits           int                         `json:"credits"`
	Type              CourseType                  `json:"type"`
	KnowledgeAreaID   string                      `json:"knowledge_area_id"`
	DepartmentID      *string                     `json:"department_id"`
	Semester          int                         `json:"semester"`
	PrerequisiteIDs   []string                    `json:"prerequisite_ids"`
	CoRequisiteIDs    []string                    `json:"co_requisite_ids"`
	Description       LocalizedText               `json:"description"`
	Textbooks         []Textbook                  `json:"textbooks"`
	CLOs              CLOSet                      `json:"clos"`
	Topics            []CourseTopic               `json:"topics"`
	AssessmentPlan    []AssessmentItem            `json:"assessment_plan"`
	InstructorIDs     []string                    `json:"instructor_ids"`
	InstructorDetails map[string]InstructorDetail `json:"instructor_details"`
	CLOMap            []CLOMapping                `json:"clo_map"`
}

// ProgramBlock is an elective or compulsory sub-block of a structure
// branch ("pick N of M" pools carry MinCredits instead of the member sum).
type ProgramBlock struct {
	Base
	Name              LocalizedText `json:"name"`
	Parent            BlockParent   `json:"parent"`
	Type              BlockType     `json:"type"`
	MinCredits        int           `json:"min_credits"`
	CourseIDs         []string      `json:"course_ids"`
	PreferredSemester *int          `json:"preferred_semester"`
}

// MoetObjective is a ministry-dialect program objective. Its display
// label is derived from sort position (category order, then Seq) and is
// never stored.
type MoetObjective struct {
	Base
	Seq         int               `json:"seq"`
	Category    ObjectiveCategory `json:"category"`
	Description string            `json:"description"`
	PEOIDs      []string          `json:"peo_ids"`
	OutcomeIDs  []string          `json:"outcome_ids"`
}

// FacultyMember is a teaching-staff profile.
type FacultyMember struct {
	Base
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Email        string  `json:"email"`
	DepartmentID *string `json:"department_id"`
}

// Department is an administrative unit owning courses.
type Department struct {
	Base
	Name              LocalizedText `json:"name"`
	AcademicFacultyID *string       `json:"academic_faculty_id"`
}

// AcademicFaculty groups departments under a school.
type AcademicFaculty struct {
	Base
	Name     LocalizedText `json:"name"`
	SchoolID *string       `json:"school_id"`
}

// School is the top of the institutional hierarchy.
type School struct {
	Base
	Name LocalizedText `json:"name"`
}

// TeachingMethod is a catalog entry referenced by topics and CLO mappings.
type TeachingMethod struct {
	Base
	Code string        `json:"code"`
	Name LocalizedText `json:"name"`
}

// AssessmentMethod is a catalog entry referenced by assessment plans and
// CLO mappings.
type AssessmentMethod struct {
	Base
	Code string        `json:"code"`
	Name LocalizedText `json:"name"`
}

// LibraryResource is a catalog entry referenced by topic reading lists.
type LibraryResource struct {
	Base
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	URL       string `json:"url"`
}

// CourseOutcomeLink maps a course to a student outcome at an IRM level.
// Rows with an empty level are never stored.
type CourseOutcomeLink struct {
	CourseID  string        `json:"course_id"`
	OutcomeID string        `json:"outcome_id"`
	Level     CoverageLevel `json:"level"`
}

// CourseIndicatorLink maps a course to a performance indicator
// (presence-only).
type CourseIndicatorLink struct {
	CourseID    string `json:"course_id"`
	IndicatorID string `json:"indicator_id"`
}

// CoursePEOLink maps a course to a PEO (presence-only).
type CoursePEOLink struct {
	CourseID string `json:"course_id"`
	PEOID    string `json:"peo_id"`
}

// PEOOutcomeLink maps a PEO to a student outcome (presence-only).
type PEOOutcomeLink struct {
	PEOID     string `json:"peo_id"`
	OutcomeID string `json:"outcome_id"`
}

// PEOConstituentLink maps a PEO to a mission constituent (presence-only).
type PEOConstituentLink struct {
	PEOID         string `json:"peo_id"`
	ConstituentID string `json:"constituent_id"`
}

// CourseObjectiveLink asserts a manual course-to-objective mapping;
// implied mappings are derived, never stored.
type CourseObjectiveLink struct {
	CourseID    string `json:"course_id"`
	ObjectiveID string `json:"objective_id"`
}

// ProgramStructure holds the root course lists per branch. Membership is
// exclusive with sub-block membership.
type ProgramStructure map[BlockParent][]string

// Clone deep-copies the structure map.
func (p ProgramStructure) Clone() ProgramStructure {
	out := make(ProgramStructure, len(p))
	for branch, ids := range p {
		out[branch] = append([]string(nil), ids...)
	}
	return out
}

// GeneralInfo is program-level configuration: identification text plus
// the defaults inherited by newly created courses.
type GeneralInfo struct {
	ProgramName       LocalizedText `json:"program_name"`
	DegreeTitle       LocalizedText `json:"degree_title"`
	Mission           LocalizedText `json:"mission"`
	DefaultCourseCode string        `json:"default_course_code"`
	DefaultCourseName LocalizedText `json:"default_course_name"`
	DefaultCredits    int           `json:"default_credits"`
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured per transaction.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
