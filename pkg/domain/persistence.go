package domain

import "context"

// Transaction exposes the program-state operations that a persistence
// implementation must support within an atomic scope. Every method
// mutates a private snapshot; nothing is visible to readers until the
// whole transaction commits.
type Transaction interface {
	Snapshot() TransactionView

	CreateKnowledgeArea(KnowledgeArea) (KnowledgeArea, error)
	UpdateKnowledgeArea(id string, mutator func(*KnowledgeArea) error) (KnowledgeArea, error)
	// DeleteKnowledgeArea fails with EntityInUseError while courses still
	// reference the area.
	DeleteKnowledgeArea(id string) error
	// RenameKnowledgeArea rewrites the area id and cascades into every
	// referencing course, returning the number of courses touched.
	RenameKnowledgeArea(oldID, newID string) (int, error)

	CreateStudentOutcome(StudentOutcome) (StudentOutcome, error)
	UpdateStudentOutcome(id string, mutator func(*StudentOutcome) error) (StudentOutcome, error)
	DeleteStudentOutcome(id string) error

	CreatePEO(PEO) (PEO, error)
	UpdatePEO(id string, mutator func(*PEO) error) (PEO, error)
	DeletePEO(id string) error

	CreateMissionConstituent(MissionConstituent) (MissionConstituent, error)
	UpdateMissionConstituent(id string, mutator func(*MissionConstituent) error) (MissionConstituent, error)
	DeleteMissionConstituent(id string) error

	CreateCourse(Course) (Course, error)
	UpdateCourse(id string, mutator func(*Course) error) (Course, error)
	// DeleteCourse purges the course and every reference to it: mapping
	// rows, structure membership, objective links, and other courses'
	// prerequisite/co-requisite lists.
	DeleteCourse(id string) error

	CreateProgramBlock(ProgramBlock) (ProgramBlock, error)
	UpdateProgramBlock(id string, mutator func(*ProgramBlock) error) (ProgramBlock, error)
	DeleteProgramBlock(id string) error

	CreateObjective(MoetObjective) (MoetObjective, error)
	UpdateObjective(id string, mutator func(*MoetObjective) error) (MoetObjective, error)
	DeleteObjective(id string) error

	CreateFacultyMember(FacultyMember) (FacultyMember, error)
	UpdateFacultyMember(id string, mutator func(*FacultyMember) error) (FacultyMember, error)
	DeleteFacultyMember(id string) error

	CreateDepartment(Department) (Department, error)
	UpdateDepartment(id string, mutator func(*Department) error) (Department, error)
	DeleteDepartment(id string) error

	CreateAcademicFaculty(AcademicFaculty) (AcademicFaculty, error)
	UpdateAcademicFaculty(id string, mutator func(*AcademicFaculty) error) (AcademicFaculty, error)
	DeleteAcademicFaculty(id string) error

	CreateSchool(School) (School, error)
	UpdateSchool(id string, mutator func(*School) error) (School, error)
	DeleteSchool(id string) error

	CreateTeachingMethod(TeachingMethod) (TeachingMethod, error)
	UpdateTeachingMethod(id string, mutator func(*TeachingMethod) error) (TeachingMethod, error)
	DeleteTeachingMethod(id string) error

	CreateAssessmentMethod(AssessmentMethod) (AssessmentMethod, error)
	UpdateAssessmentMethod(id string, mutator func(*AssessmentMethod) error) (AssessmentMethod, error)
	DeleteAssessmentMethod(id string) error

	CreateLibraryResource(LibraryResource) (LibraryResource, error)
	UpdateLibraryResource(id string, mutator func(*LibraryResource) error) (LibraryResource, error)
	DeleteLibraryResource(id string) error

	// SetOutcomeLevel upserts a course-outcome link; LevelNone removes it.
	SetOutcomeLevel(courseID, outcomeID string, level CoverageLevel) error
	// CycleOutcomeLevel advances a link through none -> I -> R -> M -> none
	// and returns the level now in effect.
	CycleOutcomeLevel(courseID, outcomeID string) (CoverageLevel, error)
	SetIndicatorLink(courseID, indicatorID string, linked bool) error
	SetCoursePEOLink(courseID, peoID string, linked bool) error
	SetPEOOutcomeLink(peoID, outcomeID string, linked bool) error
	SetPEOConstituentLink(peoID, constituentID string, linked bool) error
	SetCourseObjectiveLink(courseID, objectiveID string, linked bool) error

	// PlaceCourseInRoot moves a course into a branch root list, stripping
	// it from every other location first.
	PlaceCourseInRoot(courseID string, branch BlockParent) error
	// PlaceCourseInBlock moves a course into a sub-block, stripping it
	// from every other location first.
	PlaceCourseInBlock(courseID, blockID string) error

	AppendCLO(courseID string, lang Language, text string) (int, error)
	UpdateCLO(courseID string, lang Language, index int, text string) error
	// DeleteCLO removes the CLO row at index from both language lists,
	// drops the mapping entry at that index, and decrements every mapping
	// index above it so the sparse mapping array stays aligned.
	DeleteCLO(courseID string, index int) error
	// PutCLOMapping replaces or inserts the mapping for its CLO index.
	PutCLOMapping(courseID string, mapping CLOMapping) error
	RemoveCLOMapping(courseID string, cloIndex int) error

	SetGeneralInfo(GeneralInfo) error
}

// TransactionView provides read-only access to snapshot data for rules
// and derived-view computation.
type TransactionView interface {
	ListKnowledgeAreas() []KnowledgeArea
	FindKnowledgeArea(id string) (KnowledgeArea, bool)
	ListStudentOutcomes() []StudentOutcome
	FindStudentOutcome(id string) (StudentOutcome, bool)
	ListPEOs() []PEO
	FindPEO(id string) (PEO, bool)
	ListMissionConstituents() []MissionConstituent
	FindMissionConstituent(id string) (MissionConstituent, bool)
	ListCourses() []Course
	FindCourse(id string) (Course, bool)
	FindCourseByCode(code string) (Course, bool)
	ListProgramBlocks() []ProgramBlock
	FindProgramBlock(id string) (ProgramBlock, bool)
	ListObjectives() []MoetObjective
	FindObjective(id string) (MoetObjective, bool)
	ListFacultyMembers() []FacultyMember
	FindFacultyMember(id string) (FacultyMember, bool)
	ListDepartments() []Department
	FindDepartment(id string) (Department, bool)
	ListAcademicFaculties() []AcademicFaculty
	FindAcademicFaculty(id string) (AcademicFaculty, bool)
	ListSchools() []School
	FindSchool(id string) (School, bool)
	ListTeachingMethods() []TeachingMethod
	FindTeachingMethod(id string) (TeachingMethod, bool)
	ListAssessmentMethods() []AssessmentMethod
	FindAssessmentMethod(id string) (AssessmentMethod, bool)
	ListLibraryResources() []LibraryResource
	FindLibraryResource(id string) (LibraryResource, bool)

	CourseOutcomeLinks() []CourseOutcomeLink
	CourseIndicatorLinks() []CourseIndicatorLink
	CoursePEOLinks() []CoursePEOLink
	PEOOutcomeLinks() []PEOOutcomeLink
	PEOConstituentLinks() []PEOConstituentLink
	CourseObjectiveLinks() []CourseObjectiveLink

	Structure() ProgramStructure
	GeneralInfo() GeneralInfo
}

// PersistentStore is a minimal abstraction over durable backends. It
// mirrors the subset of store capabilities used directly by higher layers;
// the whole program tree is the unit of persistence.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetCourse(id string) (Course, bool)
	ListCourses() []Course
	ListKnowledgeAreas() []KnowledgeArea
	ListStudentOutcomes() []StudentOutcome
	ListProgramBlocks() []ProgramBlock
	ListObjectives() []MoetObjective
	CourseOutcomeLinks() []CourseOutcomeLink
	Structure() ProgramStructure
	GeneralInfo() GeneralInfo
}
