package memory

import "curricore/pkg/domain"

var _ domain.TransactionView = (*view)(nil)

// view adapts a programState to the read-only TransactionView contract.
// All accessors return copies; rules and derived-view code can never
// mutate the snapshot through it.
type view struct {
	state *programState
}

func newView(state *programState) *view {
	return &view{state: state}
}

func (v *view) ListKnowledgeAreas() []KnowledgeArea {
	out := make([]KnowledgeArea, 0, len(v.state.areas))
	for _, a := range v.state.areas {
		out = append(out, a)
	}
	sortByID(out, func(a KnowledgeArea) string { return a.ID })
	return out
}

func (v *view) FindKnowledgeArea(id string) (KnowledgeArea, bool) {
	a, ok := v.state.areas[id]
	return a, ok
}

func (v *view) ListStudentOutcomes() []StudentOutcome {
	out := make([]StudentOutcome, 0, len(v.state.outcomes))
	for _, o := range v.state.outcomes {
		out = append(out, cloneOutcome(o))
	}
	sortByID(out, func(o StudentOutcome) string { return o.ID })
	return out
}

func (v *view) FindStudentOutcome(id string) (StudentOutcome, bool) {
	o, ok := v.state.outcomes[id]
	if !ok {
		return StudentOutcome{}, false
	}
	return cloneOutcome(o), true
}

func (v *view) ListPEOs() []PEO {
	out := make([]PEO, 0, len(v.state.peos))
	for _, p := range v.state.peos {
		out = append(out, p)
	}
	sortByID(out, func(p PEO) string { return p.ID })
	return out
}

func (v *view) FindPEO(id string) (PEO, bool) {
	p, ok := v.state.peos[id]
	return p, ok
}

func (v *view) ListMissionConstituents() []MissionConstituent {
	out := make([]MissionConstituent, 0, len(v.state.constituents))
	for _, c := range v.state.constituents {
		out = append(out, c)
	}
	sortByID(out, func(c MissionConstituent) string { return c.ID })
	return out
}

func (v *view) FindMissionConstituent(id string) (MissionConstituent, bool) {
	c, ok := v.state.constituents[id]
	return c, ok
}

func (v *view) ListCourses() []Course {
	out := make([]Course, 0, len(v.state.courses))
	for _, c := range v.state.courses {
		out = append(out, cloneCourse(c))
	}
	sortByID(out, func(c Course) string { return c.ID })
	return out
}

func (v *view) FindCourse(id string) (Course, bool) {
	c, ok := v.state.courses[id]
	if !ok {
		return Course{}, false
	}
	return cloneCourse(c), true
}

func (v *view) FindCourseByCode(code string) (Course, bool) {
	var match Course
	found := false
	for _, c := range v.state.courses {
		if c.Code != code {
			continue
		}
		// Ties break on id so lookups stay deterministic.
		if !found || c.ID < match.ID {
			match = c
			found = true
		}
	}
	if !found {
		return Course{}, false
	}
	return cloneCourse(match), true
}

func (v *view) ListProgramBlocks() []ProgramBlock {
	out := make([]ProgramBlock, 0, len(v.state.blocks))
	for _, b := range v.state.blocks {
		out = append(out, cloneBlock(b))
	}
	sortByID(out, func(b ProgramBlock) string { return b.ID })
	return out
}

func (v *view) FindProgramBlock(id string) (ProgramBlock, bool) {
	b, ok := v.state.blocks[id]
	if !ok {
		return ProgramBlock{}, false
	}
	return cloneBlock(b), true
}

func (v *view) ListObjectives() []MoetObjective {
	out := make([]MoetObjective, 0, len(v.state.objectives))
	for _, o := range v.state.objectives {
		out = append(out, cloneObjective(o))
	}
	sortByID(out, func(o MoetObjective) string { return o.ID })
	return out
}

func (v *view) FindObjective(id string) (MoetObjective, bool) {
	o, ok := v.state.objectives[id]
	if !ok {
		return MoetObjective{}, false
	}
	return cloneObjective(o), true
}

func (v *view) ListFacultyMembers() []FacultyMember {
	out := make([]FacultyMember, 0, len(v.state.faculty))
	for _, f := range v.state.faculty {
		out = append(out, f)
	}
	sortByID(out, func(f FacultyMember) string { return f.ID })
	return out
}

func (v *view) FindFacultyMember(id string) (FacultyMember, bool) {
	f, ok := v.state.faculty[id]
	return f, ok
}

func (v *view) ListDepartments() []Department {
	out := make([]Department, 0, len(v.state.departments))
	for _, d := range v.state.departments {
		out = append(out, d)
	}
	sortByID(out, func(d Department) string { return d.ID })
	return out
}

func (v *view) FindDepartment(id string) (Department, bool) {
	d, ok := v.state.departments[id]
	return d, ok
}

func (v *view) ListAcademicFaculties() []AcademicFaculty {
	out := make([]AcademicFaculty, 0, len(v.state.academics))
	for _, a := range v.state.academics {
		out = append(out, a)
	}
	sortByID(out, func(a AcademicFaculty) string { return a.ID })
	return out
}

func (v *view) FindAcademicFaculty(id string) (AcademicFaculty, bool) {
	a, ok := v.state.academics[id]
	return a, ok
}

func (v *view) ListSchools() []School {
	out := make([]School, 0, len(v.state.schools))
	for _, s := range v.state.schools {
		out = append(out, s)
	}
	sortByID(out, func(s School) string { return s.ID })
	return out
}

func (v *view) FindSchool(id string) (School, bool) {
	s, ok := v.state.schools[id]
	return s, ok
}

func (v *view) ListTeachingMethods() []TeachingMethod {
	out := make([]TeachingMethod, 0, len(v.state.teaching))
	for _, m := range v.state.teaching {
		out = append(out, m)
	}
	sortByID(out, func(m TeachingMethod) string { return m.ID })
	return out
}

func (v *view) FindTeachingMethod(id string) (TeachingMethod, bool) {
	m, ok := v.state.teaching[id]
	return m, ok
}

func (v *view) ListAssessmentMethods() []AssessmentMethod {
	out := make([]AssessmentMethod, 0, len(v.state.assessment))
	for _, m := range v.state.assessment {
		out = append(out, m)
	}
	sortByID(out, func(m AssessmentMethod) string { return m.ID })
	return out
}

func (v *view) FindAssessmentMethod(id string) (AssessmentMethod, bool) {
	m, ok := v.state.assessment[id]
	return m, ok
}

func (v *view) ListLibraryResources() []LibraryResource {
	out := make([]LibraryResource, 0, len(v.state.library))
	for _, r := range v.state.library {
		out = append(out, r)
	}
	sortByID(out, func(r LibraryResource) string { return r.ID })
	return out
}

func (v *view) FindLibraryResource(id string) (LibraryResource, bool) {
	r, ok := v.state.library[id]
	return r, ok
}

func (v *view) CourseOutcomeLinks() []domain.CourseOutcomeLink {
	return append([]domain.CourseOutcomeLink(nil), v.state.courseOutcomeLinks...)
}

func (v *view) CourseIndicatorLinks() []domain.CourseIndicatorLink {
	return append([]domain.CourseIndicatorLink(nil), v.state.courseIndicatorLinks...)
}

func (v *view) CoursePEOLinks() []domain.CoursePEOLink {
	return append([]domain.CoursePEOLink(nil), v.state.coursePEOLinks...)
}

func (v *view) PEOOutcomeLinks() []domain.PEOOutcomeLink {
	return append([]domain.PEOOutcomeLink(nil), v.state.peoOutcomeLinks...)
}

func (v *view) PEOConstituentLinks() []domain.PEOConstituentLink {
	return append([]domain.PEOConstituentLink(nil), v.state.peoConstituentLinks...)
}

func (v *view) CourseObjectiveLinks() []domain.CourseObjectiveLink {
	return append([]domain.CourseObjectiveLink(nil), v.state.courseObjectiveLinks...)
}

func (v *view) Structure() domain.ProgramStructure {
	return v.state.structure.Clone()
}

func (v *view) GeneralInfo() domain.GeneralInfo {
	return v.state.general
}
