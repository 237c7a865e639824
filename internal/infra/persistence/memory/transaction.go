package memory

import (
	"time"

	"curricore/pkg/domain"
)

var _ domain.Transaction = (*transaction)(nil)

type transaction struct {
	state   programState
	now     time.Time
	changes []Change
}

func (t *transaction) Snapshot() TransactionView {
	return newView(&t.state)
}

func (t *transaction) record(entity domain.EntityType, action domain.Action, before, after any) {
	t.changes = append(t.changes, Change{Entity: entity, Action: action, Before: before, After: after})
}

func (t *transaction) stampCreate(base *domain.Base) {
	if base.ID == "" {
		base.ID = newID()
	}
	base.CreatedAt = t.now
	base.UpdatedAt = t.now
}

// Knowledge areas ------------------------------------------------------------

func (t *transaction) CreateKnowledgeArea(area KnowledgeArea) (KnowledgeArea, error) {
	t.stampCreate(&area.Base)
	if _, exists := t.state.areas[area.ID]; exists {
		return KnowledgeArea{}, domain.DuplicateIDError{Entity: domain.EntityKnowledgeArea, ID: area.ID}
	}
	if area.Branch == "" {
		area.Branch = domain.BranchFundamental
	}
	t.state.areas[area.ID] = area
	t.record(domain.EntityKnowledgeArea, domain.ActionCreate, nil, area)
	return area, nil
}

func (t *transaction) UpdateKnowledgeArea(id string, mutator func(*KnowledgeArea) error) (KnowledgeArea, error) {
	current, ok := t.state.areas[id]
	if !ok {
		return KnowledgeArea{}, domain.NotFoundError{Entity: domain.EntityKnowledgeArea, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return KnowledgeArea{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.areas[id] = current
	t.record(domain.EntityKnowledgeArea, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteKnowledgeArea(id string) error {
	area, ok := t.state.areas[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityKnowledgeArea, ID: id}
	}
	count := 0
	for _, c := range t.state.courses {
		if c.KnowledgeAreaID == id {
			count++
		}
	}
	if count > 0 {
		return domain.EntityInUseError{Entity: domain.EntityKnowledgeArea, ID: id, Count: count}
	}
	delete(t.state.areas, id)
	t.record(domain.EntityKnowledgeArea, domain.ActionDelete, area, nil)
	return nil
}

func (t *transaction) RenameKnowledgeArea(oldID, newID string) (int, error) {
	area, ok := t.state.areas[oldID]
	if !ok {
		return 0, domain.NotFoundError{Entity: domain.EntityKnowledgeArea, ID: oldID}
	}
	if newID == "" {
		return 0, domain.ValidationError{Field: "id", Message: "new id must not be empty"}
	}
	if newID == oldID {
		return 0, nil
	}
	if _, exists := t.state.areas[newID]; exists {
		return 0, domain.DuplicateIDError{Entity: domain.EntityKnowledgeArea, ID: newID}
	}
	before := area
	area.ID = newID
	area.UpdatedAt = t.now
	delete(t.state.areas, oldID)
	t.state.areas[newID] = area

	touched := 0
	for id, c := range t.state.courses {
		if c.KnowledgeAreaID != oldID {
			continue
		}
		c.KnowledgeAreaID = newID
		c.UpdatedAt = t.now
		t.state.courses[id] = c
		touched++
	}
	t.record(domain.EntityKnowledgeArea, domain.ActionUpdate, before, area)
	return touched, nil
}

// Student outcomes -----------------------------------------------------------

func (t *transaction) CreateStudentOutcome(outcome StudentOutcome) (StudentOutcome, error) {
	t.stampCreate(&outcome.Base)
	if _, exists := t.state.outcomes[outcome.ID]; exists {
		return StudentOutcome{}, domain.DuplicateIDError{Entity: domain.EntityStudentOutcome, ID: outcome.ID}
	}
	for i := range outcome.Indicators {
		if outcome.Indicators[i].ID == "" {
			outcome.Indicators[i].ID = newID()
		}
	}
	t.state.outcomes[outcome.ID] = outcome
	t.record(domain.EntityStudentOutcome, domain.ActionCreate, nil, cloneOutcome(outcome))
	return cloneOutcome(outcome), nil
}

func (t *transaction) UpdateStudentOutcome(id string, mutator func(*StudentOutcome) error) (StudentOutcome, error) {
	current, ok := t.state.outcomes[id]
	if !ok {
		return StudentOutcome{}, domain.NotFoundError{Entity: domain.EntityStudentOutcome, ID: id}
	}
	before := cloneOutcome(current)
	updated := cloneOutcome(current)
	if err := mutator(&updated); err != nil {
		return StudentOutcome{}, err
	}
	updated.Base = before.Base
	updated.UpdatedAt = t.now
	for i := range updated.Indicators {
		if updated.Indicators[i].ID == "" {
			updated.Indicators[i].ID = newID()
		}
	}
	t.state.outcomes[id] = updated
	t.pruneOrphanIndicatorLinks()
	t.record(domain.EntityStudentOutcome, domain.ActionUpdate, before, cloneOutcome(updated))
	return cloneOutcome(updated), nil
}

func (t *transaction) DeleteStudentOutcome(id string) error {
	outcome, ok := t.state.outcomes[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityStudentOutcome, ID: id}
	}
	indicatorIDs := make(map[string]bool, len(outcome.Indicators))
	for _, pi := range outcome.Indicators {
		indicatorIDs[pi.ID] = true
	}
	delete(t.state.outcomes, id)

	t.state.courseOutcomeLinks = filterOutcomeLinks(t.state.courseOutcomeLinks, func(l domain.CourseOutcomeLink) bool {
		return l.OutcomeID != id
	})
	t.state.peoOutcomeLinks = filterPEOOutcomeLinks(t.state.peoOutcomeLinks, func(l domain.PEOOutcomeLink) bool {
		return l.OutcomeID != id
	})
	t.state.courseIndicatorLinks = filterIndicatorLinks(t.state.courseIndicatorLinks, func(l domain.CourseIndicatorLink) bool {
		return !indicatorIDs[l.IndicatorID]
	})
	for oid, obj := range t.state.objectives {
		filtered := removeString(obj.OutcomeIDs, id)
		if len(filtered) != len(obj.OutcomeIDs) {
			obj.OutcomeIDs = filtered
			obj.UpdatedAt = t.now
			t.state.objectives[oid] = obj
		}
	}
	for cid, c := range t.state.courses {
		changed := false
		for i := range c.CLOMap {
			trimmed := removeString(c.CLOMap[i].OutcomeIDs, id)
			if len(trimmed) != len(c.CLOMap[i].OutcomeIDs) {
				c.CLOMap[i].OutcomeIDs = trimmed
				changed = true
			}
			kept := c.CLOMap[i].IndicatorIDs[:0]
			for _, pid := range c.CLOMap[i].IndicatorIDs {
				if !indicatorIDs[pid] {
					kept = append(kept, pid)
				}
			}
			if len(kept) != len(c.CLOMap[i].IndicatorIDs) {
				c.CLOMap[i].IndicatorIDs = kept
				changed = true
			}
		}
		if changed {
			c.UpdatedAt = t.now
			t.state.courses[cid] = c
		}
	}
	t.record(domain.EntityStudentOutcome, domain.ActionDelete, outcome, nil)
	return nil
}

// pruneOrphanIndicatorLinks drops indicator links whose indicator no
// longer exists under any outcome. Indicators have no independent
// lifecycle, so editing an outcome may silently remove them.
func (t *transaction) pruneOrphanIndicatorLinks() {
	alive := make(map[string]bool)
	for _, o := range t.state.outcomes {
		for _, pi := range o.Indicators {
			alive[pi.ID] = true
		}
	}
	t.state.courseIndicatorLinks = filterIndicatorLinks(t.state.courseIndicatorLinks, func(l domain.CourseIndicatorLink) bool {
		return alive[l.IndicatorID]
	})
	for cid, c := range t.state.courses {
		changed := false
		for i := range c.CLOMap {
			kept := c.CLOMap[i].IndicatorIDs[:0]
			for _, pid := range c.CLOMap[i].IndicatorIDs {
				if alive[pid] {
					kept = append(kept, pid)
				}
			}
			if len(kept) != len(c.CLOMap[i].IndicatorIDs) {
				c.CLOMap[i].IndicatorIDs = kept
				changed = true
			}
		}
		if changed {
			t.state.courses[cid] = c
		}
	}
}

// PEOs -----------------------------------------------------------------------

func (t *transaction) CreatePEO(peo PEO) (PEO, error) {
	t.stampCreate(&peo.Base)
	if _, exists := t.state.peos[peo.ID]; exists {
		return PEO{}, domain.DuplicateIDError{Entity: domain.EntityPEO, ID: peo.ID}
	}
	t.state.peos[peo.ID] = peo
	t.record(domain.EntityPEO, domain.ActionCreate, nil, peo)
	return peo, nil
}

func (t *transaction) UpdatePEO(id string, mutator func(*PEO) error) (PEO, error) {
	current, ok := t.state.peos[id]
	if !ok {
		return PEO{}, domain.NotFoundError{Entity: domain.EntityPEO, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return PEO{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.peos[id] = current
	t.record(domain.EntityPEO, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeletePEO(id string) error {
	peo, ok := t.state.peos[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityPEO, ID: id}
	}
	delete(t.state.peos, id)
	t.state.coursePEOLinks = filterCoursePEOLinks(t.state.coursePEOLinks, func(l domain.CoursePEOLink) bool {
		return l.PEOID != id
	})
	t.state.peoOutcomeLinks = filterPEOOutcomeLinks(t.state.peoOutcomeLinks, func(l domain.PEOOutcomeLink) bool {
		return l.PEOID != id
	})
	t.state.peoConstituentLinks = filterPEOConstituentLinks(t.state.peoConstituentLinks, func(l domain.PEOConstituentLink) bool {
		return l.PEOID != id
	})
	for oid, obj := range t.state.objectives {
		filtered := removeString(obj.PEOIDs, id)
		if len(filtered) != len(obj.PEOIDs) {
			obj.PEOIDs = filtered
			obj.UpdatedAt = t.now
			t.state.objectives[oid] = obj
		}
	}
	t.record(domain.EntityPEO, domain.ActionDelete, peo, nil)
	return nil
}

// Mission constituents -------------------------------------------------------

func (t *transaction) CreateMissionConstituent(mc MissionConstituent) (MissionConstituent, error) {
	t.stampCreate(&mc.Base)
	if _, exists := t.state.constituents[mc.ID]; exists {
		return MissionConstituent{}, domain.DuplicateIDError{Entity: domain.EntityMissionConstituent, ID: mc.ID}
	}
	t.state.constituents[mc.ID] = mc
	t.record(domain.EntityMissionConstituent, domain.ActionCreate, nil, mc)
	return mc, nil
}

func (t *transaction) UpdateMissionConstituent(id string, mutator func(*MissionConstituent) error) (MissionConstituent, error) {
	current, ok := t.state.constituents[id]
	if !ok {
		return MissionConstituent{}, domain.NotFoundError{Entity: domain.EntityMissionConstituent, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return MissionConstituent{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.constituents[id] = current
	t.record(domain.EntityMissionConstituent, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteMissionConstituent(id string) error {
	mc, ok := t.state.constituents[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityMissionConstituent, ID: id}
	}
	delete(t.state.constituents, id)
	t.state.peoConstituentLinks = filterPEOConstituentLinks(t.state.peoConstituentLinks, func(l domain.PEOConstituentLink) bool {
		return l.ConstituentID != id
	})
	t.record(domain.EntityMissionConstituent, domain.ActionDelete, mc, nil)
	return nil
}

// Courses --------------------------------------------------------------------

func (t *transaction) CreateCourse(course Course) (Course, error) {
	t.stampCreate(&course.Base)
	if _, exists := t.state.courses[course.ID]; exists {
		return Course{}, domain.DuplicateIDError{Entity: domain.EntityCourse, ID: course.ID}
	}
	if course.KnowledgeAreaID != "" {
		if _, ok := t.state.areas[course.KnowledgeAreaID]; !ok {
			return Course{}, domain.NotFoundError{Entity: domain.EntityKnowledgeArea, ID: course.KnowledgeAreaID}
		}
	}
	if course.Type == "" {
		course.Type = domain.CourseRequired
	}
	normalizeInstructors(&course)
	t.state.courses[course.ID] = cloneCourse(course)
	if !course.Type.IsElective() {
		t.placeInRoot(course.ID, t.branchFor(course))
	}
	t.record(domain.EntityCourse, domain.ActionCreate, nil, cloneCourse(course))
	return course, nil
}

func (t *transaction) UpdateCourse(id string, mutator func(*Course) error) (Course, error) {
	current, ok := t.state.courses[id]
	if !ok {
		return Course{}, domain.NotFoundError{Entity: domain.EntityCourse, ID: id}
	}
	before := cloneCourse(current)
	updated := cloneCourse(current)
	if err := mutator(&updated); err != nil {
		return Course{}, err
	}
	updated.Base = before.Base
	updated.UpdatedAt = t.now
	normalizeInstructors(&updated)
	t.state.courses[id] = cloneCourse(updated)
	t.record(domain.EntityCourse, domain.ActionUpdate, before, cloneCourse(updated))
	return updated, nil
}

func (t *transaction) DeleteCourse(id string) error {
	course, ok := t.state.courses[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: id}
	}
	delete(t.state.courses, id)

	t.stripFromStructure(id)
	t.state.courseOutcomeLinks = filterOutcomeLinks(t.state.courseOutcomeLinks, func(l domain.CourseOutcomeLink) bool {
		return l.CourseID != id
	})
	t.state.courseIndicatorLinks = filterIndicatorLinks(t.state.courseIndicatorLinks, func(l domain.CourseIndicatorLink) bool {
		return l.CourseID != id
	})
	t.state.coursePEOLinks = filterCoursePEOLinks(t.state.coursePEOLinks, func(l domain.CoursePEOLink) bool {
		return l.CourseID != id
	})
	t.state.courseObjectiveLinks = filterCourseObjectiveLinks(t.state.courseObjectiveLinks, func(l domain.CourseObjectiveLink) bool {
		return l.CourseID != id
	})
	for cid, c := range t.state.courses {
		prereqs := removeString(c.PrerequisiteIDs, id)
		coreqs := removeString(c.CoRequisiteIDs, id)
		if len(prereqs) != len(c.PrerequisiteIDs) || len(coreqs) != len(c.CoRequisiteIDs) {
			c.PrerequisiteIDs = prereqs
			c.CoRequisiteIDs = coreqs
			c.UpdatedAt = t.now
			t.state.courses[cid] = c
		}
	}
	t.record(domain.EntityCourse, domain.ActionDelete, course, nil)
	return nil
}

func (t *transaction) branchFor(course Course) domain.BlockParent {
	if area, ok := t.state.areas[course.KnowledgeAreaID]; ok && area.Branch != "" {
		return area.Branch
	}
	return domain.BranchFundamental
}

// Program blocks -------------------------------------------------------------

func (t *transaction) CreateProgramBlock(block ProgramBlock) (ProgramBlock, error) {
	t.stampCreate(&block.Base)
	if _, exists := t.state.blocks[block.ID]; exists {
		return ProgramBlock{}, domain.DuplicateIDError{Entity: domain.EntityProgramBlock, ID: block.ID}
	}
	if block.Parent == "" {
		return ProgramBlock{}, domain.ValidationError{Field: "parent", Message: "structure branch required"}
	}
	t.state.blocks[block.ID] = cloneBlock(block)
	t.record(domain.EntityProgramBlock, domain.ActionCreate, nil, cloneBlock(block))
	return block, nil
}

func (t *transaction) UpdateProgramBlock(id string, mutator func(*ProgramBlock) error) (ProgramBlock, error) {
	current, ok := t.state.blocks[id]
	if !ok {
		return ProgramBlock{}, domain.NotFoundError{Entity: domain.EntityProgramBlock, ID: id}
	}
	before := cloneBlock(current)
	updated := cloneBlock(current)
	if err := mutator(&updated); err != nil {
		return ProgramBlock{}, err
	}
	updated.Base = before.Base
	updated.UpdatedAt = t.now
	t.state.blocks[id] = cloneBlock(updated)
	t.record(domain.EntityProgramBlock, domain.ActionUpdate, before, cloneBlock(updated))
	return updated, nil
}

func (t *transaction) DeleteProgramBlock(id string) error {
	block, ok := t.state.blocks[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityProgramBlock, ID: id}
	}
	// Elective members cannot fall back to a root list; the block must
	// be emptied first (retype or move the courses).
	electives := 0
	for _, courseID := range block.CourseIDs {
		if course, exists := t.state.courses[courseID]; exists && course.Type.IsElective() {
			electives++
		}
	}
	if electives > 0 {
		return domain.EntityInUseError{Entity: domain.EntityProgramBlock, ID: id, Count: electives}
	}
	delete(t.state.blocks, id)
	// Remaining members drop back into the branch root list instead of
	// vanishing from the structure.
	for _, courseID := range block.CourseIDs {
		if _, exists := t.state.courses[courseID]; exists {
			t.placeInRoot(courseID, block.Parent)
		}
	}
	t.record(domain.EntityProgramBlock, domain.ActionDelete, block, nil)
	return nil
}

// MOET objectives ------------------------------------------------------------

func (t *transaction) CreateObjective(obj MoetObjective) (MoetObjective, error) {
	t.stampCreate(&obj.Base)
	if _, exists := t.state.objectives[obj.ID]; exists {
		return MoetObjective{}, domain.DuplicateIDError{Entity: domain.EntityObjective, ID: obj.ID}
	}
	if obj.Category == "" {
		return MoetObjective{}, domain.ValidationError{Field: "category", Message: "objective category required"}
	}
	obj.Seq = t.state.objectiveSeq
	t.state.objectiveSeq++
	t.state.objectives[obj.ID] = cloneObjective(obj)
	t.record(domain.EntityObjective, domain.ActionCreate, nil, cloneObjective(obj))
	return obj, nil
}

func (t *transaction) UpdateObjective(id string, mutator func(*MoetObjective) error) (MoetObjective, error) {
	current, ok := t.state.objectives[id]
	if !ok {
		return MoetObjective{}, domain.NotFoundError{Entity: domain.EntityObjective, ID: id}
	}
	before := cloneObjective(current)
	updated := cloneObjective(current)
	if err := mutator(&updated); err != nil {
		return MoetObjective{}, err
	}
	updated.Base = before.Base
	updated.Seq = before.Seq
	updated.UpdatedAt = t.now
	t.state.objectives[id] = cloneObjective(updated)
	t.record(domain.EntityObjective, domain.ActionUpdate, before, cloneObjective(updated))
	return updated, nil
}

func (t *transaction) DeleteObjective(id string) error {
	obj, ok := t.state.objectives[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityObjective, ID: id}
	}
	delete(t.state.objectives, id)
	t.state.courseObjectiveLinks = filterCourseObjectiveLinks(t.state.courseObjectiveLinks, func(l domain.CourseObjectiveLink) bool {
		return l.ObjectiveID != id
	})
	for cid, c := range t.state.courses {
		changed := false
		for i := range c.CLOMap {
			trimmed := removeString(c.CLOMap[i].ObjectiveIDs, id)
			if len(trimmed) != len(c.CLOMap[i].ObjectiveIDs) {
				c.CLOMap[i].ObjectiveIDs = trimmed
				changed = true
			}
		}
		if changed {
			c.UpdatedAt = t.now
			t.state.courses[cid] = c
		}
	}
	t.record(domain.EntityObjective, domain.ActionDelete, obj, nil)
	return nil
}

// Faculty and institutional hierarchy ----------------------------------------

func (t *transaction) CreateFacultyMember(fm FacultyMember) (FacultyMember, error) {
	t.stampCreate(&fm.Base)
	if _, exists := t.state.faculty[fm.ID]; exists {
		return FacultyMember{}, domain.DuplicateIDError{Entity: domain.EntityFacultyMember, ID: fm.ID}
	}
	t.state.faculty[fm.ID] = fm
	t.record(domain.EntityFacultyMember, domain.ActionCreate, nil, fm)
	return fm, nil
}

func (t *transaction) UpdateFacultyMember(id string, mutator func(*FacultyMember) error) (FacultyMember, error) {
	current, ok := t.state.faculty[id]
	if !ok {
		return FacultyMember{}, domain.NotFoundError{Entity: domain.EntityFacultyMember, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return FacultyMember{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.faculty[id] = current
	t.record(domain.EntityFacultyMember, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteFacultyMember(id string) error {
	fm, ok := t.state.faculty[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityFacultyMember, ID: id}
	}
	delete(t.state.faculty, id)
	for cid, c := range t.state.courses {
		trimmed := removeString(c.InstructorIDs, id)
		if len(trimmed) == len(c.InstructorIDs) {
			continue
		}
		c.InstructorIDs = trimmed
		if c.InstructorDetails != nil {
			delete(c.InstructorDetails, id)
		}
		normalizeInstructors(&c)
		c.UpdatedAt = t.now
		t.state.courses[cid] = c
	}
	t.record(domain.EntityFacultyMember, domain.ActionDelete, fm, nil)
	return nil
}

func (t *transaction) CreateDepartment(d Department) (Department, error) {
	t.stampCreate(&d.Base)
	if _, exists := t.state.departments[d.ID]; exists {
		return Department{}, domain.DuplicateIDError{Entity: domain.EntityDepartment, ID: d.ID}
	}
	t.state.departments[d.ID] = d
	t.record(domain.EntityDepartment, domain.ActionCreate, nil, d)
	return d, nil
}

func (t *transaction) UpdateDepartment(id string, mutator func(*Department) error) (Department, error) {
	current, ok := t.state.departments[id]
	if !ok {
		return Department{}, domain.NotFoundError{Entity: domain.EntityDepartment, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Department{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.departments[id] = current
	t.record(domain.EntityDepartment, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteDepartment(id string) error {
	d, ok := t.state.departments[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityDepartment, ID: id}
	}
	count := 0
	for _, c := range t.state.courses {
		if c.DepartmentID != nil && *c.DepartmentID == id {
			count++
		}
	}
	for _, fm := range t.state.faculty {
		if fm.DepartmentID != nil && *fm.DepartmentID == id {
			count++
		}
	}
	if count > 0 {
		return domain.EntityInUseError{Entity: domain.EntityDepartment, ID: id, Count: count}
	}
	delete(t.state.departments, id)
	t.record(domain.EntityDepartment, domain.ActionDelete, d, nil)
	return nil
}

func (t *transaction) CreateAcademicFaculty(af AcademicFaculty) (AcademicFaculty, error) {
	t.stampCreate(&af.Base)
	if _, exists := t.state.academics[af.ID]; exists {
		return AcademicFaculty{}, domain.DuplicateIDError{Entity: domain.EntityAcademicFaculty, ID: af.ID}
	}
	t.state.academics[af.ID] = af
	t.record(domain.EntityAcademicFaculty, domain.ActionCreate, nil, af)
	return af, nil
}

func (t *transaction) UpdateAcademicFaculty(id string, mutator func(*AcademicFaculty) error) (AcademicFaculty, error) {
	current, ok := t.state.academics[id]
	if !ok {
		return AcademicFaculty{}, domain.NotFoundError{Entity: domain.EntityAcademicFaculty, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return AcademicFaculty{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.academics[id] = current
	t.record(domain.EntityAcademicFaculty, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteAcademicFaculty(id string) error {
	af, ok := t.state.academics[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAcademicFaculty, ID: id}
	}
	count := 0
	for _, d := range t.state.departments {
		if d.AcademicFacultyID != nil && *d.AcademicFacultyID == id {
			count++
		}
	}
	if count > 0 {
		return domain.EntityInUseError{Entity: domain.EntityAcademicFaculty, ID: id, Count: count}
	}
	delete(t.state.academics, id)
	t.record(domain.EntityAcademicFaculty, domain.ActionDelete, af, nil)
	return nil
}

func (t *transaction) CreateSchool(s School) (School, error) {
	t.stampCreate(&s.Base)
	if _, exists := t.state.schools[s.ID]; exists {
		return School{}, domain.DuplicateIDError{Entity: domain.EntitySchool, ID: s.ID}
	}
	t.state.schools[s.ID] = s
	t.record(domain.EntitySchool, domain.ActionCreate, nil, s)
	return s, nil
}

func (t *transaction) UpdateSchool(id string, mutator func(*School) error) (School, error) {
	current, ok := t.state.schools[id]
	if !ok {
		return School{}, domain.NotFoundError{Entity: domain.EntitySchool, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return School{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.schools[id] = current
	t.record(domain.EntitySchool, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteSchool(id string) error {
	s, ok := t.state.schools[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntitySchool, ID: id}
	}
	count := 0
	for _, af := range t.state.academics {
		if af.SchoolID != nil && *af.SchoolID == id {
			count++
		}
	}
	if count > 0 {
		return domain.EntityInUseError{Entity: domain.EntitySchool, ID: id, Count: count}
	}
	delete(t.state.schools, id)
	t.record(domain.EntitySchool, domain.ActionDelete, s, nil)
	return nil
}

// Catalogs -------------------------------------------------------------------

func (t *transaction) CreateTeachingMethod(tm TeachingMethod) (TeachingMethod, error) {
	t.stampCreate(&tm.Base)
	if _, exists := t.state.teaching[tm.ID]; exists {
		return TeachingMethod{}, domain.DuplicateIDError{Entity: domain.EntityTeachingMethod, ID: tm.ID}
	}
	t.state.teaching[tm.ID] = tm
	t.record(domain.EntityTeachingMethod, domain.ActionCreate, nil, tm)
	return tm, nil
}

func (t *transaction) UpdateTeachingMethod(id string, mutator func(*TeachingMethod) error) (TeachingMethod, error) {
	current, ok := t.state.teaching[id]
	if !ok {
		return TeachingMethod{}, domain.NotFoundError{Entity: domain.EntityTeachingMethod, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return TeachingMethod{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.teaching[id] = current
	t.record(domain.EntityTeachingMethod, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteTeachingMethod(id string) error {
	tm, ok := t.state.teaching[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityTeachingMethod, ID: id}
	}
	count := 0
	for _, c := range t.state.courses {
		for _, topic := range c.Topics {
			for _, act := range topic.Activities {
				if act.MethodID == id {
					count++
				}
			}
		}
		for _, m := range c.CLOMap {
			if containsString(m.TeachingMethodIDs, id) {
				count++
			}
		}
	}
	if count > 0 {
		return domain.EntityInUseError{Entity: domain.EntityTeachingMethod, ID: id, Count: count}
	}
	delete(t.state.teaching, id)
	t.record(domain.EntityTeachingMethod, domain.ActionDelete, tm, nil)
	return nil
}

func (t *transaction) CreateAssessmentMethod(am AssessmentMethod) (AssessmentMethod, error) {
	t.stampCreate(&am.Base)
	if _, exists := t.state.assessment[am.ID]; exists {
		return AssessmentMethod{}, domain.DuplicateIDError{Entity: domain.EntityAssessmentMethod, ID: am.ID}
	}
	t.state.assessment[am.ID] = am
	t.record(domain.EntityAssessmentMethod, domain.ActionCreate, nil, am)
	return am, nil
}

func (t *transaction) UpdateAssessmentMethod(id string, mutator func(*AssessmentMethod) error) (AssessmentMethod, error) {
	current, ok := t.state.assessment[id]
	if !ok {
		return AssessmentMethod{}, domain.NotFoundError{Entity: domain.EntityAssessmentMethod, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return AssessmentMethod{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.assessment[id] = current
	t.record(domain.EntityAssessmentMethod, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteAssessmentMethod(id string) error {
	am, ok := t.state.assessment[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAssessmentMethod, ID: id}
	}
	count := 0
	for _, c := range t.state.courses {
		for _, item := range c.AssessmentPlan {
			if item.MethodID == id {
				count++
			}
		}
		for _, m := range c.CLOMap {
			if containsString(m.AssessmentMethodIDs, id) {
				count++
			}
		}
	}
	if count > 0 {
		return domain.EntityInUseError{Entity: domain.EntityAssessmentMethod, ID: id, Count: count}
	}
	delete(t.state.assessment, id)
	t.record(domain.EntityAssessmentMethod, domain.ActionDelete, am, nil)
	return nil
}

func (t *transaction) CreateLibraryResource(lr LibraryResource) (LibraryResource, error) {
	t.stampCreate(&lr.Base)
	if _, exists := t.state.library[lr.ID]; exists {
		return LibraryResource{}, domain.DuplicateIDError{Entity: domain.EntityLibraryResource, ID: lr.ID}
	}
	t.state.library[lr.ID] = lr
	t.record(domain.EntityLibraryResource, domain.ActionCreate, nil, lr)
	return lr, nil
}

func (t *transaction) UpdateLibraryResource(id string, mutator func(*LibraryResource) error) (LibraryResource, error) {
	current, ok := t.state.library[id]
	if !ok {
		return LibraryResource{}, domain.NotFoundError{Entity: domain.EntityLibraryResource, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return LibraryResource{}, err
	}
	current.Base = before.Base
	current.UpdatedAt = t.now
	t.state.library[id] = current
	t.record(domain.EntityLibraryResource, domain.ActionUpdate, before, current)
	return current, nil
}

func (t *transaction) DeleteLibraryResource(id string) error {
	lr, ok := t.state.library[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityLibraryResource, ID: id}
	}
	count := 0
	for _, c := range t.state.courses {
		for _, topic := range c.Topics {
			for _, ref := range topic.ReadingRefs {
				if ref.ResourceID == id {
					count++
				}
			}
		}
	}
	if count > 0 {
		return domain.EntityInUseError{Entity: domain.EntityLibraryResource, ID: id, Count: count}
	}
	delete(t.state.library, id)
	t.record(domain.EntityLibraryResource, domain.ActionDelete, lr, nil)
	return nil
}

// Mapping links --------------------------------------------------------------

func (t *transaction) SetOutcomeLevel(courseID, outcomeID string, level domain.CoverageLevel) error {
	if _, ok := t.state.courses[courseID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	if _, ok := t.state.outcomes[outcomeID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityStudentOutcome, ID: outcomeID}
	}
	links := t.state.courseOutcomeLinks
	idx := -1
	for i, l := range links {
		if l.CourseID == courseID && l.OutcomeID == outcomeID {
			idx = i
			break
		}
	}
	switch {
	case level == domain.LevelNone && idx >= 0:
		t.state.courseOutcomeLinks = append(links[:idx], links[idx+1:]...)
	case level == domain.LevelNone:
		// already absent
	case idx >= 0:
		links[idx].Level = level
	default:
		t.state.courseOutcomeLinks = append(links, domain.CourseOutcomeLink{CourseID: courseID, OutcomeID: outcomeID, Level: level})
	}
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) CycleOutcomeLevel(courseID, outcomeID string) (domain.CoverageLevel, error) {
	current := domain.LevelNone
	for _, l := range t.state.courseOutcomeLinks {
		if l.CourseID == courseID && l.OutcomeID == outcomeID {
			current = l.Level
			break
		}
	}
	next := domain.NextCoverageLevel(current)
	if err := t.SetOutcomeLevel(courseID, outcomeID, next); err != nil {
		return domain.LevelNone, err
	}
	return next, nil
}

func (t *transaction) SetIndicatorLink(courseID, indicatorID string, linked bool) error {
	if _, ok := t.state.courses[courseID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	found := false
	for _, o := range t.state.outcomes {
		for _, pi := range o.Indicators {
			if pi.ID == indicatorID {
				found = true
			}
		}
	}
	if !found {
		return domain.NotFoundError{Entity: domain.EntityStudentOutcome, ID: indicatorID}
	}
	links := t.state.courseIndicatorLinks
	idx := -1
	for i, l := range links {
		if l.CourseID == courseID && l.IndicatorID == indicatorID {
			idx = i
			break
		}
	}
	if linked && idx < 0 {
		t.state.courseIndicatorLinks = append(links, domain.CourseIndicatorLink{CourseID: courseID, IndicatorID: indicatorID})
	} else if !linked && idx >= 0 {
		t.state.courseIndicatorLinks = append(links[:idx], links[idx+1:]...)
	}
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) SetCoursePEOLink(courseID, peoID string, linked bool) error {
	if _, ok := t.state.courses[courseID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	if _, ok := t.state.peos[peoID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityPEO, ID: peoID}
	}
	links := t.state.coursePEOLinks
	idx := -1
	for i, l := range links {
		if l.CourseID == courseID && l.PEOID == peoID {
			idx = i
			break
		}
	}
	if linked && idx < 0 {
		t.state.coursePEOLinks = append(links, domain.CoursePEOLink{CourseID: courseID, PEOID: peoID})
	} else if !linked && idx >= 0 {
		t.state.coursePEOLinks = append(links[:idx], links[idx+1:]...)
	}
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) SetPEOOutcomeLink(peoID, outcomeID string, linked bool) error {
	if _, ok := t.state.peos[peoID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityPEO, ID: peoID}
	}
	if _, ok := t.state.outcomes[outcomeID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityStudentOutcome, ID: outcomeID}
	}
	links := t.state.peoOutcomeLinks
	idx := -1
	for i, l := range links {
		if l.PEOID == peoID && l.OutcomeID == outcomeID {
			idx = i
			break
		}
	}
	if linked && idx < 0 {
		t.state.peoOutcomeLinks = append(links, domain.PEOOutcomeLink{PEOID: peoID, OutcomeID: outcomeID})
	} else if !linked && idx >= 0 {
		t.state.peoOutcomeLinks = append(links[:idx], links[idx+1:]...)
	}
	t.record(domain.EntityPEO, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) SetPEOConstituentLink(peoID, constituentID string, linked bool) error {
	if _, ok := t.state.peos[peoID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityPEO, ID: peoID}
	}
	if _, ok := t.state.constituents[constituentID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityMissionConstituent, ID: constituentID}
	}
	links := t.state.peoConstituentLinks
	idx := -1
	for i, l := range links {
		if l.PEOID == peoID && l.ConstituentID == constituentID {
			idx = i
			break
		}
	}
	if linked && idx < 0 {
		t.state.peoConstituentLinks = append(links, domain.PEOConstituentLink{PEOID: peoID, ConstituentID: constituentID})
	} else if !linked && idx >= 0 {
		t.state.peoConstituentLinks = append(links[:idx], links[idx+1:]...)
	}
	t.record(domain.EntityPEO, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) SetCourseObjectiveLink(courseID, objectiveID string, linked bool) error {
	if _, ok := t.state.courses[courseID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	if _, ok := t.state.objectives[objectiveID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityObjective, ID: objectiveID}
	}
	links := t.state.courseObjectiveLinks
	idx := -1
	for i, l := range links {
		if l.CourseID == courseID && l.ObjectiveID == objectiveID {
			idx = i
			break
		}
	}
	if linked && idx < 0 {
		t.state.courseObjectiveLinks = append(links, domain.CourseObjectiveLink{CourseID: courseID, ObjectiveID: objectiveID})
	} else if !linked && idx >= 0 {
		t.state.courseObjectiveLinks = append(links[:idx], links[idx+1:]...)
	}
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

// Structure placement --------------------------------------------------------

func (t *transaction) PlaceCourseInRoot(courseID string, branch domain.BlockParent) error {
	if _, ok := t.state.courses[courseID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	if _, ok := t.state.structure[branch]; !ok {
		return domain.ValidationError{Field: "branch", Message: "unknown structure branch"}
	}
	t.placeInRoot(courseID, branch)
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) PlaceCourseInBlock(courseID, blockID string) error {
	if _, ok := t.state.courses[courseID]; !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	block, ok := t.state.blocks[blockID]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityProgramBlock, ID: blockID}
	}
	t.stripFromStructure(courseID)
	block.CourseIDs = append(block.CourseIDs, courseID)
	block.UpdatedAt = t.now
	t.state.blocks[blockID] = block
	t.record(domain.EntityProgramBlock, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) placeInRoot(courseID string, branch domain.BlockParent) {
	t.stripFromStructure(courseID)
	t.state.structure[branch] = append(t.state.structure[branch], courseID)
}

// stripFromStructure removes the course from every root list and every
// sub-block so the exclusivity invariant holds after any move.
func (t *transaction) stripFromStructure(courseID string) {
	for branch, ids := range t.state.structure {
		trimmed := removeString(ids, courseID)
		if len(trimmed) != len(ids) {
			t.state.structure[branch] = trimmed
		}
	}
	for id, block := range t.state.blocks {
		trimmed := removeString(block.CourseIDs, courseID)
		if len(trimmed) != len(block.CourseIDs) {
			block.CourseIDs = trimmed
			block.UpdatedAt = t.now
			t.state.blocks[id] = block
		}
	}
}

// CLO editing ----------------------------------------------------------------

func (t *transaction) AppendCLO(courseID string, lang domain.Language, text string) (int, error) {
	course, ok := t.state.courses[courseID]
	if !ok {
		return 0, domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	course = cloneCourse(course)
	var index int
	switch lang {
	case domain.LanguageEN:
		course.CLOs.EN = append(course.CLOs.EN, text)
		index = len(course.CLOs.EN) - 1
	default:
		course.CLOs.VI = append(course.CLOs.VI, text)
		index = len(course.CLOs.VI) - 1
	}
	course.UpdatedAt = t.now
	t.state.courses[courseID] = course
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return index, nil
}

func (t *transaction) UpdateCLO(courseID string, lang domain.Language, index int, text string) error {
	course, ok := t.state.courses[courseID]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	course = cloneCourse(course)
	var list []string
	if lang == domain.LanguageEN {
		list = course.CLOs.EN
	} else {
		list = course.CLOs.VI
	}
	if index < 0 || index >= len(list) {
		return domain.ValidationError{Field: "index", Message: "learning outcome index out of range"}
	}
	list[index] = text
	course.UpdatedAt = t.now
	t.state.courses[courseID] = course
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) DeleteCLO(courseID string, index int) error {
	course, ok := t.state.courses[courseID]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	course = cloneCourse(course)
	if index < 0 || index >= course.CLOs.Max() {
		return domain.ValidationError{Field: "index", Message: "learning outcome index out of range"}
	}
	if index < len(course.CLOs.VI) {
		course.CLOs.VI = append(course.CLOs.VI[:index], course.CLOs.VI[index+1:]...)
	}
	if index < len(course.CLOs.EN) {
		course.CLOs.EN = append(course.CLOs.EN[:index], course.CLOs.EN[index+1:]...)
	}
	kept := course.CLOMap[:0]
	for _, m := range course.CLOMap {
		switch {
		case m.CLOIndex == index:
			// mapping row dies with its CLO
		case m.CLOIndex > index:
			m.CLOIndex--
			kept = append(kept, m)
		default:
			kept = append(kept, m)
		}
	}
	course.CLOMap = kept
	course.UpdatedAt = t.now
	t.state.courses[courseID] = course
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) PutCLOMapping(courseID string, mapping domain.CLOMapping) error {
	course, ok := t.state.courses[courseID]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	course = cloneCourse(course)
	if mapping.CLOIndex < 0 || mapping.CLOIndex >= course.CLOs.Max() {
		return domain.ValidationError{Field: "clo_index", Message: "mapping index exceeds the learning outcome list"}
	}
	mapping = cloneCLOMapping(mapping)
	replaced := false
	for i := range course.CLOMap {
		if course.CLOMap[i].CLOIndex == mapping.CLOIndex {
			course.CLOMap[i] = mapping
			replaced = true
			break
		}
	}
	if !replaced {
		course.CLOMap = append(course.CLOMap, mapping)
		sortCLOMap(course.CLOMap)
	}
	course.UpdatedAt = t.now
	t.state.courses[courseID] = course
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) RemoveCLOMapping(courseID string, cloIndex int) error {
	course, ok := t.state.courses[courseID]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
	}
	course = cloneCourse(course)
	kept := course.CLOMap[:0]
	for _, m := range course.CLOMap {
		if m.CLOIndex != cloIndex {
			kept = append(kept, m)
		}
	}
	course.CLOMap = kept
	course.UpdatedAt = t.now
	t.state.courses[courseID] = course
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

func (t *transaction) SetGeneralInfo(info domain.GeneralInfo) error {
	t.state.general = info
	t.record(domain.EntityCourse, domain.ActionUpdate, nil, nil)
	return nil
}

// Helpers --------------------------------------------------------------------

// normalizeInstructors guarantees at most one main instructor; when none
// is marked, the first listed instructor becomes main.
func normalizeInstructors(course *Course) {
	if len(course.InstructorIDs) == 0 {
		return
	}
	if course.InstructorDetails == nil {
		course.InstructorDetails = make(map[string]domain.InstructorDetail)
	}
	mainSeen := false
	for _, id := range course.InstructorIDs {
		detail := course.InstructorDetails[id]
		if detail.IsMain {
			if mainSeen {
				detail.IsMain = false
				course.InstructorDetails[id] = detail
			}
			mainSeen = true
		}
	}
	if !mainSeen {
		first := course.InstructorIDs[0]
		detail := course.InstructorDetails[first]
		detail.IsMain = true
		course.InstructorDetails[first] = detail
	}
}

func sortCLOMap(mappings []domain.CLOMapping) {
	for i := 1; i < len(mappings); i++ {
		for j := i; j > 0 && mappings[j].CLOIndex < mappings[j-1].CLOIndex; j-- {
			mappings[j], mappings[j-1] = mappings[j-1], mappings[j]
		}
	}
}

func removeString(list []string, target string) []string {
	out := list[:0]
	for _, v := range list {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

func containsString(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

func filterOutcomeLinks(links []domain.CourseOutcomeLink, keep func(domain.CourseOutcomeLink) bool) []domain.CourseOutcomeLink {
	out := links[:0]
	for _, l := range links {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func filterIndicatorLinks(links []domain.CourseIndicatorLink, keep func(domain.CourseIndicatorLink) bool) []domain.CourseIndicatorLink {
	out := links[:0]
	for _, l := range links {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func filterCoursePEOLinks(links []domain.CoursePEOLink, keep func(domain.CoursePEOLink) bool) []domain.CoursePEOLink {
	out := links[:0]
	for _, l := range links {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func filterPEOOutcomeLinks(links []domain.PEOOutcomeLink, keep func(domain.PEOOutcomeLink) bool) []domain.PEOOutcomeLink {
	out := links[:0]
	for _, l := range links {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func filterPEOConstituentLinks(links []domain.PEOConstituentLink, keep func(domain.PEOConstituentLink) bool) []domain.PEOConstituentLink {
	out := links[:0]
	for _, l := range links {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func filterCourseObjectiveLinks(links []domain.CourseObjectiveLink, keep func(domain.CourseObjectiveLink) bool) []domain.CourseObjectiveLink {
	out := links[:0]
	for _, l := range links {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
