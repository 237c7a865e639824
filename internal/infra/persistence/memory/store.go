// Package memory provides the in-memory implementation of the program-state
// store used for tests and as the transactional engine behind the durable
// backends.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"curricore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// KnowledgeArea aliases domain.KnowledgeArea for in-memory operations.
	KnowledgeArea = domain.KnowledgeArea
	// StudentOutcome aliases domain.StudentOutcome.
	StudentOutcome = domain.StudentOutcome
	// PEO aliases domain.PEO.
	PEO = domain.PEO
	// MissionConstituent aliases domain.MissionConstituent.
	MissionConstituent = domain.MissionConstituent
	// Course aliases domain.Course.
	Course = domain.Course
	// ProgramBlock aliases domain.ProgramBlock.
	ProgramBlock = domain.ProgramBlock
	// MoetObjective aliases domain.MoetObjective.
	MoetObjective = domain.MoetObjective
	// FacultyMember aliases domain.FacultyMember.
	FacultyMember = domain.FacultyMember
	// Department aliases domain.Department.
	Department = domain.Department
	// AcademicFaculty aliases domain.AcademicFaculty.
	AcademicFaculty = domain.AcademicFaculty
	// School aliases domain.School.
	School = domain.School
	// TeachingMethod aliases domain.TeachingMethod.
	TeachingMethod = domain.TeachingMethod
	// AssessmentMethod aliases domain.AssessmentMethod.
	AssessmentMethod = domain.AssessmentMethod
	// LibraryResource aliases domain.LibraryResource.
	LibraryResource = domain.LibraryResource
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type programState struct {
	areas        map[string]KnowledgeArea
	outcomes     map[string]StudentOutcome
	peos         map[string]PEO
	constituents map[string]MissionConstituent
	courses      map[string]Course
	blocks       map[string]ProgramBlock
	objectives   map[string]MoetObjective
	faculty      map[string]FacultyMember
	departments  map[string]Department
	academics    map[string]AcademicFaculty
	schools      map[string]School
	teaching     map[string]TeachingMethod
	assessment   map[string]AssessmentMethod
	library      map[string]LibraryResource

	courseOutcomeLinks   []domain.CourseOutcomeLink
	courseIndicatorLinks []domain.CourseIndicatorLink
	coursePEOLinks       []domain.CoursePEOLink
	peoOutcomeLinks      []domain.PEOOutcomeLink
	peoConstituentLinks  []domain.PEOConstituentLink
	courseObjectiveLinks []domain.CourseObjectiveLink

	structure    domain.ProgramStructure
	general      domain.GeneralInfo
	objectiveSeq int
}

// Snapshot captures a point-in-time clone of the whole program tree. It is
// the unit of persistence for every durable backend.
type Snapshot struct {
	Areas        map[string]KnowledgeArea      `json:"areas"`
	Outcomes     map[string]StudentOutcome     `json:"outcomes"`
	PEOs         map[string]PEO                `json:"peos"`
	Constituents map[string]MissionConstituent `json:"constituents"`
	Courses      map[string]Course             `json:"courses"`
	Blocks       map[string]ProgramBlock       `json:"blocks"`
	Objectives   map[string]MoetObjective      `json:"objectives"`
	Faculty      map[string]FacultyMember      `json:"faculty"`
	Departments  map[string]Department         `json:"departments"`
	Academics    map[string]AcademicFaculty    `json:"academics"`
	Schools      map[string]School             `json:"schools"`
	Teaching     map[string]TeachingMethod     `json:"teaching"`
	Assessment   map[string]AssessmentMethod   `json:"assessment"`
	Library      map[string]LibraryResource    `json:"library"`

	CourseOutcomeLinks   []domain.CourseOutcomeLink   `json:"course_outcome_links"`
	CourseIndicatorLinks []domain.CourseIndicatorLink `json:"course_indicator_links"`
	CoursePEOLinks       []domain.CoursePEOLink       `json:"course_peo_links"`
	PEOOutcomeLinks      []domain.PEOOutcomeLink      `json:"peo_outcome_links"`
	PEOConstituentLinks  []domain.PEOConstituentLink  `json:"peo_constituent_links"`
	CourseObjectiveLinks []domain.CourseObjectiveLink `json:"course_objective_links"`

	Structure domain.ProgramStructure `json:"structure"`
	General   domain.GeneralInfo      `json:"general"`
}

func newProgramState() programState {
	state := programState{
		areas:        make(map[string]KnowledgeArea),
		outcomes:     make(map[string]StudentOutcome),
		peos:         make(map[string]PEO),
		constituents: make(map[string]MissionConstituent),
		courses:      make(map[string]Course),
		blocks:       make(map[string]ProgramBlock),
		objectives:   make(map[string]MoetObjective),
		faculty:      make(map[string]FacultyMember),
		departments:  make(map[string]Department),
		academics:    make(map[string]AcademicFaculty),
		schools:      make(map[string]School),
		teaching:     make(map[string]TeachingMethod),
		assessment:   make(map[string]AssessmentMethod),
		library:      make(map[string]LibraryResource),
		structure:    make(domain.ProgramStructure),
	}
	for _, branch := range domain.BranchOrder() {
		state.structure[branch] = nil
	}
	return state
}

func (s programState) clone() programState {
	cloned := newProgramState()
	for k, v := range s.areas {
		cloned.areas[k] = v
	}
	for k, v := range s.outcomes {
		cloned.outcomes[k] = cloneOutcome(v)
	}
	for k, v := range s.peos {
		cloned.peos[k] = v
	}
	for k, v := range s.constituents {
		cloned.constituents[k] = v
	}
	for k, v := range s.courses {
		cloned.courses[k] = cloneCourse(v)
	}
	for k, v := range s.blocks {
		cloned.blocks[k] = cloneBlock(v)
	}
	for k, v := range s.objectives {
		cloned.objectives[k] = cloneObjective(v)
	}
	for k, v := range s.faculty {
		cloned.faculty[k] = v
	}
	for k, v := range s.departments {
		cloned.departments[k] = v
	}
	for k, v := range s.academics {
		cloned.academics[k] = v
	}
	for k, v := range s.schools {
		cloned.schools[k] = v
	}
	for k, v := range s.teaching {
		cloned.teaching[k] = v
	}
	for k, v := range s.assessment {
		cloned.assessment[k] = v
	}
	for k, v := range s.library {
		cloned.library[k] = v
	}
	cloned.courseOutcomeLinks = append([]domain.CourseOutcomeLink(nil), s.courseOutcomeLinks...)
	cloned.courseIndicatorLinks = append([]domain.CourseIndicatorLink(nil), s.courseIndicatorLinks...)
	cloned.coursePEOLinks = append([]domain.CoursePEOLink(nil), s.coursePEOLinks...)
	cloned.peoOutcomeLinks = append([]domain.PEOOutcomeLink(nil), s.peoOutcomeLinks...)
	cloned.peoConstituentLinks = append([]domain.PEOConstituentLink(nil), s.peoConstituentLinks...)
	cloned.courseObjectiveLinks = append([]domain.CourseObjectiveLink(nil), s.courseObjectiveLinks...)
	cloned.structure = s.structure.Clone()
	cloned.general = s.general
	cloned.objectiveSeq = s.objectiveSeq
	return cloned
}

func cloneOutcome(o StudentOutcome) StudentOutcome {
	cp := o
	cp.Indicators = append([]domain.PerformanceIndicator(nil), o.Indicators...)
	return cp
}

func cloneCourse(c Course) Course {
	cp := c
	cp.PrerequisiteIDs = append([]string(nil), c.PrerequisiteIDs...)
	cp.CoRequisiteIDs = append([]string(nil), c.CoRequisiteIDs...)
	cp.Textbooks = append([]domain.Textbook(nil), c.Textbooks...)
	cp.CLOs.VI = append([]string(nil), c.CLOs.VI...)
	cp.CLOs.EN = append([]string(nil), c.CLOs.EN...)
	cp.Topics = make([]domain.CourseTopic, len(c.Topics))
	for i, topic := range c.Topics {
		t := topic
		t.Activities = append([]domain.TopicActivity(nil), topic.Activities...)
		t.ReadingRefs = append([]domain.ReadingRef(nil), topic.ReadingRefs...)
		cp.Topics[i] = t
	}
	cp.AssessmentPlan = append([]domain.AssessmentItem(nil), c.AssessmentPlan...)
	cp.InstructorIDs = append([]string(nil), c.InstructorIDs...)
	if c.InstructorDetails != nil {
		cp.InstructorDetails = make(map[string]domain.InstructorDetail, len(c.InstructorDetails))
		for k, v := range c.InstructorDetails {
			cp.InstructorDetails[k] = v
		}
	}
	cp.CLOMap = make([]domain.CLOMapping, len(c.CLOMap))
	for i, m := range c.CLOMap {
		cp.CLOMap[i] = cloneCLOMapping(m)
	}
	return cp
}

func cloneCLOMapping(m domain.CLOMapping) domain.CLOMapping {
	cp := m
	cp.TopicIDs = append([]string(nil), m.TopicIDs...)
	cp.TeachingMethodIDs = append([]string(nil), m.TeachingMethodIDs...)
	cp.AssessmentMethodIDs = append([]string(nil), m.AssessmentMethodIDs...)
	cp.OutcomeIDs = append([]string(nil), m.OutcomeIDs...)
	cp.IndicatorIDs = append([]string(nil), m.IndicatorIDs...)
	cp.ObjectiveIDs = append([]string(nil), m.ObjectiveIDs...)
	return cp
}

func cloneBlock(b ProgramBlock) ProgramBlock {
	cp := b
	cp.CourseIDs = append([]string(nil), b.CourseIDs...)
	if b.PreferredSemester != nil {
		sem := *b.PreferredSemester
		cp.PreferredSemester = &sem
	}
	return cp
}

func cloneObjective(o MoetObjective) MoetObjective {
	cp := o
	cp.PEOIDs = append([]string(nil), o.PEOIDs...)
	cp.OutcomeIDs = append([]string(nil), o.OutcomeIDs...)
	return cp
}

// Store provides an in-memory transactional store for the program state.
type Store struct {
	mu     sync.RWMutex
	state  programState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newProgramState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the transaction timestamp source; intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.nowFn = now
	}
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy replaces the committed state only when fn succeeds and
// no registered rule reports a blocking violation.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newView(&snapshot))
}

// ExportState returns a deep copy of the committed state as a Snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state)
}

// ImportState replaces the committed state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(normalizeSnapshot(snapshot))
}

func snapshotFromState(state programState) Snapshot {
	snap := Snapshot{
		Areas:        make(map[string]KnowledgeArea, len(state.areas)),
		Outcomes:     make(map[string]StudentOutcome, len(state.outcomes)),
		PEOs:         make(map[string]PEO, len(state.peos)),
		Constituents: make(map[string]MissionConstituent, len(state.constituents)),
		Courses:      make(map[string]Course, len(state.courses)),
		Blocks:       make(map[string]ProgramBlock, len(state.blocks)),
		Objectives:   make(map[string]MoetObjective, len(state.objectives)),
		Faculty:      make(map[string]FacultyMember, len(state.faculty)),
		Departments:  make(map[string]Department, len(state.departments)),
		Academics:    make(map[string]AcademicFaculty, len(state.academics)),
		Schools:      make(map[string]School, len(state.schools)),
		Teaching:     make(map[string]TeachingMethod, len(state.teaching)),
		Assessment:   make(map[string]AssessmentMethod, len(state.assessment)),
		Library:      make(map[string]LibraryResource, len(state.library)),
	}
	for k, v := range state.areas {
		snap.Areas[k] = v
	}
	for k, v := range state.outcomes {
		snap.Outcomes[k] = cloneOutcome(v)
	}
	for k, v := range state.peos {
		snap.PEOs[k] = v
	}
	for k, v := range state.constituents {
		snap.Constituents[k] = v
	}
	for k, v := range state.courses {
		snap.Courses[k] = cloneCourse(v)
	}
	for k, v := range state.blocks {
		snap.Blocks[k] = cloneBlock(v)
	}
	for k, v := range state.objectives {
		snap.Objectives[k] = cloneObjective(v)
	}
	for k, v := range state.faculty {
		snap.Faculty[k] = v
	}
	for k, v := range state.departments {
		snap.Departments[k] = v
	}
	for k, v := range state.academics {
		snap.Academics[k] = v
	}
	for k, v := range state.schools {
		snap.Schools[k] = v
	}
	for k, v := range state.teaching {
		snap.Teaching[k] = v
	}
	for k, v := range state.assessment {
		snap.Assessment[k] = v
	}
	for k, v := range state.library {
		snap.Library[k] = v
	}
	snap.CourseOutcomeLinks = append([]domain.CourseOutcomeLink(nil), state.courseOutcomeLinks...)
	snap.CourseIndicatorLinks = append([]domain.CourseIndicatorLink(nil), state.courseIndicatorLinks...)
	snap.CoursePEOLinks = append([]domain.CoursePEOLink(nil), state.coursePEOLinks...)
	snap.PEOOutcomeLinks = append([]domain.PEOOutcomeLink(nil), state.peoOutcomeLinks...)
	snap.PEOConstituentLinks = append([]domain.PEOConstituentLink(nil), state.peoConstituentLinks...)
	snap.CourseObjectiveLinks = append([]domain.CourseObjectiveLink(nil), state.courseObjectiveLinks...)
	snap.Structure = state.structure.Clone()
	snap.General = state.general
	return snap
}

func stateFromSnapshot(snap Snapshot) programState {
	state := newProgramState()
	for k, v := range snap.Areas {
		state.areas[k] = v
	}
	for k, v := range snap.Outcomes {
		state.outcomes[k] = cloneOutcome(v)
	}
	for k, v := range snap.PEOs {
		state.peos[k] = v
	}
	for k, v := range snap.Constituents {
		state.constituents[k] = v
	}
	for k, v := range snap.Courses {
		state.courses[k] = cloneCourse(v)
	}
	for k, v := range snap.Blocks {
		state.blocks[k] = cloneBlock(v)
	}
	for k, v := range snap.Objectives {
		state.objectives[k] = cloneObjective(v)
		if v.Seq >= state.objectiveSeq {
			state.objectiveSeq = v.Seq + 1
		}
	}
	for k, v := range snap.Faculty {
		state.faculty[k] = v
	}
	for k, v := range snap.Departments {
		state.departments[k] = v
	}
	for k, v := range snap.Academics {
		state.academics[k] = v
	}
	for k, v := range snap.Schools {
		state.schools[k] = v
	}
	for k, v := range snap.Teaching {
		state.teaching[k] = v
	}
	for k, v := range snap.Assessment {
		state.assessment[k] = v
	}
	for k, v := range snap.Library {
		state.library[k] = v
	}
	state.courseOutcomeLinks = append([]domain.CourseOutcomeLink(nil), snap.CourseOutcomeLinks...)
	state.courseIndicatorLinks = append([]domain.CourseIndicatorLink(nil), snap.CourseIndicatorLinks...)
	state.coursePEOLinks = append([]domain.CoursePEOLink(nil), snap.CoursePEOLinks...)
	state.peoOutcomeLinks = append([]domain.PEOOutcomeLink(nil), snap.PEOOutcomeLinks...)
	state.peoConstituentLinks = append([]domain.PEOConstituentLink(nil), snap.PEOConstituentLinks...)
	state.courseObjectiveLinks = append([]domain.CourseObjectiveLink(nil), snap.CourseObjectiveLinks...)
	for branch, ids := range snap.Structure {
		state.structure[branch] = append([]string(nil), ids...)
	}
	state.general = snap.General
	return state
}

// normalizeSnapshot repairs snapshots written by older builds: nil buckets
// become empty, all branches exist, and link rows with an empty coverage
// level are dropped rather than hydrated.
func normalizeSnapshot(snap Snapshot) Snapshot {
	if snap.Areas == nil {
		snap.Areas = map[string]KnowledgeArea{}
	}
	if snap.Outcomes == nil {
		snap.Outcomes = map[string]StudentOutcome{}
	}
	if snap.PEOs == nil {
		snap.PEOs = map[string]PEO{}
	}
	if snap.Constituents == nil {
		snap.Constituents = map[string]MissionConstituent{}
	}
	if snap.Courses == nil {
		snap.Courses = map[string]Course{}
	}
	if snap.Blocks == nil {
		snap.Blocks = map[string]ProgramBlock{}
	}
	if snap.Objectives == nil {
		snap.Objectives = map[string]MoetObjective{}
	}
	if snap.Faculty == nil {
		snap.Faculty = map[string]FacultyMember{}
	}
	if snap.Departments == nil {
		snap.Departments = map[string]Department{}
	}
	if snap.Academics == nil {
		snap.Academics = map[string]AcademicFaculty{}
	}
	if snap.Schools == nil {
		snap.Schools = map[string]School{}
	}
	if snap.Teaching == nil {
		snap.Teaching = map[string]TeachingMethod{}
	}
	if snap.Assessment == nil {
		snap.Assessment = map[string]AssessmentMethod{}
	}
	if snap.Library == nil {
		snap.Library = map[string]LibraryResource{}
	}
	if snap.Structure == nil {
		snap.Structure = make(domain.ProgramStructure)
	}
	for _, branch := range domain.BranchOrder() {
		if _, ok := snap.Structure[branch]; !ok {
			snap.Structure[branch] = nil
		}
	}
	kept := snap.CourseOutcomeLinks[:0]
	for _, link := range snap.CourseOutcomeLinks {
		if link.Level != domain.LevelNone {
			kept = append(kept, link)
		}
	}
	snap.CourseOutcomeLinks = kept
	return snap
}

// Read helpers ---------------------------------------------------------------

// GetCourse retrieves a course by id from committed state.
func (s *Store) GetCourse(id string) (Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.courses[id]
	if !ok {
		return Course{}, false
	}
	return cloneCourse(c), true
}

// ListCourses returns all courses from committed state ordered by id.
func (s *Store) ListCourses() []Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Course, 0, len(s.state.courses))
	for _, c := range s.state.courses {
		out = append(out, cloneCourse(c))
	}
	sortByID(out, func(c Course) string { return c.ID })
	return out
}

// ListKnowledgeAreas returns all knowledge areas ordered by id.
func (s *Store) ListKnowledgeAreas() []KnowledgeArea {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]KnowledgeArea, 0, len(s.state.areas))
	for _, a := range s.state.areas {
		out = append(out, a)
	}
	sortByID(out, func(a KnowledgeArea) string { return a.ID })
	return out
}

// ListStudentOutcomes returns all student outcomes ordered by id.
func (s *Store) ListStudentOutcomes() []StudentOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StudentOutcome, 0, len(s.state.outcomes))
	for _, o := range s.state.outcomes {
		out = append(out, cloneOutcome(o))
	}
	sortByID(out, func(o StudentOutcome) string { return o.ID })
	return out
}

// ListProgramBlocks returns all structure sub-blocks ordered by id.
func (s *Store) ListProgramBlocks() []ProgramBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProgramBlock, 0, len(s.state.blocks))
	for _, b := range s.state.blocks {
		out = append(out, cloneBlock(b))
	}
	sortByID(out, func(b ProgramBlock) string { return b.ID })
	return out
}

// ListObjectives returns all MOET objectives ordered by id.
func (s *Store) ListObjectives() []MoetObjective {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MoetObjective, 0, len(s.state.objectives))
	for _, o := range s.state.objectives {
		out = append(out, cloneObjective(o))
	}
	sortByID(out, func(o MoetObjective) string { return o.ID })
	return out
}

// CourseOutcomeLinks returns a copy of the course-outcome mapping rows.
func (s *Store) CourseOutcomeLinks() []domain.CourseOutcomeLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CourseOutcomeLink(nil), s.state.courseOutcomeLinks...)
}

// Structure returns a copy of the root structure lists.
func (s *Store) Structure() domain.ProgramStructure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.structure.Clone()
}

// GeneralInfo returns the program-level configuration.
func (s *Store) GeneralInfo() domain.GeneralInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.general
}

func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
