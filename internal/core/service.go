package core

import (
	"context"
	"time"

	"curricore/internal/infra/persistence/memory"
	"curricore/pkg/domain"
)

// Service exposes higher-level transactional operations over the program
// state. Every mutation runs inside a single store transaction so the
// consistency rules see the complete post-mutation state.
type Service struct {
	store   PersistentStore
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithClock overrides the service time source.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer attaches a tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  NewNopLogger(),
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine. A nil engine gets the default policy set.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// View executes fn against a read-only state snapshot.
func (s *Service) View(ctx context.Context, fn func(TransactionView) error) error {
	return s.store.View(ctx, fn)
}

// run wraps a transaction with tracing, metrics, and logging.
func (s *Service) run(ctx context.Context, operation string, fn func(Transaction) error) (Result, error) {
	ctx, span := s.tracer.Start(ctx, operation)
	started := s.clock.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := s.clock.Now().Sub(started)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	span.End(err)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "error", err)
		return res, err
	}
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityWarn {
			s.logger.Warn("rule warning", "operation", operation, "rule", v.Rule, "message", v.Message)
		}
	}
	s.logger.Debug("operation committed", "operation", operation, "duration_ms", float64(duration)/float64(time.Millisecond))
	return res, nil
}

// Program outcomes -----------------------------------------------------------

// CreateStudentOutcome persists a new student outcome.
func (s *Service) CreateStudentOutcome(ctx context.Context, outcome StudentOutcome) (StudentOutcome, Result, error) {
	var created StudentOutcome
	res, err := s.run(ctx, "create_student_outcome", func(tx Transaction) error {
		var err error
		created, err = tx.CreateStudentOutcome(outcome)
		return err
	})
	return created, res, err
}

// UpdateStudentOutcome mutates a student outcome using the provided mutator.
func (s *Service) UpdateStudentOutcome(ctx context.Context, id string, mutator func(*StudentOutcome) error) (StudentOutcome, Result, error) {
	var updated StudentOutcome
	res, err := s.run(ctx, "update_student_outcome", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateStudentOutcome(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteStudentOutcome removes an outcome and scrubs every reference to it
// and its performance indicators.
func (s *Service) DeleteStudentOutcome(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_student_outcome", func(tx Transaction) error {
		return tx.DeleteStudentOutcome(id)
	})
}

// CreatePEO persists a new program educational objective.
func (s *Service) CreatePEO(ctx context.Context, peo PEO) (PEO, Result, error) {
	var created PEO
	res, err := s.run(ctx, "create_peo", func(tx Transaction) error {
		var err error
		created, err = tx.CreatePEO(peo)
		return err
	})
	return created, res, err
}

// UpdatePEO mutates a PEO using the provided mutator.
func (s *Service) UpdatePEO(ctx context.Context, id string, mutator func(*PEO) error) (PEO, Result, error) {
	var updated PEO
	res, err := s.run(ctx, "update_peo", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdatePEO(id, mutator)
		return err
	})
	return updated, res, err
}

// DeletePEO removes a PEO and all of its mapping rows.
func (s *Service) DeletePEO(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_peo", func(tx Transaction) error {
		return tx.DeletePEO(id)
	})
}

// CreateMissionConstituent persists a mission constituent.
func (s *Service) CreateMissionConstituent(ctx context.Context, mc MissionConstituent) (MissionConstituent, Result, error) {
	var created MissionConstituent
	res, err := s.run(ctx, "create_mission_constituent", func(tx Transaction) error {
		var err error
		created, err = tx.CreateMissionConstituent(mc)
		return err
	})
	return created, res, err
}

// UpdateMissionConstituent mutates a mission constituent.
func (s *Service) UpdateMissionConstituent(ctx context.Context, id string, mutator func(*MissionConstituent) error) (MissionConstituent, Result, error) {
	var updated MissionConstituent
	res, err := s.run(ctx, "update_mission_constituent", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateMissionConstituent(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteMissionConstituent removes a constituent and its PEO links.
func (s *Service) DeleteMissionConstituent(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_mission_constituent", func(tx Transaction) error {
		return tx.DeleteMissionConstituent(id)
	})
}

// CreateObjective persists a ministry-dialect objective; its Seq is
// assigned from the creation counter.
func (s *Service) CreateObjective(ctx context.Context, obj MoetObjective) (MoetObjective, Result, error) {
	var created MoetObjective
	res, err := s.run(ctx, "create_objective", func(tx Transaction) error {
		var err error
		created, err = tx.CreateObjective(obj)
		return err
	})
	return created, res, err
}

// UpdateObjective mutates an objective; Seq is immutable.
func (s *Service) UpdateObjective(ctx context.Context, id string, mutator func(*MoetObjective) error) (MoetObjective, Result, error) {
	var updated MoetObjective
	res, err := s.run(ctx, "update_objective", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateObjective(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteObjective removes an objective together with its manual course
// links and CLO-mapping references.
func (s *Service) DeleteObjective(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_objective", func(tx Transaction) error {
		return tx.DeleteObjective(id)
	})
}

// Knowledge areas ------------------------------------------------------------

// CreateKnowledgeArea persists a knowledge area.
func (s *Service) CreateKnowledgeArea(ctx context.Context, area KnowledgeArea) (KnowledgeArea, Result, error) {
	var created KnowledgeArea
	res, err := s.run(ctx, "create_knowledge_area", func(tx Transaction) error {
		var err error
		created, err = tx.CreateKnowledgeArea(area)
		return err
	})
	return created, res, err
}

// UpdateKnowledgeArea mutates a knowledge area.
func (s *Service) UpdateKnowledgeArea(ctx context.Context, id string, mutator func(*KnowledgeArea) error) (KnowledgeArea, Result, error) {
	var updated KnowledgeArea
	res, err := s.run(ctx, "update_knowledge_area", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateKnowledgeArea(id, mutator)
		return err
	})
	return updated, res, err
}

// RenameKnowledgeArea rewrites an area id and cascades into every
// referencing course. Returns the number of courses touched.
func (s *Service) RenameKnowledgeArea(ctx context.Context, oldID, newID string) (int, Result, error) {
	var touched int
	res, err := s.run(ctx, "rename_knowledge_area", func(tx Transaction) error {
		var err error
		touched, err = tx.RenameKnowledgeArea(oldID, newID)
		return err
	})
	if err == nil {
		s.logger.Info("knowledge area renamed", "old_id", oldID, "new_id", newID, "courses", touched)
	}
	return touched, res, err
}

// DeleteKnowledgeArea removes an unused knowledge area. Areas still
// referenced by courses are rejected with EntityInUseError.
func (s *Service) DeleteKnowledgeArea(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_knowledge_area", func(tx Transaction) error {
		return tx.DeleteKnowledgeArea(id)
	})
}

// Courses --------------------------------------------------------------------

// CreateCourse persists a new course, filling empty identification fields
// from the program defaults. Required courses are placed into their
// branch root list in the same transaction.
func (s *Service) CreateCourse(ctx context.Context, course Course) (Course, Result, error) {
	var created Course
	res, err := s.run(ctx, "create_course", func(tx Transaction) error {
		defaults := tx.Snapshot().GeneralInfo()
		if course.Code == "" {
			course.Code = defaults.DefaultCourseCode
		}
		if course.Name.VI == "" && course.Name.EN == "" {
			course.Name = defaults.DefaultCourseName
		}
		if course.Credits == 0 {
			course.Credits = defaults.DefaultCredits
		}
		var err error
		created, err = tx.CreateCourse(course)
		return err
	})
	return created, res, err
}

// UpdateCourse mutates a course using the provided mutator.
func (s *Service) UpdateCourse(ctx context.Context, id string, mutator func(*Course) error) (Course, Result, error) {
	var updated Course
	res, err := s.run(ctx, "update_course", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateCourse(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteCourse removes a course and every reference to it.
func (s *Service) DeleteCourse(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_course", func(tx Transaction) error {
		return tx.DeleteCourse(id)
	})
}

// ChangeCourseType updates a course classification and applies the
// structural move the change implies, atomically. When several elective
// blocks are eligible the caller must pass targetBlockID; otherwise
// BlockChoiceRequiredError reports the candidates.
func (s *Service) ChangeCourseType(ctx context.Context, courseID string, newType domain.CourseType, targetBlockID string) (Course, Result, error) {
	var updated Course
	res, err := s.run(ctx, "change_course_type", func(tx Transaction) error {
		view := tx.Snapshot()
		course, ok := view.FindCourse(courseID)
		if !ok {
			return domain.NotFoundError{Entity: domain.EntityCourse, ID: courseID}
		}
		area, _ := view.FindKnowledgeArea(course.KnowledgeAreaID)
		plan := PlanTypeChange(course, newType, area, view.ListProgramBlocks())

		var err error
		updated, err = tx.UpdateCourse(courseID, func(c *Course) error {
			c.Type = newType
			return nil
		})
		if err != nil {
			return err
		}

		switch plan.Kind {
		case MoveNone:
			return nil
		case MoveToRoot:
			return tx.PlaceCourseInRoot(courseID, plan.Branch)
		case MoveToBlock:
			return tx.PlaceCourseInBlock(courseID, plan.BlockID)
		case MoveAutoCreate:
			block, err := tx.CreateProgramBlock(ProgramBlock{
				Name:   domain.LocalizedText{VI: "Học phần tự chọn", EN: "Electives"},
				Parent: plan.Branch,
				Type:   domain.BlockElective,
			})
			if err != nil {
				return err
			}
			return tx.PlaceCourseInBlock(courseID, block.ID)
		case MoveChoiceRequired:
			if targetBlockID == "" {
				return domain.BlockChoiceRequiredError{CourseID: courseID, Candidates: plan.Candidates}
			}
			for _, candidate := range plan.Candidates {
				if candidate == targetBlockID {
					return tx.PlaceCourseInBlock(courseID, targetBlockID)
				}
			}
			return domain.ValidationError{Field: "block_id", Message: "target block is not an eligible elective block"}
		}
		return nil
	})
	return updated, res, err
}

// Program structure ----------------------------------------------------------

// CreateProgramBlock persists a structure sub-block.
func (s *Service) CreateProgramBlock(ctx context.Context, block ProgramBlock) (ProgramBlock, Result, error) {
	var created ProgramBlock
	res, err := s.run(ctx, "create_program_block", func(tx Transaction) error {
		var err error
		created, err = tx.CreateProgramBlock(block)
		return err
	})
	return created, res, err
}

// UpdateProgramBlock mutates a sub-block.
func (s *Service) UpdateProgramBlock(ctx context.Context, id string, mutator func(*ProgramBlock) error) (ProgramBlock, Result, error) {
	var updated ProgramBlock
	res, err := s.run(ctx, "update_program_block", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateProgramBlock(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteProgramBlock removes a sub-block; non-elective members fall back
// to the branch root list. A block still holding elective courses is
// rejected with EntityInUseError until they are retyped or moved out.
func (s *Service) DeleteProgramBlock(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_program_block", func(tx Transaction) error {
		return tx.DeleteProgramBlock(id)
	})
}

// PlaceCourseInRoot moves a course into a branch root list.
func (s *Service) PlaceCourseInRoot(ctx context.Context, courseID string, branch domain.BlockParent) (Result, error) {
	return s.run(ctx, "place_course_in_root", func(tx Transaction) error {
		return tx.PlaceCourseInRoot(courseID, branch)
	})
}

// PlaceCourseInBlock moves a course into a sub-block.
func (s *Service) PlaceCourseInBlock(ctx context.Context, courseID, blockID string) (Result, error) {
	return s.run(ctx, "place_course_in_block", func(tx Transaction) error {
		return tx.PlaceCourseInBlock(courseID, blockID)
	})
}

// Mapping edits --------------------------------------------------------------

// SetOutcomeLevel upserts a course-outcome link; LevelNone removes it.
func (s *Service) SetOutcomeLevel(ctx context.Context, courseID, outcomeID string, level domain.CoverageLevel) (Result, error) {
	return s.run(ctx, "set_outcome_level", func(tx Transaction) error {
		return tx.SetOutcomeLevel(courseID, outcomeID, level)
	})
}

// CycleOutcomeLevel advances a course-outcome link through the coverage
// cycle and returns the level now in effect.
func (s *Service) CycleOutcomeLevel(ctx context.Context, courseID, outcomeID string) (domain.CoverageLevel, Result, error) {
	var level domain.CoverageLevel
	res, err := s.run(ctx, "cycle_outcome_level", func(tx Transaction) error {
		var err error
		level, err = tx.CycleOutcomeLevel(courseID, outcomeID)
		return err
	})
	return level, res, err
}

// SetIndicatorLink toggles a course-indicator link.
func (s *Service) SetIndicatorLink(ctx context.Context, courseID, indicatorID string, linked bool) (Result, error) {
	return s.run(ctx, "set_indicator_link", func(tx Transaction) error {
		return tx.SetIndicatorLink(courseID, indicatorID, linked)
	})
}

// SetCoursePEOLink toggles a course-PEO link.
func (s *Service) SetCoursePEOLink(ctx context.Context, courseID, peoID string, linked bool) (Result, error) {
	return s.run(ctx, "set_course_peo_link", func(tx Transaction) error {
		return tx.SetCoursePEOLink(courseID, peoID, linked)
	})
}

// SetPEOOutcomeLink toggles a PEO-outcome link.
func (s *Service) SetPEOOutcomeLink(ctx context.Context, peoID, outcomeID string, linked bool) (Result, error) {
	return s.run(ctx, "set_peo_outcome_link", func(tx Transaction) error {
		return tx.SetPEOOutcomeLink(peoID, outcomeID, linked)
	})
}

// SetPEOConstituentLink toggles a PEO-constituent link.
func (s *Service) SetPEOConstituentLink(ctx context.Context, peoID, constituentID string, linked bool) (Result, error) {
	return s.run(ctx, "set_peo_constituent_link", func(tx Transaction) error {
		return tx.SetPEOConstituentLink(peoID, constituentID, linked)
	})
}

// SetCourseObjectiveLink toggles a manual course-objective link.
func (s *Service) SetCourseObjectiveLink(ctx context.Context, courseID, objectiveID string, linked bool) (Result, error) {
	return s.run(ctx, "set_course_objective_link", func(tx Transaction) error {
		return tx.SetCourseObjectiveLink(courseID, objectiveID, linked)
	})
}

// Syllabus edits -------------------------------------------------------------

// AppendCLO appends a learning outcome to one language list and returns
// its index.
func (s *Service) AppendCLO(ctx context.Context, courseID string, lang domain.Language, text string) (int, Result, error) {
	var index int
	res, err := s.run(ctx, "append_clo", func(tx Transaction) error {
		var err error
		index, err = tx.AppendCLO(courseID, lang, text)
		return err
	})
	return index, res, err
}

// UpdateCLO replaces learning outcome text at an index.
func (s *Service) UpdateCLO(ctx context.Context, courseID string, lang domain.Language, index int, text string) (Result, error) {
	return s.run(ctx, "update_clo", func(tx Transaction) error {
		return tx.UpdateCLO(courseID, lang, index, text)
	})
}

// DeleteCLO removes the learning outcome row at an index from both
// language lists and realigns the mapping array.
func (s *Service) DeleteCLO(ctx context.Context, courseID string, index int) (Result, error) {
	return s.run(ctx, "delete_clo", func(tx Transaction) error {
		return tx.DeleteCLO(courseID, index)
	})
}

// PutCLOMapping replaces or inserts the mapping row for a CLO index.
func (s *Service) PutCLOMapping(ctx context.Context, courseID string, mapping domain.CLOMapping) (Result, error) {
	return s.run(ctx, "put_clo_mapping", func(tx Transaction) error {
		return tx.PutCLOMapping(courseID, mapping)
	})
}

// RemoveCLOMapping drops the mapping row for a CLO index.
func (s *Service) RemoveCLOMapping(ctx context.Context, courseID string, cloIndex int) (Result, error) {
	return s.run(ctx, "remove_clo_mapping", func(tx Transaction) error {
		return tx.RemoveCLOMapping(courseID, cloIndex)
	})
}

// Program configuration ------------------------------------------------------

// SetGeneralInfo replaces the program-level configuration.
func (s *Service) SetGeneralInfo(ctx context.Context, info GeneralInfo) (Result, error) {
	return s.run(ctx, "set_general_info", func(tx Transaction) error {
		return tx.SetGeneralInfo(info)
	})
}

// Faculty and catalogs -------------------------------------------------------

// CreateFacultyMember persists a teaching-staff profile.
func (s *Service) CreateFacultyMember(ctx context.Context, fm FacultyMember) (FacultyMember, Result, error) {
	var created FacultyMember
	res, err := s.run(ctx, "create_faculty_member", func(tx Transaction) error {
		var err error
		created, err = tx.CreateFacultyMember(fm)
		return err
	})
	return created, res, err
}

// UpdateFacultyMember mutates a faculty profile.
func (s *Service) UpdateFacultyMember(ctx context.Context, id string, mutator func(*FacultyMember) error) (FacultyMember, Result, error) {
	var updated FacultyMember
	res, err := s.run(ctx, "update_faculty_member", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateFacultyMember(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteFacultyMember removes a profile and strips instructor references
// from courses.
func (s *Service) DeleteFacultyMember(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_faculty_member", func(tx Transaction) error {
		return tx.DeleteFacultyMember(id)
	})
}

// CreateDepartment persists a department.
func (s *Service) CreateDepartment(ctx context.Context, d Department) (Department, Result, error) {
	var created Department
	res, err := s.run(ctx, "create_department", func(tx Transaction) error {
		var err error
		created, err = tx.CreateDepartment(d)
		return err
	})
	return created, res, err
}

// UpdateDepartment mutates a department.
func (s *Service) UpdateDepartment(ctx context.Context, id string, mutator func(*Department) error) (Department, Result, error) {
	var updated Department
	res, err := s.run(ctx, "update_department", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateDepartment(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteDepartment removes an unused department.
func (s *Service) DeleteDepartment(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_department", func(tx Transaction) error {
		return tx.DeleteDepartment(id)
	})
}

// CreateAcademicFaculty persists an academic faculty.
func (s *Service) CreateAcademicFaculty(ctx context.Context, af AcademicFaculty) (AcademicFaculty, Result, error) {
	var created AcademicFaculty
	res, err := s.run(ctx, "create_academic_faculty", func(tx Transaction) error {
		var err error
		created, err = tx.CreateAcademicFaculty(af)
		return err
	})
	return created, res, err
}

// UpdateAcademicFaculty mutates an academic faculty.
func (s *Service) UpdateAcademicFaculty(ctx context.Context, id string, mutator func(*AcademicFaculty) error) (AcademicFaculty, Result, error) {
	var updated AcademicFaculty
	res, err := s.run(ctx, "update_academic_faculty", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateAcademicFaculty(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteAcademicFaculty removes an unused academic faculty.
func (s *Service) DeleteAcademicFaculty(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_academic_faculty", func(tx Transaction) error {
		return tx.DeleteAcademicFaculty(id)
	})
}

// CreateSchool persists a school.
func (s *Service) CreateSchool(ctx context.Context, school School) (School, Result, error) {
	var created School
	res, err := s.run(ctx, "create_school", func(tx Transaction) error {
		var err error
		created, err = tx.CreateSchool(school)
		return err
	})
	return created, res, err
}

// UpdateSchool mutates a school.
func (s *Service) UpdateSchool(ctx context.Context, id string, mutator func(*School) error) (School, Result, error) {
	var updated School
	res, err := s.run(ctx, "update_school", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateSchool(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteSchool removes an unused school.
func (s *Service) DeleteSchool(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_school", func(tx Transaction) error {
		return tx.DeleteSchool(id)
	})
}

// CreateTeachingMethod persists a teaching-method catalog entry.
func (s *Service) CreateTeachingMethod(ctx context.Context, tm TeachingMethod) (TeachingMethod, Result, error) {
	var created TeachingMethod
	res, err := s.run(ctx, "create_teaching_method", func(tx Transaction) error {
		var err error
		created, err = tx.CreateTeachingMethod(tm)
		return err
	})
	return created, res, err
}

// UpdateTeachingMethod mutates a teaching-method entry.
func (s *Service) UpdateTeachingMethod(ctx context.Context, id string, mutator func(*TeachingMethod) error) (TeachingMethod, Result, error) {
	var updated TeachingMethod
	res, err := s.run(ctx, "update_teaching_method", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateTeachingMethod(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteTeachingMethod removes an unused teaching method.
func (s *Service) DeleteTeachingMethod(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_teaching_method", func(tx Transaction) error {
		return tx.DeleteTeachingMethod(id)
	})
}

// CreateAssessmentMethod persists an assessment-method catalog entry.
func (s *Service) CreateAssessmentMethod(ctx context.Context, am AssessmentMethod) (AssessmentMethod, Result, error) {
	var created AssessmentMethod
	res, err := s.run(ctx, "create_assessment_method", func(tx Transaction) error {
		var err error
		created, err = tx.CreateAssessmentMethod(am)
		return err
	})
	return created, res, err
}

// UpdateAssessmentMethod mutates an assessment-method entry.
func (s *Service) UpdateAssessmentMethod(ctx context.Context, id string, mutator func(*AssessmentMethod) error) (AssessmentMethod, Result, error) {
	var updated AssessmentMethod
	res, err := s.run(ctx, "update_assessment_method", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateAssessmentMethod(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteAssessmentMethod removes an unused assessment method.
func (s *Service) DeleteAssessmentMethod(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_assessment_method", func(tx Transaction) error {
		return tx.DeleteAssessmentMethod(id)
	})
}

// CreateLibraryResource persists a library-resource catalog entry.
func (s *Service) CreateLibraryResource(ctx context.Context, lr LibraryResource) (LibraryResource, Result, error) {
	var created LibraryResource
	res, err := s.run(ctx, "create_library_resource", func(tx Transaction) error {
		var err error
		created, err = tx.CreateLibraryResource(lr)
		return err
	})
	return created, res, err
}

// UpdateLibraryResource mutates a library-resource entry.
func (s *Service) UpdateLibraryResource(ctx context.Context, id string, mutator func(*LibraryResource) error) (LibraryResource, Result, error) {
	var updated LibraryResource
	res, err := s.run(ctx, "update_library_resource", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateLibraryResource(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteLibraryResource removes an unused library resource.
func (s *Service) DeleteLibraryResource(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_library_resource", func(tx Transaction) error {
		return tx.DeleteLibraryResource(id)
	})
}
