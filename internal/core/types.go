package core

import "curricore/pkg/domain"

// Domain aliases keep service code terse without re-exporting the whole package.
type (
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
	Result          = domain.Result
	RulesEngine     = domain.RulesEngine
	Change          = domain.Change

	KnowledgeArea      = domain.KnowledgeArea
	StudentOutcome     = domain.StudentOutcome
	PEO                = domain.PEO
	MissionConstituent = domain.MissionConstituent
	Course             = domain.Course
	ProgramBlock       = domain.ProgramBlock
	MoetObjective      = domain.MoetObjective
	FacultyMember      = domain.FacultyMember
	Department         = domain.Department
	AcademicFaculty    = domain.AcademicFaculty
	School             = domain.School
	TeachingMethod     = domain.TeachingMethod
	AssessmentMethod   = domain.AssessmentMethod
	LibraryResource    = domain.LibraryResource
	GeneralInfo        = domain.GeneralInfo
)
