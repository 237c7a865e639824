package core

import "curricore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewStructureExclusivityRule())
	engine.Register(NewReferenceIntegrityRule())
	engine.Register(NewCLOAlignmentRule())
	return engine
}
