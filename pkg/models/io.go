package models

// IOType is the semantic type of a skill port. The set is closed.
type IOType string

const (
	IOTypeText         IOType = "text"
	IOTypeCode         IOType = "code"
	IOTypeDocument     IOType = "document"
	IOTypeData         IOType = "data"
	IOTypeImage        IOType = "image"
	IOTypePresentation IOType = "presentation"
	IOTypeAnalysis     IOType = "analysis"
	// IOTypeAny is the wildcard: it feeds and accepts every other type.
	IOTypeAny IOType = "any"
)

// IOTypes lists every semantic type in declaration order.
func IOTypes() []IOType {
	return []IOType{
		IOTypeText,
		IOTypeCode,
		IOTypeDocument,
		IOTypeData,
		IOTypeImage,
		IOTypePresentation,
		IOTypeAnalysis,
		IOTypeAny,
	}
}

// Valid reports whether t belongs to the closed set of semantic types.
func (t IOType) Valid() bool {
	for _, known := range IOTypes() {
		if t == known {
			return true
		}
	}

	return false
}

// SkillIO is a single input or output port declared by a skill.
type SkillIO struct {
	ID          string `json:"id"                 validate:"required"                                                          yaml:"id"`
	Name        string `json:"name"               validate:"required"                                                          yaml:"name"`
	Type        IOType `json:"type"               validate:"required,oneof=text code document data image presentation analysis any" yaml:"type"`
	Description string `json:"description"        yaml:"description"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// SkillIOSchema is the port contract of one skill. Inputs and outputs keep
// their declaration order.
type SkillIOSchema struct {
	SkillID string    `json:"skillId" validate:"required" yaml:"skillId"`
	Inputs  []SkillIO `json:"inputs"  validate:"dive"     yaml:"inputs"`
	Outputs []SkillIO `json:"outputs" validate:"dive"     yaml:"outputs"`
}

// Input returns the input port with the given id.
func (s *SkillIOSchema) Input(id string) (SkillIO, bool) {
	return findPort(s.Inputs, id)
}

// Output returns the output port with the given id.
func (s *SkillIOSchema) Output(id string) (SkillIO, bool) {
	return findPort(s.Outputs, id)
}

// Clone returns a copy that shares no slices with s.
func (s *SkillIOSchema) Clone() *SkillIOSchema {
	if s == nil {
		return nil
	}

	return &SkillIOSchema{
		SkillID: s.SkillID,
		Inputs:  append([]SkillIO(nil), s.Inputs...),
		Outputs: append([]SkillIO(nil), s.Outputs...),
	}
}

func findPort(ports []SkillIO, id string) (SkillIO, bool) {
	for _, port := range ports {
		if port.ID == id {
			return port, true
		}
	}

	return SkillIO{}, false
}

// Skill is a catalog entry: the human facing side of a skill.
type Skill struct {
	ID          string   `json:"id"          validate:"required" yaml:"id"`
	Name        string   `json:"name"        validate:"required" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category"    yaml:"category"`
	Tags        []string `json:"tags"        yaml:"tags"`
}

// Clone returns a copy of the skill.
func (s *Skill) Clone() *Skill {
	if s == nil {
		return nil
	}

	clone := *s
	clone.Tags = append([]string(nil), s.Tags...)

	return &clone
}
