package workflow

import "fmt"

// StageDef pairs a stage key with the role allowed to act at that stage.
type StageDef struct {
	Key  string `json:"key"`
	Role Role   `json:"role"`
}

// Definition is the immutable ordered stage table for one workflow kind.
type Definition struct {
	kind     Kind
	terminal string
	stages   []StageDef
	index    map[string]int
}

// NewDefinition validates and builds a stage table. Keys must be unique, the
// terminal key must not collide with a stage key, and at least one stage must
// precede the terminal.
func NewDefinition(kind Kind, terminal string, stages ...StageDef) (*Definition, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%s workflow: at least one stage required before terminal", kind)
	}
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		if s.Key == terminal {
			return nil, fmt.Errorf("%s workflow: stage %q collides with terminal key", kind, s.Key)
		}
		if _, dup := index[s.Key]; dup {
			return nil, fmt.Errorf("%s workflow: duplicate stage %q", kind, s.Key)
		}
		index[s.Key] = i
	}
	return &Definition{kind: kind, terminal: terminal, stages: stages, index: index}, nil
}

// MustDefinition is for the static per-kind tables wired at startup.
func MustDefinition(kind Kind, terminal string, stages ...StageDef) *Definition {
	def, err := NewDefinition(kind, terminal, stages...)
	if err != nil {
		panic(err)
	}
	return def
}

func (d *Definition) Kind() Kind {
	return d.kind
}

func (d *Definition) Terminal() string {
	return d.terminal
}

// FirstStage returns the stage new requests start at.
func (d *Definition) FirstStage() string {
	return d.stages[0].Key
}

// NextStage returns the stage following current, or the terminal key when
// current is the last non-terminal stage.
func (d *Definition) NextStage(current string) (string, error) {
	i, ok := d.index[current]
	if !ok {
		return "", &UnknownStageError{Kind: d.kind, Stage: current}
	}
	if i == len(d.stages)-1 {
		return d.terminal, nil
	}
	return d.stages[i+1].Key, nil
}

// RoleFor returns the role required to act at the given stage.
func (d *Definition) RoleFor(stage string) (Role, error) {
	i, ok := d.index[stage]
	if !ok {
		return "", &UnknownStageError{Kind: d.kind, Stage: stage}
	}
	return d.stages[i].Role, nil
}

// Stages returns a copy of the ordered stage table.
func (d *Definition) Stages() []StageDef {
	out := make([]StageDef, len(d.stages))
	copy(out, d.stages)
	return out
}
