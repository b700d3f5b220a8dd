package leads

import (
	"fmt"
	"strings"
)

// Stage is the pipeline column a lead sits in.
type Stage string

const (
	StageNew          Stage = "New"
	StageContacted    Stage = "Contacted"
	StageQualified    Stage = "Qualified"
	StageDisqualified Stage = "Disqualified"
	StageWon          Stage = "Won"
)

var stageOrder = []Stage{StageNew, StageContacted, StageQualified, StageDisqualified, StageWon}

// Stages returns the pipeline stages in board order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Valid reports whether s is one of the pipeline stages.
func (s Stage) Valid() bool {
	for _, st := range stageOrder {
		if s == st {
			return true
		}
	}
	return false
}

// ParseStage accepts a stage name in any letter case ("won", "WON", "Won").
func ParseStage(value string) (Stage, error) {
	v := strings.TrimSpace(value)
	for _, st := range stageOrder {
		if strings.EqualFold(v, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("leads: %q: %w", value, ErrInvalidStage)
}
