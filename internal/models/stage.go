package models

import "time"

// StageName is one of the three evaluation stages.
type StageName string

const (
	StageOne   StageName = "etapa 1"
	StageTwo   StageName = "etapa 2"
	StageThree StageName = "etapa 3"
)

// StageNames lists the stages in their natural order.
var StageNames = []StageName{StageOne, StageTwo, StageThree}

// Valid reports whether n is a known stage.
func (n StageName) Valid() bool {
	for _, known := range StageNames {
		if n == known {
			return true
		}
	}
	return false
}

// MaxPanelSize bounds the evaluator panel of a stage.
const MaxPanelSize = 3

// EvaluationStage is a persisted stage with its evaluator panel.
type EvaluationStage struct {
	ID        string    `json:"_id" validate:"required"`
	Name      StageName `json:"etapa" validate:"required,oneof='etapa 1' 'etapa 2' 'etapa 3'"`
	StartDate time.Time `json:"fecha_inicio" validate:"required"`
	EndDate   time.Time `json:"fecha_fin" validate:"required,gtefield=StartDate"`
	Panel     []string  `json:"jurado" validate:"max=3"`
}

// StageForm is the raw user input for creating or replacing a stage.
// Dates use the DD-MM-YYYY convention.
type StageForm struct {
	Name      StageName
	StartDate string   `validate:"required"`
	EndDate   string   `validate:"required"`
	Panel     []string `validate:"required,min=1"`
}

// StageRequest is a validated stage ready for transmission.
type StageRequest struct {
	Name      StageName `json:"etapa"`
	StartDate time.Time `json:"fecha_inicio"`
	EndDate   time.Time `json:"fecha_fin"`
	Panel     []string  `json:"jurado"`
}
