package entity

import "github.com/joseph-ayodele/contract-risk/constants"

// DefaultClauseTitle is used when a detector supplies no title.
const DefaultClauseTitle = "Risky clause"

// Clause is one detected risk item.
type Clause struct {
	Type           constants.ClauseType `json:"type"`
	Title          string               `json:"title"`
	Severity       constants.Severity   `json:"severity"`
	OriginalText   string               `json:"original_text"`
	SimplifiedText string               `json:"simplified_text"`
}
