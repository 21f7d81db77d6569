// Package model contains domain models passed between layers.
package model

// State is a top-level administrative region. Rows are provisioned outside
// the service and never mutated by it.
type State struct {
	StateID    int64  `json:"stateId" gorm:"column:state_id"`
	StateName  string `json:"stateName" gorm:"column:state_name"`
	Population int64  `json:"population" gorm:"column:population"`
}

// StateStats holds the case totals of all districts of a state. A field is
// null when the state has no districts, matching SQL SUM over an empty set,
// and a float when a stored count was not an integer.
type StateStats struct {
	TotalCases  Scalar `json:"totalCases" gorm:"column:total_cases"`
	TotalCured  Scalar `json:"totalCured" gorm:"column:total_cured"`
	TotalActive Scalar `json:"totalActive" gorm:"column:total_active"`
	TotalDeaths Scalar `json:"totalDeaths" gorm:"column:total_deaths"`
}

// IsEmpty reports whether no district contributed to the totals.
func (s StateStats) IsEmpty() bool {
	return s.TotalCases.IsNull() && s.TotalCured.IsNull() && s.TotalActive.IsNull() && s.TotalDeaths.IsNull()
}
