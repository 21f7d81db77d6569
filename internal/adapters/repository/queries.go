package repository

// Statements use ? placeholders; gorm rewrites them for the active dialect.
const (
	sqlListStates = `SELECT state_id, state_name, population FROM state`

	sqlGetState = `SELECT state_id, state_name, population FROM state WHERE state_id = ?`

	sqlInsertDistrict = `INSERT INTO district (district_name, state_id, cases, cured, active, deaths)
VALUES (?, ?, ?, ?, ?, ?) RETURNING district_id`

	sqlGetDistrict = `SELECT district_id, district_name, state_id, cases, cured, active, deaths
FROM district WHERE district_id = ?`

	sqlDeleteDistrict = `DELETE FROM district WHERE district_id = ?`

	sqlUpdateDistrict = `UPDATE district
SET district_name = ?, state_id = ?, cases = ?, cured = ?, active = ?, deaths = ?
WHERE district_id = ?`

	sqlStateStats = `SELECT SUM(cases) AS total_cases, SUM(cured) AS total_cured,
SUM(active) AS total_active, SUM(deaths) AS total_deaths
FROM district WHERE state_id = ?`

	sqlDistrictStateName = `SELECT state.state_name FROM district
JOIN state ON district.state_id = state.state_id
WHERE district.district_id = ?`
)

// Operation labels used for metrics and error messages.
const (
	opListStates        = "list_states"
	opGetState          = "get_state"
	opInsertDistrict    = "insert_district"
	opGetDistrict       = "get_district"
	opDeleteDistrict    = "delete_district"
	opUpdateDistrict    = "update_district"
	opStateStats        = "state_stats"
	opDistrictStateName = "district_state_name"
)
