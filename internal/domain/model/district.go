package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// District is a sub-region of a State tracking COVID-19 case counts.
// Columns other than the id are nullable because inserts forward
// whatever the client sent, including nothing.
type District struct {
	DistrictID   int64   `json:"districtId" gorm:"column:district_id"`
	DistrictName *string `json:"districtName" gorm:"column:district_name"`
	StateID      Scalar  `json:"stateId" gorm:"column:state_id"`
	Cases        Scalar  `json:"cases" gorm:"column:cases"`
	Cured        Scalar  `json:"cured" gorm:"column:cured"`
	Active       Scalar  `json:"active" gorm:"column:active"`
	Deaths       Scalar  `json:"deaths" gorm:"column:deaths"`
}

// DistrictState is the result of resolving a district's parent state name.
type DistrictState struct {
	StateName string `json:"stateName" gorm:"column:state_name"`
}

// DistrictInput carries the body of a create or update request. Values are
// kept untyped and handed to the statement unchanged; the store's column
// affinity decides what is accepted.
type DistrictInput struct {
	DistrictName any `json:"districtName"`
	StateID      any `json:"stateId"`
	Cases        any `json:"cases"`
	Cured        any `json:"cured"`
	Active       any `json:"active"`
	Deaths       any `json:"deaths"`
}

// DecodeDistrictInput reads a JSON object from r. Integral numbers become
// int64 and other numbers float64 so no precision is lost on the way in.
// A top-level array is accepted and carries no fields; any other top-level
// value is rejected.
func DecodeDistrictInput(r io.Reader) (DistrictInput, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		// An absent body behaves like an empty object.
		if errors.Is(err, io.EOF) {
			return DistrictInput{}, nil
		}
		return DistrictInput{}, fmt.Errorf("decode district: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return DistrictInput{}, fmt.Errorf("decode district: %w", ErrTrailingData)
	}

	switch body := body.(type) {
	case map[string]any:
		return DistrictInput{
			DistrictName: normalize(body["districtName"]),
			StateID:      normalize(body["stateId"]),
			Cases:        normalize(body["cases"]),
			Cured:        normalize(body["cured"]),
			Active:       normalize(body["active"]),
			Deaths:       normalize(body["deaths"]),
		}, nil
	case []any:
		return DistrictInput{}, nil
	default:
		return DistrictInput{}, fmt.Errorf("decode district: %w", ErrNotObject)
	}
}

// Args returns the values in column order:
// district_name, state_id, cases, cured, active, deaths.
func (in DistrictInput) Args() []any {
	return []any{in.DistrictName, in.StateID, in.Cases, in.Cured, in.Active, in.Deaths}
}

func normalize(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
