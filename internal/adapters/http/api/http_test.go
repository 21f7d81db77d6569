package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/okian/covid19india/internal/adapters/http/api"
	"github.com/okian/covid19india/internal/adapters/repository/repotest"
	service "github.com/okian/covid19india/internal/app"
	"github.com/okian/covid19india/internal/domain/model"
	"github.com/okian/covid19india/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errBoom = errors.New("disk on fire")

// failingDeps fails every operation with err.
type failingDeps struct {
	err error
}

func (f *failingDeps) ListStates(context.Context) ([]model.State, error) { return nil, f.err }
func (f *failingDeps) GetState(context.Context, string) (model.State, error) {
	return model.State{}, f.err
}
func (f *failingDeps) StateStats(context.Context, string) (model.StateStats, error) {
	return model.StateStats{}, f.err
}
func (f *failingDeps) CreateDistrict(context.Context, model.DistrictInput) (int64, error) {
	return 0, f.err
}
func (f *failingDeps) GetDistrict(context.Context, string) (model.District, error) {
	return model.District{}, f.err
}
func (f *failingDeps) DeleteDistrict(context.Context, string) error { return f.err }
func (f *failingDeps) UpdateDistrict(context.Context, string, model.DistrictInput) error {
	return f.err
}
func (f *failingDeps) DistrictStateName(context.Context, string) (model.DistrictState, error) {
	return model.DistrictState{}, f.err
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// newTestMux serves the API over a freshly seeded database.
func newTestMux(t *testing.T) (*http.ServeMux, *service.Service) {
	t.Helper()
	svc := service.New(service.WithStore(repotest.NewStore(t)))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return mux, svc
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	contentType := ""
	if body != "" {
		contentType = "application/json"
	}
	return doWithType(mux, method, path, contentType, body)
}

func doWithType(mux http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

const wayanad = `{"districtName":"Wayanad","stateId":17,"cases":10,"cured":5,"active":3,"deaths":2}`

func TestStates(t *testing.T) {
	Convey("Given the API over a seeded database", t, func() {
		mux, _ := newTestMux(t)

		Convey("When listing states", func() {
			w := do(mux, http.MethodGet, "/states/", "")

			Convey("Then every row is returned with camelCase keys", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")

				var raw []map[string]any
				decode(w, &raw)
				So(len(raw), ShouldEqual, 3)
				So(raw[0], ShouldContainKey, "stateId")
				So(raw[0], ShouldContainKey, "stateName")
				So(raw[0], ShouldContainKey, "population")
				So(raw[0], ShouldNotContainKey, "state_id")
			})
		})

		Convey("When fetching a known state", func() {
			w := do(mux, http.MethodGet, "/states/17/", "")

			Convey("Then its stateId equals the path id", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var st model.State
				decode(w, &st)
				So(st.StateID, ShouldEqual, 17)
				So(st.StateName, ShouldEqual, "Kerala")
			})
		})

		Convey("When fetching an unknown state", func() {
			w := do(mux, http.MethodGet, "/states/99/", "")

			Convey("Then 404 State Not Found is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldEqual, "State Not Found")
			})
		})

		Convey("When the trailing slash is omitted", func() {
			So(do(mux, http.MethodGet, "/states", "").Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/states/1", "").Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/states/1/stats", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("When asking for stats of a state without districts", func() {
			w := do(mux, http.MethodGet, "/states/2/stats/", "")

			Convey("Then every total is null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual,
					`{"totalCases":null,"totalCured":null,"totalActive":null,"totalDeaths":null}`)
			})
		})

		Convey("When asking for stats of an unknown state", func() {
			w := do(mux, http.MethodGet, "/states/999/stats/", "")

			Convey("Then the response is the same null totals, not 404", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats model.StateStats
				decode(w, &stats)
				So(stats.IsEmpty(), ShouldBeTrue)
			})
		})
	})
}

func TestDistricts(t *testing.T) {
	Convey("Given the API over a seeded database", t, func() {
		mux, _ := newTestMux(t)

		Convey("When a district is added", func() {
			w := do(mux, http.MethodPost, "/districts/", wayanad)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "District Successfully Added")

			// The seeded database holds no districts, so the first id is 1.
			id := "1"

			Convey("Then reading it back returns the submitted values", func() {
				w := do(mux, http.MethodGet, "/districts/"+id+"/", "")
				So(w.Code, ShouldEqual, http.StatusOK)

				var d model.District
				decode(w, &d)
				So(d.DistrictID, ShouldEqual, 1)
				So(*d.DistrictName, ShouldEqual, "Wayanad")
				So(d.StateID.Raw(), ShouldEqual, 17)
				So(d.Cases.Raw(), ShouldEqual, 10)
				So(d.Cured.Raw(), ShouldEqual, 5)
				So(d.Active.Raw(), ShouldEqual, 3)
				So(d.Deaths.Raw(), ShouldEqual, 2)
			})

			Convey("Then its state name is resolved through the join", func() {
				w := do(mux, http.MethodGet, "/districts/"+id+"/details/", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"stateName":"Kerala"}`)
			})

			Convey("Then the state's stats include it", func() {
				do(mux, http.MethodPost, "/districts", `{"districtName":"Idukki","stateId":17,"cases":20,"cured":10,"active":5,"deaths":5}`)
				w := do(mux, http.MethodGet, "/states/17/stats/", "")

				var stats model.StateStats
				decode(w, &stats)
				So(stats.TotalCases.Raw(), ShouldEqual, 30)
				So(stats.TotalCured.Raw(), ShouldEqual, 15)
				So(stats.TotalActive.Raw(), ShouldEqual, 8)
				So(stats.TotalDeaths.Raw(), ShouldEqual, 7)
			})

			Convey("Then an update overwrites every column", func() {
				w := do(mux, http.MethodPut, "/districts/"+id+"/", `{"districtName":"Wayanad","stateId":17,"cases":99,"cured":50,"active":40,"deaths":9}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "District Details Updated")

				var d model.District
				decode(do(mux, http.MethodGet, "/districts/"+id, ""), &d)
				So(d.Cases.Raw(), ShouldEqual, 99)
				So(d.Deaths.Raw(), ShouldEqual, 9)
			})

			Convey("Then a delete removes it and a repeated delete still succeeds", func() {
				w := do(mux, http.MethodDelete, "/districts/"+id+"/", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "District Removed")

				So(do(mux, http.MethodGet, "/districts/"+id+"/", "").Code, ShouldEqual, http.StatusNotFound)

				w = do(mux, http.MethodDelete, "/districts/"+id, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "District Removed")
			})
		})

		Convey("When fetching a district that does not exist", func() {
			w := do(mux, http.MethodGet, "/districts/999/", "")

			Convey("Then 404 District Not Found is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldEqual, "District Not Found")
			})
		})

		Convey("When resolving details of a district that does not exist", func() {
			w := do(mux, http.MethodGet, "/districts/999/details/", "")

			Convey("Then 404 District Not Found is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldEqual, "District Not Found")
			})
		})

		Convey("When updating a district that does not exist", func() {
			w := do(mux, http.MethodPut, "/districts/999/", wayanad)

			Convey("Then success is reported and nothing is created", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "District Details Updated")
				So(do(mux, http.MethodGet, "/districts/999/", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a district is added with fields missing", func() {
			w := do(mux, http.MethodPost, "/districts/", `{"districtName":"Sparse"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			Convey("Then the missing columns read back as null", func() {
				var raw map[string]any
				decode(do(mux, http.MethodGet, "/districts/1/", ""), &raw)
				So(raw["districtName"], ShouldEqual, "Sparse")
				So(raw, ShouldContainKey, "cases")
				So(raw["cases"], ShouldBeNil)
				So(raw["stateId"], ShouldBeNil)
			})
		})

		Convey("When a district is added without a body", func() {
			w := do(mux, http.MethodPost, "/districts/", "")

			Convey("Then a row of nulls is inserted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(do(mux, http.MethodGet, "/districts/1/", "").Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/districts/", `{"districtName":`)

			Convey("Then the request is rejected before storage", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldStartWith, api.ErrBadRequest.Error())
				So(do(mux, http.MethodGet, "/districts/1/", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the body is a JSON primitive", func() {
			w := do(mux, http.MethodPost, "/districts/", `42`)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, model.ErrNotObject.Error())
			})
		})

		Convey("When the body is a JSON array", func() {
			w := do(mux, http.MethodPost, "/districts/", `[1]`)

			Convey("Then it is treated as an empty object", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var raw map[string]any
				decode(do(mux, http.MethodGet, "/districts/1/", ""), &raw)
				So(raw["districtName"], ShouldBeNil)
				So(raw["cases"], ShouldBeNil)
			})
		})

		Convey("When the body is not declared as JSON", func() {
			w := doWithType(mux, http.MethodPost, "/districts/", "text/plain", wayanad)

			Convey("Then it is ignored and a row of nulls is inserted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var raw map[string]any
				decode(do(mux, http.MethodGet, "/districts/1/", ""), &raw)
				So(raw["districtName"], ShouldBeNil)
				So(raw["stateId"], ShouldBeNil)
			})
		})

		Convey("When the JSON content type carries a charset", func() {
			w := doWithType(mux, http.MethodPost, "/districts/", "application/json; charset=utf-8", wayanad)

			Convey("Then the body is decoded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var d model.District
				decode(do(mux, http.MethodGet, "/districts/1/", ""), &d)
				So(*d.DistrictName, ShouldEqual, "Wayanad")
			})
		})

		Convey("When counts were stored as a fraction and as text", func() {
			So(do(mux, http.MethodPost, "/districts/", wayanad).Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodPost, "/districts/", `{"districtName":"Half","stateId":17,"cases":2.5}`).Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodPost, "/districts/", `{"districtName":"Text","stateId":1,"cases":"abc"}`).Code, ShouldEqual, http.StatusOK)

			Convey("Then reading them returns the stored values", func() {
				w := do(mux, http.MethodGet, "/districts/2/", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var raw map[string]any
				decode(w, &raw)
				So(raw["cases"], ShouldEqual, 2.5)

				w = do(mux, http.MethodGet, "/districts/3/", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				decode(w, &raw)
				So(raw["cases"], ShouldEqual, "abc")
			})

			Convey("Then the stats are computed over them", func() {
				w := do(mux, http.MethodGet, "/states/17/stats/", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var raw map[string]any
				decode(w, &raw)
				So(raw["totalCases"], ShouldEqual, 12.5)
				So(raw["totalCured"], ShouldEqual, 5.0)

				w = do(mux, http.MethodGet, "/states/1/stats/", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				decode(w, &raw)
				So(raw["totalCases"], ShouldEqual, 0.0)
			})
		})

		Convey("When a method is not routed", func() {
			w := do(mux, http.MethodPatch, "/districts/1/", wayanad)

			Convey("Then the mux refuses it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestStorageFailures(t *testing.T) {
	Convey("Given the API over a failing backend", t, func() {
		deps := &failingDeps{err: errBoom}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{}}).Register(context.Background(), mux)

		cases := []struct {
			method, path, body string
		}{
			{http.MethodGet, "/states/", ""},
			{http.MethodGet, "/states/1/", ""},
			{http.MethodGet, "/states/1/stats/", ""},
			{http.MethodPost, "/districts/", wayanad},
			{http.MethodGet, "/districts/1/", ""},
			{http.MethodDelete, "/districts/1/", ""},
			{http.MethodPut, "/districts/1/", wayanad},
			{http.MethodGet, "/districts/1/details/", ""},
		}

		Convey("Then every route answers 500 with a fixed body", func() {
			for _, tc := range cases {
				w := do(mux, tc.method, tc.path, tc.body)
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldEqual, "Internal Server Error")
				So(w.Body.String(), ShouldNotContainSubstring, errBoom.Error())
			}
		})
	})

	Convey("Given a backend that reports not found wrapped in context", t, func() {
		deps := &failingDeps{err: errors.Join(errors.New("lookup"), model.ErrNotFound)}
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("Then keyed reads map it to 404", func() {
			So(do(mux, http.MethodGet, "/states/1/", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/districts/1/", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/districts/1/details/", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When the registry is scraped", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleHealth(w, req)

			Convey("Then it should return metrics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		handler := api.NewStatsHandler(&mockStatsProvider{stats: map[string]interface{}{
			"started": true,
			"driver":  "sqlite",
		}})

		Convey("When getting stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return the provider's map", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]any
				decode(w, &body)
				So(body["started"], ShouldEqual, true)
				So(body["driver"], ShouldEqual, "sqlite")
			})
		})

		Convey("When using a non-GET method", func() {
			req := httptest.NewRequest(http.MethodPost, "/stats", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by the metrics middleware", t, func() {
		status := http.StatusOK
		h := api.MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(strconv.Itoa(status)))
		}, "test")

		for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
			status = code
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))

			Convey("Then status "+strconv.Itoa(code)+" passes through", func() {
				So(w.Code, ShouldEqual, code)
				So(w.Body.String(), ShouldEqual, strconv.Itoa(code))
			})
		}
	})
}
