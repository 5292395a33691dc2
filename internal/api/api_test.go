package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleet-maintenance-backend/config"
	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/db"
	"fleet-maintenance-backend/internal/engine"
	"fleet-maintenance-backend/internal/followup"
	"fleet-maintenance-backend/internal/model"
	"fleet-maintenance-backend/internal/mw"
	"fleet-maintenance-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var dsnUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

type testServer struct {
	router *gin.Engine
	store  store.Store
	cache  *mw.ResponseCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := "file:api_" + dsnUnsafe.ReplaceAllString(t.Name(), "_") + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 1}}
	cfg.ApplyDefaults()
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000

	s := store.NewGormStore(gormDB, 50)
	matcher, err := catalog.NewMatcher(nil)
	require.NoError(t, err)
	responses := mw.NewResponseCache(time.Minute)
	svc := engine.NewService(s, matcher, cfg,
		engine.WithClock(func() time.Time { return time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC) }),
		engine.OnReferenceChange(responses.Flush),
	)

	require.NoError(t, s.ReplaceReferenceData(context.Background(), store.ReferenceData{
		Equipment: []model.Equipment{
			{Matricule: "EQ-1", Category: "Trans Benner"},
			{Matricule: "EQ-2", Category: "Grue"},
		},
		IntervalRules: []model.IntervalRule{{
			Operation: catalog.ChangeEngineOil,
			Every90:   model.MarkerSingle,
			Every180:  model.MarkerSingle,
			Control:   true,
			Cleaning:  true,
		}},
		OilChanges: []model.OilChangeRecord{{Matricule: "EQ-1", Date: "10/01/2024"}},
	}))

	return &testServer{
		router: NewRouter(svc, s, &webpush.Options{VAPIDPublicKey: "public"}, cfg.Server, responses),
		store:  s,
		cache:  responses,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestPlanningLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/history/consolidate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"events_written":1,"dropped":{}}`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/planning/2024", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"year":2024,"count":7}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/generations/plan/2024", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var gen model.Generation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gen))
	assert.Equal(t, "plan:2024", gen.Scope)
	assert.Equal(t, 7, gen.Rows)

	w = ts.do(t, http.MethodGet, "/api/generations/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	gen = model.Generation{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gen))
	assert.Equal(t, "history", gen.Scope)
	assert.Equal(t, 1, gen.Rows)

	w = ts.do(t, http.MethodGet, "/api/planning/2024/rows", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rows []model.PlannedIntervention
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 7)

	w = ts.do(t, http.MethodGet, "/api/planning/2024?filter=eq-1&page=1&page_size=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page followup.MatrixPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Rows, 12)

	w = ts.do(t, http.MethodGet, "/api/followup/2024", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/statistics/2024", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats followup.Statistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 7, stats.TotalPlanned)
	// The January oil change anchors the plan, so it is not a plan realization.
	assert.Equal(t, 0, stats.TotalRealized)
	assert.Equal(t, 1, stats.OutOfPlan)

	w = ts.do(t, http.MethodGet, "/api/alerts?window_days=30", "")
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []followup.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	require.Len(t, alerts, 2)
	assert.Equal(t, "EQ-2", alerts[0].Matricule)
	assert.Equal(t, "EQ-1", alerts[1].Matricule)

	w = ts.do(t, http.MethodGet, "/api/planning/2024/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "planning-2024.xlsx")

	w = ts.do(t, http.MethodDelete, "/api/planning/2024", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodDelete, "/api/planning", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/planning/2024/rows", "")
	require.Equal(t, http.StatusOK, w.Code)
	rows = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Empty(t, rows)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed year", http.MethodPost, "/api/planning/abc", "", http.StatusBadRequest},
		{"year out of range", http.MethodPost, "/api/planning/1800", "", http.StatusBadRequest},
		{"unknown equipment", http.MethodGet, "/api/history/EQ-404", "", http.StatusNotFound},
		{"unknown operation", http.MethodPut, "/api/rules/painting", `{"every_30":"*","control":true}`, http.StatusBadRequest},
		{"category rule without flag", http.MethodPut, "/api/category-rules", `{"category":"Grue","operation":"chain"}`, http.StatusBadRequest},
		{"push disabled", http.MethodPost, "/api/alerts/dispatch", "", http.StatusServiceUnavailable},
		{"import without file", http.MethodPost, "/api/import", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestPlanningWithoutOperationColumn(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.store.ReplaceReferenceData(context.Background(), store.ReferenceData{
		Schema: &model.RuleSchema{},
	}))

	w := ts.do(t, http.MethodPost, "/api/planning/2024", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRulesAreCachedUntilEdited(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/rules", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader))
	w = ts.do(t, http.MethodGet, "/api/rules", "")
	assert.Equal(t, "HIT", w.Header().Get(mw.CacheHeader))

	w = ts.do(t, http.MethodPut, "/api/rules/chain", `{"every_30":"*","control":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved model.IntervalRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "chain", saved.Operation)
	assert.Equal(t, "chaine", saved.Label)

	w = ts.do(t, http.MethodGet, "/api/rules", "")
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader))
	var list []model.IntervalRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = ts.do(t, http.MethodPut, "/api/category-rules", `{"category":"Grue","operation":"chain","is_active":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/category-rules/seed", "")
	require.Equal(t, http.StatusOK, w.Code)
	var seeded struct {
		Added int64 `json:"added"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &seeded))
	assert.Equal(t, int64(2*len(catalog.Codes())-1), seeded.Added)
}

func TestGetOperations(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/operations", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ops []catalog.OperationType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ops))
	assert.Len(t, ops, len(catalog.All()))
	assert.Equal(t, catalog.EngineOilLevelCheck, ops[0].Code)
}

func TestImportWorkbook(t *testing.T) {
	ts := newTestServer(t)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "matrice"))
	require.NoError(t, f.SetSheetRow("matrice", "A1", &[]interface{}{"matricule", "categorie"}))
	require.NoError(t, f.SetSheetRow("matrice", "A2", &[]interface{}{"EQ-3", "Grue"}))
	wb, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mp := multipart.NewWriter(&body)
	part, err := mp.CreateFormFile("file", "reference.xlsx")
	require.NoError(t, err)
	_, err = part.Write(wb.Bytes())
	require.NoError(t, err)
	require.NoError(t, mp.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/import", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	equipment, err := ts.store.ListEquipment(context.Background())
	require.NoError(t, err)
	require.Len(t, equipment, 1)
	assert.Equal(t, "EQ-3", equipment[0].Matricule)
}

func TestSubscriptions(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/api/subscriptions", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())

	w = ts.do(t, http.MethodPut, "/api/subscriptions",
		`{"endpoint":"https://push.example/abc","p256dh":"k","auth":"a","subscribed_equipment":["EQ-2","EQ-404"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed_equipment":["EQ-2"]}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/subscriptions", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/subscriptions", `{"endpoint":"https://push.example/abc"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/vapid_public_key", "")
	assert.JSONEq(t, `{"public_key":"public"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusOf(assert.AnError))
	assert.Equal(t, http.StatusNotFound, statusOf(store.ErrNotFound))
}
