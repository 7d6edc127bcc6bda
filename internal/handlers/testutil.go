package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/models"
)

// TestFixtures contains sample data for testing
type TestFixtures struct {
	V60Request      models.RecipeRequest
	EspressoRequest models.RecipeRequest
	Calibration     models.Calibration
	Record          *models.HistoryRecord
}

// NewTestFixtures creates a set of sample test data
func NewTestFixtures() *TestFixtures {
	now := time.Date(2026, 4, 2, 7, 15, 0, 0, time.UTC)

	v60 := models.RecipeRequest{
		Method:     models.MethodV60,
		RoastLevel: models.RoastLight,
		CoffeeG:    18,
		WaterG:     300,
		TasteGoal:  models.TasteBalanced,
	}

	return &TestFixtures{
		V60Request: v60,
		EspressoRequest: models.RecipeRequest{
			Method:     models.MethodEspresso,
			RoastLevel: models.RoastMedium,
			CoffeeG:    18,
			WaterG:     36,
		},
		Calibration: models.Calibration{
			Grinder:   grinder.Sculptor064S,
			Method:    models.MethodV60,
			Dial:      11.6,
			UpdatedAt: now,
		},
		Record: &models.HistoryRecord{
			ID:        "rec-1",
			CreatedAt: now,
			Request:   v60,
			Recipe:    &models.Recipe{Method: models.MethodV60, CoffeeG: 18, WaterG: 300},
		},
	}
}

// TestContext contains test dependencies
type TestContext struct {
	Handler   *Handler
	MockStore *database.MockStore
	Registry  *grinder.Registry
	Fixtures  *TestFixtures
}

// NewTestContext creates a test context with mock dependencies
func NewTestContext() *TestContext {
	mockStore := &database.MockStore{}
	registry := grinder.NewDefaultRegistry()

	return &TestContext{
		Handler:   NewHandler(registry, mockStore, Config{}),
		MockStore: mockStore,
		Registry:  registry,
		Fixtures:  NewTestFixtures(),
	}
}

// NewJSONRequest creates a request with body encoded as JSON.
// A string body is sent verbatim.
func NewJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertResponseCode checks if the response has the expected status code
func AssertResponseCode(t interface {
	Errorf(format string, args ...interface{})
}, rec *httptest.ResponseRecorder, expected int) {
	if rec.Code != expected {
		t.Errorf("Expected status code %d, got %d. Body: %s", expected, rec.Code, rec.Body.String())
	}
}
