package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recipeReply struct {
	models.Recipe
	HistoryID string `json:"history_id"`
}

func decodeRecipe(t *testing.T, rec *httptest.ResponseRecorder) recipeReply {
	t.Helper()
	var out recipeReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHandleRecipeCreate_Success(t *testing.T) {
	tc := NewTestContext()
	tc.MockStore.SaveRecordFunc = func(ctx context.Context, rec *models.HistoryRecord) error {
		t.Error("history should not be saved without save=true")
		return nil
	}

	rec := httptest.NewRecorder()
	tc.Handler.HandleRecipeCreate(rec, NewJSONRequest(http.MethodPost, "/api/recipes", tc.Fixtures.V60Request))

	AssertResponseCode(t, rec, http.StatusOK)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decodeRecipe(t, rec)
	assert.Equal(t, models.MethodV60, got.Method)
	assert.Equal(t, 16.7, got.Ratio)
	assert.Equal(t, 94, got.WaterTempC)
	assert.Equal(t, 180, got.TargetTimeS)
	assert.Equal(t, 12.5, got.GrindSetting.Recommended)
	assert.Equal(t, grinder.Sculptor064S, got.GrindSetting.Grinder)
	assert.Len(t, got.Steps, 7)
	assert.Empty(t, got.HistoryID)
}

func TestHandleRecipeCreate_Save(t *testing.T) {
	tc := NewTestContext()

	var saved *models.HistoryRecord
	tc.MockStore.SaveRecordFunc = func(ctx context.Context, rec *models.HistoryRecord) error {
		rec.ID = "saved-1"
		saved = rec
		return nil
	}

	body := map[string]interface{}{
		"method":      "pour-over",
		"roast_level": "Medium",
		"coffee_g":    20,
		"ratio":       16,
		"save":        true,
	}
	rec := httptest.NewRecorder()
	tc.Handler.HandleRecipeCreate(rec, NewJSONRequest(http.MethodPost, "/api/recipes", body))

	AssertResponseCode(t, rec, http.StatusOK)
	got := decodeRecipe(t, rec)
	assert.Equal(t, "saved-1", got.HistoryID)
	assert.Equal(t, 320.0, got.WaterG)

	require.NotNil(t, saved)
	assert.Equal(t, models.MethodV60, saved.Request.Method)
	assert.Equal(t, models.RoastMedium, saved.Request.RoastLevel)
	assert.Equal(t, grinder.Sculptor064S, saved.Request.Grinder)
	assert.False(t, saved.CreatedAt.IsZero())
	require.NotNil(t, saved.Recipe)
	assert.Equal(t, 92, saved.Recipe.WaterTempC)
}

func TestHandleRecipeCreate_SaveError(t *testing.T) {
	tc := NewTestContext()
	tc.MockStore.SaveRecordFunc = func(ctx context.Context, rec *models.HistoryRecord) error {
		return errors.New("disk full")
	}

	body := map[string]interface{}{
		"method": "V60", "roast_level": "light", "coffee_g": 18, "water_g": 300, "save": true,
	}
	rec := httptest.NewRecorder()
	tc.Handler.HandleRecipeCreate(rec, NewJSONRequest(http.MethodPost, "/api/recipes", body))

	AssertResponseCode(t, rec, http.StatusInternalServerError)
	assert.Equal(t, "internal error", decodeError(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestHandleRecipeCreate_UseCalibration(t *testing.T) {
	t.Run("stored calibration becomes the baseline", func(t *testing.T) {
		tc := NewTestContext()
		tc.MockStore.GetCalibrationFunc = func(ctx context.Context, name string, method models.Method) (*models.Calibration, error) {
			assert.Equal(t, grinder.Sculptor064S, name)
			assert.Equal(t, models.MethodV60, method)
			cal := tc.Fixtures.Calibration
			return &cal, nil
		}

		body := map[string]interface{}{
			"method": "v60", "roast_level": "light", "coffee_g": 18, "water_g": 300, "use_calibration": true,
		}
		rec := httptest.NewRecorder()
		tc.Handler.HandleRecipeCreate(rec, NewJSONRequest(http.MethodPost, "/api/recipes", body))

		AssertResponseCode(t, rec, http.StatusOK)
		got := decodeRecipe(t, rec)
		assert.Equal(t, 11.6, got.GrindSetting.BaselineUsed)
		assert.Equal(t, 11.6, got.GrindSetting.Recommended)
	})

	t.Run("no calibration falls back to roast default", func(t *testing.T) {
		tc := NewTestContext()

		body := map[string]interface{}{
			"method": "espresso", "roast_level": "dark", "coffee_g": 18, "water_g": 36, "use_calibration": true,
		}
		rec := httptest.NewRecorder()
		tc.Handler.HandleRecipeCreate(rec, NewJSONRequest(http.MethodPost, "/api/recipes", body))

		AssertResponseCode(t, rec, http.StatusOK)
		assert.Equal(t, 1.6, decodeRecipe(t, rec).GrindSetting.Recommended)
	})

	t.Run("explicit baseline wins", func(t *testing.T) {
		tc := NewTestContext()
		tc.MockStore.GetCalibrationFunc = func(ctx context.Context, name string, method models.Method) (*models.Calibration, error) {
			t.Error("calibration should not be read when a baseline is given")
			return nil, nil
		}

		body := map[string]interface{}{
			"method": "v60", "roast_level": "light", "coffee_g": 18, "water_g": 300,
			"baseline_grind": 12.0, "use_calibration": true,
		}
		rec := httptest.NewRecorder()
		tc.Handler.HandleRecipeCreate(rec, NewJSONRequest(http.MethodPost, "/api/recipes", body))

		AssertResponseCode(t, rec, http.StatusOK)
		assert.Equal(t, 12.0, decodeRecipe(t, rec).GrindSetting.Recommended)
	})

	t.Run("store failure", func(t *testing.T) {
		tc := NewTestContext()
		tc.MockStore.GetCalibrationFunc = func(ctx context.Context, name string, method models.Method) (*models.Calibration, error) {
			return nil, errors.New("locked")
		}

		body := map[string]interface{}{
			"method": "v60", "roast_level": "light", "coffee_g": 18, "water_g": 300, "use_calibration": true,
		}
		rec := httptest.NewRecorder()
		tc.Handler.HandleRecipeCreate(rec, NewJSONRequest(http.MethodPost, "/api/recipes", body))

		AssertResponseCode(t, rec, http.StatusInternalServerError)
	})
}

func TestHandleRecipeCreate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantField  string
	}{
		{
			name:       "malformed JSON",
			body:       `{"method": `,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"method": "V60", "beans": "ethiopia"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid method",
			body:       map[string]interface{}{"method": "aeropress", "roast_level": "light", "coffee_g": 18, "water_g": 300},
			wantStatus: http.StatusBadRequest,
			wantField:  "method",
		},
		{
			name:       "invalid roast",
			body:       map[string]interface{}{"method": "V60", "roast_level": "green", "coffee_g": 18, "water_g": 300},
			wantStatus: http.StatusBadRequest,
			wantField:  "roast_level",
		},
		{
			name:       "missing dose",
			body:       map[string]interface{}{"method": "V60", "roast_level": "light", "water_g": 300},
			wantStatus: http.StatusBadRequest,
			wantField:  "coffee_g",
		},
		{
			name:       "missing water and ratio",
			body:       map[string]interface{}{"method": "V60", "roast_level": "light", "coffee_g": 18},
			wantStatus: http.StatusBadRequest,
			wantField:  "water_g",
		},
		{
			name:       "espresso dose out of range",
			body:       map[string]interface{}{"method": "ESPRESSO", "roast_level": "light", "coffee_g": 40, "water_g": 60},
			wantStatus: http.StatusBadRequest,
			wantField:  "coffee_g",
		},
		{
			name:       "ratio above limit",
			body:       map[string]interface{}{"method": "V60", "roast_level": "light", "coffee_g": 18, "ratio": 40},
			wantStatus: http.StatusBadRequest,
			wantField:  "ratio",
		},
		{
			name:       "unknown grinder",
			body:       map[string]interface{}{"method": "V60", "roast_level": "light", "coffee_g": 18, "water_g": 300, "grinder": "Mystery Mill"},
			wantStatus: http.StatusNotFound,
			wantField:  "grinder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := NewTestContext()
			rec := httptest.NewRecorder()
			tc.Handler.HandleRecipeCreate(rec, NewJSONRequest(http.MethodPost, "/api/recipes", tt.body))

			AssertResponseCode(t, rec, tt.wantStatus)
			resp := decodeError(t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}
}

func TestHandleRecipeCreate_WrongContentType(t *testing.T) {
	tc := NewTestContext()

	req := NewJSONRequest(http.MethodPost, "/api/recipes", tc.Fixtures.V60Request)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	tc.Handler.HandleRecipeCreate(rec, req)

	AssertResponseCode(t, rec, http.StatusBadRequest)
}

func TestHandleRecipeQuery(t *testing.T) {
	tc := NewTestContext()

	t.Run("ratio derives yield", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/recipes?method=espresso&roast_level=medium&coffee_g=18&ratio=2", nil)
		tc.Handler.HandleRecipeQuery(rec, req)

		AssertResponseCode(t, rec, http.StatusOK)
		got := decodeRecipe(t, rec)
		assert.Equal(t, 36.0, got.WaterG)
		assert.Equal(t, 2.0, got.Ratio)
		assert.Equal(t, 93, got.WaterTempC)
		assert.Equal(t, 28, got.TargetTimeS)
		assert.Equal(t, 2.0, got.GrindSetting.Recommended)
	})

	t.Run("baseline and taste goal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/api/recipes?method=V60&roast_level=dark&coffee_g=15&water_g=250&taste_goal=less-bitter&baseline_grind=10.4", nil)
		tc.Handler.HandleRecipeQuery(rec, req)

		AssertResponseCode(t, rec, http.StatusOK)
		got := decodeRecipe(t, rec)
		assert.Equal(t, models.TasteLessBitter, got.TasteGoal)
		assert.Equal(t, 10.4, got.GrindSetting.BaselineUsed)
		assert.Equal(t, 10.8, got.GrindSetting.Recommended)
		assert.Equal(t, 89, got.WaterTempC)
		assert.Equal(t, 145, got.TargetTimeS)
	})

	t.Run("non-numeric dose", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/recipes?method=V60&roast_level=light&coffee_g=lots&water_g=300", nil)
		tc.Handler.HandleRecipeQuery(rec, req)

		AssertResponseCode(t, rec, http.StatusBadRequest)
		resp := decodeError(t, rec)
		assert.Equal(t, "coffee_g", resp.Field)
		assert.Equal(t, "coffee_g must be a number", resp.Error)
	})

	t.Run("NaN is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/recipes?method=V60&roast_level=light&coffee_g=18&water_g=NaN", nil)
		tc.Handler.HandleRecipeQuery(rec, req)

		AssertResponseCode(t, rec, http.StatusBadRequest)
		assert.Equal(t, "water_g", decodeError(t, rec).Field)
	})
}

func TestHandleGrind(t *testing.T) {
	tc := NewTestContext()

	t.Run("midpoint without roast", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tc.Handler.HandleGrind(rec, NewJSONRequest(http.MethodPost, "/api/grind", map[string]string{"method": "v60"}))

		AssertResponseCode(t, rec, http.StatusOK)
		var got models.GrindSetting
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 10.5, got.Recommended)
		assert.Equal(t, "8.0–13.0", got.Range)
	})

	t.Run("invalid taste goal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tc.Handler.HandleGrind(rec, NewJSONRequest(http.MethodPost, "/api/grind",
			map[string]string{"method": "espresso", "taste_goal": "fruity"}))

		AssertResponseCode(t, rec, http.StatusBadRequest)
		assert.Equal(t, "taste_goal", decodeError(t, rec).Field)
	})
}

func TestHandleDialIn(t *testing.T) {
	tc := NewTestContext()

	t.Run("fast sour espresso goes finer", func(t *testing.T) {
		body := map[string]interface{}{
			"method": "espresso", "roast_level": "light", "current_grind": 2.2,
			"time_s": 18, "taste_result": "too_sour", "current_ratio": 2.0,
		}
		rec := httptest.NewRecorder()
		tc.Handler.HandleDialIn(rec, NewJSONRequest(http.MethodPost, "/api/dial-in", body))

		AssertResponseCode(t, rec, http.StatusOK)
		var got models.DialInAdvice
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 2.0, got.SuggestedGrind)
		assert.Equal(t, "finer (-0.2)", got.Direction)
		assert.Equal(t, 28, got.TargetTimeS)
		assert.NotEmpty(t, got.Notes)
	})

	t.Run("negative time", func(t *testing.T) {
		body := map[string]interface{}{
			"method": "V60", "current_grind": 11, "time_s": -5, "taste_result": "balanced",
		}
		rec := httptest.NewRecorder()
		tc.Handler.HandleDialIn(rec, NewJSONRequest(http.MethodPost, "/api/dial-in", body))

		AssertResponseCode(t, rec, http.StatusBadRequest)
		assert.Equal(t, "time_s", decodeError(t, rec).Field)
	})

	t.Run("invalid taste result", func(t *testing.T) {
		body := map[string]interface{}{
			"method": "V60", "current_grind": 11, "time_s": 180, "taste_result": "meh",
		}
		rec := httptest.NewRecorder()
		tc.Handler.HandleDialIn(rec, NewJSONRequest(http.MethodPost, "/api/dial-in", body))

		AssertResponseCode(t, rec, http.StatusBadRequest)
		assert.Equal(t, "taste_result", decodeError(t, rec).Field)
	})
}
