package models

import (
	"errors"
	"strings"
	"testing"

	"tangled.org/arabica.social/dialin/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(f float64) *float64 { return &f }

func TestRecipeRequest_Validate(t *testing.T) {
	t.Run("valid V60 request", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "light", CoffeeG: 18, WaterG: 300}
		require.NoError(t, req.Validate())
		assert.Equal(t, TasteBalanced, req.TasteGoal)
	})

	t.Run("normalizes spellings", func(t *testing.T) {
		req := &RecipeRequest{
			Method:     "Pour-Over",
			RoastLevel: " Medium ",
			TasteGoal:  "Less Bitter",
			Grinder:    "  TIMEMORE Sculptor 064S ",
			CoffeeG:    15,
			WaterG:     250,
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, MethodV60, req.Method)
		assert.Equal(t, RoastMedium, req.RoastLevel)
		assert.Equal(t, TasteLessBitter, req.TasteGoal)
		assert.Equal(t, "TIMEMORE Sculptor 064S", req.Grinder)
	})

	t.Run("invalid method", func(t *testing.T) {
		req := &RecipeRequest{Method: "AEROPRESS", RoastLevel: "light", CoffeeG: 18, WaterG: 300}
		assert.ErrorIs(t, req.Validate(), ErrInvalidMethod)
	})

	t.Run("invalid roast", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "blonde", CoffeeG: 18, WaterG: 300}
		assert.ErrorIs(t, req.Validate(), ErrInvalidRoastLevel)
	})

	t.Run("invalid taste goal", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "light", TasteGoal: "fruity", CoffeeG: 18, WaterG: 300}
		assert.ErrorIs(t, req.Validate(), ErrInvalidTasteGoal)
	})

	t.Run("zero dose", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "light", WaterG: 300}
		assert.ErrorIs(t, req.Validate(), ErrDoseRequired)
	})

	t.Run("no water and no ratio", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "light", CoffeeG: 18}
		assert.ErrorIs(t, req.Validate(), ErrWaterRequired)
	})

	t.Run("ratio derives water", func(t *testing.T) {
		req := &RecipeRequest{Method: "ESPRESSO", RoastLevel: "dark", CoffeeG: 18, Ratio: 2}
		require.NoError(t, req.Validate())
		assert.Equal(t, 36.0, req.Water())
	})

	t.Run("explicit water wins over ratio", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "light", CoffeeG: 20, WaterG: 320, Ratio: 15}
		require.NoError(t, req.Validate())
		assert.Equal(t, 320.0, req.Water())
	})

	t.Run("espresso dose out of range", func(t *testing.T) {
		req := &RecipeRequest{Method: "ESPRESSO", RoastLevel: "light", CoffeeG: 30, WaterG: 60}
		assert.ErrorIs(t, req.Validate(), ErrDoseOutOfRange)
	})

	t.Run("V60 water out of range", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "light", CoffeeG: 18, WaterG: 2000}
		assert.ErrorIs(t, req.Validate(), ErrWaterOutOfRange)
	})

	t.Run("limits are inclusive", func(t *testing.T) {
		req := &RecipeRequest{Method: "ESPRESSO", RoastLevel: "light", CoffeeG: 25, WaterG: 80}
		assert.NoError(t, req.Validate())
	})

	t.Run("grinder name too long", func(t *testing.T) {
		req := &RecipeRequest{
			Method:     "V60",
			RoastLevel: "light",
			CoffeeG:    18,
			WaterG:     300,
			Grinder:    strings.Repeat("a", 101),
		}
		err := req.Validate()
		var verr *validation.RequestValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "grinder", verr.FirstField())
	})

	t.Run("non-positive baseline is accepted for clamping", func(t *testing.T) {
		req := &RecipeRequest{
			Method:        "V60",
			RoastLevel:    "light",
			CoffeeG:       18,
			WaterG:        300,
			BaselineGrind: float(0),
		}
		assert.NoError(t, req.Validate())
	})

	t.Run("ratio above max when deriving water", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "light", CoffeeG: 18, Ratio: 40}
		assert.ErrorIs(t, req.Validate(), ErrRatioOutOfRange)
	})

	t.Run("unused ratio is not capped", func(t *testing.T) {
		req := &RecipeRequest{Method: "V60", RoastLevel: "light", CoffeeG: 18, WaterG: 300, Ratio: 40}
		require.NoError(t, req.Validate())
		assert.Equal(t, 300.0, req.Water())
	})
}

func TestGrindRequest_Validate(t *testing.T) {
	t.Run("roast is optional", func(t *testing.T) {
		req := &GrindRequest{Method: "espresso"}
		require.NoError(t, req.Validate())
		assert.Equal(t, MethodEspresso, req.Method)
		assert.Equal(t, RoastLevel(""), req.RoastLevel)
		assert.Equal(t, TasteBalanced, req.TasteGoal)
	})

	t.Run("bad roast still rejected", func(t *testing.T) {
		req := &GrindRequest{Method: "V60", RoastLevel: "cinnamon"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidRoastLevel)
	})
}

func TestDialInRequest_Validate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := &DialInRequest{Method: "ESPRESSO", RoastLevel: "light", CurrentGrind: 2.2, TimeS: 18, TasteResult: "Too Sour"}
		require.NoError(t, req.Validate())
		assert.Equal(t, ResultTooSour, req.TasteResult)
	})

	t.Run("invalid taste result", func(t *testing.T) {
		req := &DialInRequest{Method: "V60", CurrentGrind: 11, TimeS: 180, TasteResult: "meh"}
		assert.ErrorIs(t, req.Validate(), ErrInvalidTasteResult)
	})

	t.Run("negative time", func(t *testing.T) {
		req := &DialInRequest{Method: "V60", CurrentGrind: 11, TimeS: -1, TasteResult: "balanced"}
		assert.ErrorIs(t, req.Validate(), ErrNegativeTime)
	})

	t.Run("grind below range is left for clamping", func(t *testing.T) {
		req := &DialInRequest{Method: "V60", CurrentGrind: -1, TimeS: 180, TasteResult: "balanced"}
		assert.NoError(t, req.Validate())
	})
}

func TestCalibrationRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CalibrationRequest{Dial: 11.5}).Validate())
	assert.ErrorIs(t, (&CalibrationRequest{Dial: 0}).Validate(), ErrInvalidDial)
	assert.ErrorIs(t, (&CalibrationRequest{Dial: -2}).Validate(), ErrInvalidDial)
}
