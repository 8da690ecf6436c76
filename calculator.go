package main

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

/* ─── Static tables ──────────────────────────────────────────────────── */

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used for
// input validation when creating clients.
var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extremely_active":  1.9,
}

// defaultActivityMultiplier is applied when an activity level string is not in
// the table. Falling back to the moderate multiplier instead of failing is a
// deliberate degradation: a stale or misspelled level still yields a usable
// profile.
const defaultActivityMultiplier = 1.55

// goalAdjustment is one row of the fixed goal table: a daily calorie delta
// applied to TDEE.
type goalAdjustment struct {
	Key       string
	Label     string
	DeltaKcal float64
}

// goalAdjustments is the fixed goal table, ordered extreme loss → aggressive
// gain. Calorie options are always emitted in this order, never sorted by value.
var goalAdjustments = []goalAdjustment{
	{"extreme_loss", "Extreme Weight Loss", -1000},
	{"rapid_loss", "Rapid Weight Loss", -750},
	{"weight_loss", "Weight Loss", -500},
	{"mild_loss", "Mild Weight Loss", -250},
	{"maintain", "Maintain Weight", 0},
	{"mild_gain", "Mild Weight Gain", 250},
	{"weight_gain", "Weight Gain", 500},
	{"aggressive_gain", "Aggressive Weight Gain", 750},
}

// kgPerLB converts the 3500 kcal ≈ 1 lb fat heuristic into kg. The original
// system reported adjustment×7/3500 directly (an implicitly lbs/week figure
// next to kg-denominated weights); we multiply through by kgPerLB so the field
// is honest about its unit.
const (
	kgPerLB      = 0.45359237
	kcalPerLBFat = 3500.0
)

/* ─── Output types ───────────────────────────────────────────────────── */

// calorieOption is one goal-table entry priced against the client's TDEE.
type calorieOption struct {
	GoalKey              string       `json:"goal_key"`
	Label                string       `json:"label"`
	DailyCalories        int          `json:"daily_calories"`
	WeeklyWeightChangeKG float64      `json:"weekly_weight_change_kg"`
	MacroTargets         macroTargets `json:"macro_targets"`
}

// energyProfile is the response for POST /api/calculator/energy-profile.
type energyProfile struct {
	BMR            int             `json:"bmr"`
	TDEE           int             `json:"tdee"`
	CalorieOptions []calorieOption `json:"calorie_options"`
}

/* ─── Validation ─────────────────────────────────────────────────────── */

// validationError reports which biometric field failed and why. Inputs are
// never coerced into range silently.
type validationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// validateBiometricInput checks every invariant on the input. Activity level is
// deliberately not validated here — unknown levels degrade to the moderate
// multiplier instead of failing.
func validateBiometricInput(in biometricInput) error {
	if in.Gender != "male" && in.Gender != "female" {
		return &validationError{"gender", "must be male or female"}
	}
	if in.AgeYears < 10 || in.AgeYears > 100 {
		return &validationError{"age_years", "must be between 10 and 100"}
	}
	if in.WeightKG < 20 || in.WeightKG > 500 {
		return &validationError{"weight_kg", "must be between 20 and 500"}
	}
	if in.HeightCM < 100 || in.HeightCM > 250 {
		return &validationError{"height_cm", "must be between 100 and 250"}
	}
	return nil
}

/* ─── Calculator ─────────────────────────────────────────────────────── */

// computeBMR applies the revised Harris-Benedict equations. No rounding here —
// callers round only at final output.
func computeBMR(gender string, weightKG, heightCM float64, ageYears int) float64 {
	age := float64(ageYears)
	if gender == "male" {
		return 88.362 + 13.397*weightKG + 4.799*heightCM - 5.677*age
	}
	return 447.593 + 9.247*weightKG + 3.098*heightCM - 4.330*age
}

// activityMultiplier resolves an activity level to its multiplier, degrading to
// the moderate multiplier for unknown levels.
func activityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return defaultActivityMultiplier
}

// computeEnergyProfile derives BMR, TDEE, and the 8 calorie options from
// biometric input. Fails fast with a validationError — no partial profile is
// ever returned.
func computeEnergyProfile(in biometricInput) (*energyProfile, error) {
	if err := validateBiometricInput(in); err != nil {
		return nil, err
	}

	bmr := computeBMR(in.Gender, in.WeightKG, in.HeightCM, in.AgeYears)
	tdee := bmr * activityMultiplier(in.ActivityLevel)

	options := make([]calorieOption, len(goalAdjustments))
	for i, g := range goalAdjustments {
		daily := math.Round(tdee + g.DeltaKcal)
		options[i] = calorieOption{
			GoalKey:              g.Key,
			Label:                g.Label,
			DailyCalories:        int(daily),
			WeeklyWeightChangeKG: g.DeltaKcal * 7 / kcalPerLBFat * kgPerLB,
			MacroTargets:         allocateCalculatorMacros(daily),
		}
	}

	return &energyProfile{
		BMR:            int(math.Round(bmr)),
		TDEE:           int(math.Round(tdee)),
		CalorieOptions: options,
	}, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// postEnergyProfile computes an energy profile from biometric input.
// POST /api/calculator/energy-profile. Validation failures are 400s carrying
// the offending field.
func (h *Handler) postEnergyProfile(c *gin.Context) {
	var in biometricInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := computeEnergyProfile(in)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, profile)
}
