package main

import (
	"time"
)

/* ─── Domain structs ─────────────────────────────────────────────────── */

// trainer maps to the trainers table. AuthToken and Password are hidden from
// JSON responses.
type trainer struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// clientProfile maps to the clients table: the biometric and demographic data
// the calculator and the export's client-info block consume. Rows are scoped
// to the owning trainer.
type clientProfile struct {
	ID            int        `json:"id" db:"id"`
	TrainerID     int        `json:"trainer_id" db:"trainer_id"`
	Name          string     `json:"name" db:"name"`
	Gender        string     `json:"gender" db:"gender"`
	AgeYears      int        `json:"age_years" db:"age_years"`
	WeightKG      float64    `json:"weight_kg" db:"weight_kg"`
	HeightCM      float64    `json:"height_cm" db:"height_cm"`
	ActivityLevel string     `json:"activity_level" db:"activity_level"`
	CreatedAt     *time.Time `json:"created_at" db:"created_at"`
}

// meal is one entry in a plan's meal list. Meals have no independent lifecycle:
// they live inside the plan's jsonb meals column and are deleted by removal
// from the list. Numeric fields are plain values (not pointers) because absent
// values are normalized to 0 at the construction boundary — see normalizeMeal.
type meal struct {
	MealType     string  `json:"meal_type"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Calories     float64 `json:"calories"`
	ProteinG     float64 `json:"protein_g"`
	CarbsG       float64 `json:"carbs_g"`
	FatG         float64 `json:"fat_g"`
	Ingredients  string  `json:"ingredients,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
}

// macroTargets holds gram-level macro targets. All values are non-negative.
type macroTargets struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// planDocument maps to the plans table. Calories and macros are a snapshot:
// they may come from manual entry, a selected calorie option, or the macro
// allocator, and the last writer wins — nothing re-derives them on read.
type planDocument struct {
	ID             int        `json:"id" db:"id"`
	TrainerID      int        `json:"trainer_id" db:"trainer_id"`
	ClientID       int        `json:"client_id" db:"client_id"`
	Name           string     `json:"name" db:"name"`
	Goal           string     `json:"goal" db:"goal"`
	DailyCalories  float64    `json:"daily_calories" db:"daily_calories"`
	ProteinG       int        `json:"protein_g" db:"protein_g"`
	CarbsG         int        `json:"carbs_g" db:"carbs_g"`
	FatG           int        `json:"fat_g" db:"fat_g"`
	Meals          []meal     `json:"meals" db:"meals"`
	Restrictions   *string    `json:"restrictions" db:"restrictions"`
	Supplements    *string    `json:"supplements" db:"supplements"`
	HydrationNotes *string    `json:"hydration_notes" db:"hydration_notes"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedAt      *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at" db:"updated_at"`
}

// dailyTotals is the sum across the plan's meals, returned by
// GET /api/plans/:id/totals. An empty meal list yields all zeros, not an error.
type dailyTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

/* ─── Request types ──────────────────────────────────────────────────── */

// biometricInput is the request body for POST /api/calculator/energy-profile.
type biometricInput struct {
	Gender        string  `json:"gender"`
	AgeYears      int     `json:"age_years"`
	WeightKG      float64 `json:"weight_kg"`
	HeightCM      float64 `json:"height_cm"`
	ActivityLevel string  `json:"activity_level"`
}

// createClientRequest is the request body for POST /api/clients.
type createClientRequest struct {
	Name          string  `json:"name"`
	Gender        string  `json:"gender"`
	AgeYears      int     `json:"age_years"`
	WeightKG      float64 `json:"weight_kg"`
	HeightCM      float64 `json:"height_cm"`
	ActivityLevel string  `json:"activity_level"`
}

// mealRequest is the wire form of a meal. Numeric fields are pointers so an
// omitted value can be told apart from an explicit 0 — both normalize to 0,
// which is intentional leniency carried over from the original system.
type mealRequest struct {
	MealType     string   `json:"meal_type"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Calories     *float64 `json:"calories"`
	ProteinG     *float64 `json:"protein_g"`
	CarbsG       *float64 `json:"carbs_g"`
	FatG         *float64 `json:"fat_g"`
	Ingredients  string   `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// createPlanRequest is the request body for POST /api/plans.
type createPlanRequest struct {
	ClientID       int           `json:"client_id"`
	Name           string        `json:"name"`
	Goal           string        `json:"goal"`
	DailyCalories  float64       `json:"daily_calories"`
	ProteinG       int           `json:"protein_g"`
	CarbsG         int           `json:"carbs_g"`
	FatG           int           `json:"fat_g"`
	Meals          []mealRequest `json:"meals"`
	Restrictions   *string       `json:"restrictions"`
	Supplements    *string       `json:"supplements"`
	HydrationNotes *string       `json:"hydration_notes"`
	IsActive       *bool         `json:"is_active"`
}

// updatePlanRequest is the request body for PUT /api/plans/:id. All fields are
// pointers — only non-nil fields get written, same pattern as the COALESCE
// updates on the plan row.
type updatePlanRequest struct {
	Name           *string  `json:"name"`
	Goal           *string  `json:"goal"`
	DailyCalories  *float64 `json:"daily_calories"`
	ProteinG       *int     `json:"protein_g"`
	CarbsG         *int     `json:"carbs_g"`
	FatG           *int     `json:"fat_g"`
	Restrictions   *string  `json:"restrictions"`
	Supplements    *string  `json:"supplements"`
	HydrationNotes *string  `json:"hydration_notes"`
	IsActive       *bool    `json:"is_active"`
}
