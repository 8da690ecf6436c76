package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// Plan-level calorie bounds. Enforced regardless of whether the value came
// from manual entry or a calculator selection.
const (
	minDailyCalories = 800
	maxDailyCalories = 5000
)

// validMealTypes is the set of allowed meal_type values. Reject unknown values
// with 400 rather than letting bad data into the jsonb column.
var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

/* ─── Construction & validation ──────────────────────────────────────── */

// normalizeMeal validates a wire meal and fills absent numeric fields with 0.
// The zero-filling is intentional leniency (the original system accepted meals
// with missing macros), not an oversight — only meal_type and name are hard
// requirements, and explicit negatives are rejected.
func normalizeMeal(mr mealRequest) (meal, error) {
	if !validMealTypes[mr.MealType] {
		return meal{}, &validationError{"meal_type", "must be one of: breakfast, lunch, dinner, snack"}
	}
	if strings.TrimSpace(mr.Name) == "" {
		return meal{}, &validationError{"name", "is required"}
	}

	m := meal{
		MealType:     mr.MealType,
		Name:         mr.Name,
		Description:  mr.Description,
		Ingredients:  mr.Ingredients,
		Instructions: mr.Instructions,
	}
	for _, f := range []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"calories", mr.Calories, &m.Calories},
		{"protein_g", mr.ProteinG, &m.ProteinG},
		{"carbs_g", mr.CarbsG, &m.CarbsG},
		{"fat_g", mr.FatG, &m.FatG},
	} {
		if f.src == nil {
			continue // absent → 0
		}
		if *f.src < 0 {
			return meal{}, &validationError{f.name, "must not be negative"}
		}
		*f.dst = *f.src
	}
	return m, nil
}

// validateMacroTargets rejects negative gram targets. Zero is valid (macros
// may be unset); a negative target is never storable, matching the negative
// rejection normalizeMeal applies to meals.
func validateMacroTargets(proteinG, carbsG, fatG int) error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"protein_g", proteinG},
		{"carbs_g", carbsG},
		{"fat_g", fatG},
	} {
		if f.v < 0 {
			return &validationError{f.name, "must not be negative"}
		}
	}
	return nil
}

// validatePlanFields checks the invariants shared by create and update paths.
func validatePlanFields(name, goal string, dailyCalories float64) error {
	if strings.TrimSpace(name) == "" {
		return &validationError{"name", "is required"}
	}
	if _, ok := planGoalRatios[goal]; !ok {
		return &validationError{"goal", "must be one of: weight_loss, muscle_gain, maintenance, performance"}
	}
	if dailyCalories < minDailyCalories || dailyCalories > maxDailyCalories {
		return &validationError{"daily_calories", "must be between 800 and 5000"}
	}
	return nil
}

// buildPlan validates a create request and assembles the in-memory document.
// Fails fast — no partially-valid plan is ever returned.
func buildPlan(trainerID int, req createPlanRequest) (*planDocument, error) {
	if err := validatePlanFields(req.Name, req.Goal, req.DailyCalories); err != nil {
		return nil, err
	}
	if err := validateMacroTargets(req.ProteinG, req.CarbsG, req.FatG); err != nil {
		return nil, err
	}
	if req.ClientID <= 0 {
		return nil, &validationError{"client_id", "is required"}
	}

	meals := make([]meal, 0, len(req.Meals))
	for _, mr := range req.Meals {
		m, err := normalizeMeal(mr)
		if err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	// Macro targets omitted entirely → derive from the goal policy. Any explicit
	// value disables derivation: the snapshot is last-writer-wins.
	proteinG, carbsG, fatG := req.ProteinG, req.CarbsG, req.FatG
	if proteinG == 0 && carbsG == 0 && fatG == 0 {
		targets := allocateMacros(req.DailyCalories, req.Goal)
		proteinG, carbsG, fatG = targets.ProteinG, targets.CarbsG, targets.FatG
	}

	return &planDocument{
		TrainerID:      trainerID,
		ClientID:       req.ClientID,
		Name:           req.Name,
		Goal:           req.Goal,
		DailyCalories:  req.DailyCalories,
		ProteinG:       proteinG,
		CarbsG:         carbsG,
		FatG:           fatG,
		Meals:          meals,
		Restrictions:   req.Restrictions,
		Supplements:    req.Supplements,
		HydrationNotes: req.HydrationNotes,
		IsActive:       isActive,
	}, nil
}

// computeDailyTotals sums calories and macros across the plan's meals.
// An empty list is a valid plan with all-zero totals.
func computeDailyTotals(meals []meal) dailyTotals {
	var t dailyTotals
	for _, m := range meals {
		t.Calories += m.Calories
		t.ProteinG += m.ProteinG
		t.CarbsG += m.CarbsG
		t.FatG += m.FatG
	}
	return t
}

// mealsJSON serializes the meal list for the jsonb column. Marshalling a slice
// of plain structs cannot fail, but the signature keeps the call sites honest.
func mealsJSON(meals []meal) (string, error) {
	if meals == nil {
		meals = []meal{}
	}
	b, err := json.Marshal(meals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

/* ─── Plan CRUD handlers ─────────────────────────────────────────────── */

// getPlans lists the authenticated trainer's plans, newest first.
// GET /api/plans.
func (h *Handler) getPlans(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")

	plans, err := queryMany[planDocument](h.db, c,
		`SELECT * FROM plans WHERE trainer_id = @trainerID ORDER BY created_at DESC`,
		pgx.NamedArgs{"trainerID": trainerID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch plans")
		return
	}
	// Ensure plans is an empty array (not null) in JSON
	if plans == nil {
		plans = []planDocument{}
	}

	c.JSON(http.StatusOK, plans)
}

// createPlan validates and persists a new plan document.
// POST /api/plans.
func (h *Handler) createPlan(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")

	var body createPlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := buildPlan(trainerID, body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	mealsArg, err := mealsJSON(doc.Meals)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to encode meals")
		return
	}

	plan, err := queryOne[planDocument](h.db, c,
		`INSERT INTO plans (trainer_id, client_id, name, goal, daily_calories,
		                    protein_g, carbs_g, fat_g, meals,
		                    restrictions, supplements, hydration_notes, is_active)
		 VALUES (@trainerID, @clientID, @name, @goal, @dailyCalories,
		         @proteinG, @carbsG, @fatG, @meals::jsonb,
		         @restrictions, @supplements, @hydrationNotes, @isActive)
		 RETURNING *`,
		pgx.NamedArgs{
			"trainerID": doc.TrainerID, "clientID": doc.ClientID,
			"name": doc.Name, "goal": doc.Goal, "dailyCalories": doc.DailyCalories,
			"proteinG": doc.ProteinG, "carbsG": doc.CarbsG, "fatG": doc.FatG,
			"meals":        mealsArg,
			"restrictions": doc.Restrictions, "supplements": doc.Supplements,
			"hydrationNotes": doc.HydrationNotes, "isActive": doc.IsActive,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create plan")
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// fetchPlan loads a plan by ID scoped to the owning trainer. Returns
// pgx.ErrNoRows (wrapped by queryOne) when the plan is missing or owned by
// someone else — the two cases are indistinguishable on purpose.
func (h *Handler) fetchPlan(c *gin.Context, id string, trainerID int) (planDocument, error) {
	return queryOne[planDocument](h.db, c,
		"SELECT * FROM plans WHERE id = @id AND trainer_id = @trainerID",
		pgx.NamedArgs{"id": id, "trainerID": trainerID})
}

// getPlan returns a single plan document.
// GET /api/plans/:id.
func (h *Handler) getPlan(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")

	plan, err := h.fetchPlan(c, c.Param("id"), trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "plan not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// updatePlan partially updates a plan.
// PUT /api/plans/:id. Uses COALESCE so omitted fields keep their current value;
// provided fields are validated against the same invariants as creation.
func (h *Handler) updatePlan(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")
	id := c.Param("id")

	var body updatePlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		apiError(c, http.StatusBadRequest, "name must not be empty")
		return
	}
	if body.Goal != nil {
		if _, ok := planGoalRatios[*body.Goal]; !ok {
			apiError(c, http.StatusBadRequest, "goal must be one of: weight_loss, muscle_gain, maintenance, performance")
			return
		}
	}
	if body.DailyCalories != nil && (*body.DailyCalories < minDailyCalories || *body.DailyCalories > maxDailyCalories) {
		apiError(c, http.StatusBadRequest, "daily_calories must be between 800 and 5000")
		return
	}
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"protein_g", body.ProteinG},
		{"carbs_g", body.CarbsG},
		{"fat_g", body.FatG},
	} {
		if f.v != nil && *f.v < 0 {
			apiError(c, http.StatusBadRequest, f.name+" must not be negative")
			return
		}
	}

	plan, err := queryOne[planDocument](h.db, c,
		`UPDATE plans SET
			name            = COALESCE(@name, name),
			goal            = COALESCE(@goal, goal),
			daily_calories  = COALESCE(@dailyCalories, daily_calories),
			protein_g       = COALESCE(@proteinG, protein_g),
			carbs_g         = COALESCE(@carbsG, carbs_g),
			fat_g           = COALESCE(@fatG, fat_g),
			restrictions    = COALESCE(@restrictions, restrictions),
			supplements     = COALESCE(@supplements, supplements),
			hydration_notes = COALESCE(@hydrationNotes, hydration_notes),
			is_active       = COALESCE(@isActive, is_active),
			updated_at      = now()
		 WHERE id = @id AND trainer_id = @trainerID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "trainerID": trainerID,
			"name": body.Name, "goal": body.Goal, "dailyCalories": body.DailyCalories,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
			"restrictions": body.Restrictions, "supplements": body.Supplements,
			"hydrationNotes": body.HydrationNotes, "isActive": body.IsActive,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "plan not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update plan")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// deletePlan removes a plan outright. Most callers flip is_active off instead;
// hard delete stays available. Returns 204 on success.
// DELETE /api/plans/:id.
func (h *Handler) deletePlan(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM plans WHERE id = @id AND trainer_id = @trainerID",
		pgx.NamedArgs{"id": id, "trainerID": trainerID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete plan")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "plan not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// getPlanTotals sums the plan's meals.
// GET /api/plans/:id/totals.
func (h *Handler) getPlanTotals(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")

	plan, err := h.fetchPlan(c, c.Param("id"), trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "plan not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		}
		return
	}

	c.JSON(http.StatusOK, computeDailyTotals(plan.Meals))
}

/* ─── Meal mutation handlers ─────────────────────────────────────────── */

// saveMeals writes the mutated meal list back to the plan row.
func (h *Handler) saveMeals(c *gin.Context, id string, trainerID int, meals []meal) (planDocument, error) {
	mealsArg, err := mealsJSON(meals)
	if err != nil {
		return planDocument{}, err
	}
	return queryOne[planDocument](h.db, c,
		`UPDATE plans SET meals = @meals::jsonb, updated_at = now()
		 WHERE id = @id AND trainer_id = @trainerID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "trainerID": trainerID, "meals": mealsArg})
}

// addMeal appends a meal to the plan's list.
// POST /api/plans/:id/meals.
func (h *Handler) addMeal(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")
	id := c.Param("id")

	var body mealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := normalizeMeal(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.fetchPlan(c, id, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "plan not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		}
		return
	}

	updated, err := h.saveMeals(c, id, trainerID, append(plan.Meals, m))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save meals")
		return
	}

	c.JSON(http.StatusCreated, updated)
}

// mealIndex parses and range-checks the :index param against the meal list.
func mealIndex(c *gin.Context, meals []meal) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= len(meals) {
		apiError(c, http.StatusNotFound, "meal not found")
		return 0, false
	}
	return idx, true
}

// updateMeal replaces the meal at the given index.
// PUT /api/plans/:id/meals/:index.
func (h *Handler) updateMeal(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")
	id := c.Param("id")

	var body mealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := normalizeMeal(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.fetchPlan(c, id, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "plan not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		}
		return
	}

	idx, ok := mealIndex(c, plan.Meals)
	if !ok {
		return
	}
	plan.Meals[idx] = m

	updated, err := h.saveMeals(c, id, trainerID, plan.Meals)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save meals")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// removeMeal deletes the meal at the given index, preserving the order of the
// remaining meals.
// DELETE /api/plans/:id/meals/:index.
func (h *Handler) removeMeal(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")
	id := c.Param("id")

	plan, err := h.fetchPlan(c, id, trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "plan not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		}
		return
	}

	idx, ok := mealIndex(c, plan.Meals)
	if !ok {
		return
	}
	meals := append(plan.Meals[:idx], plan.Meals[idx+1:]...)

	updated, err := h.saveMeals(c, id, trainerID, meals)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save meals")
		return
	}

	c.JSON(http.StatusOK, updated)
}
