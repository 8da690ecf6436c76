package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// getClients lists the authenticated trainer's clients.
// GET /api/clients. Returns an empty array (not null) when none exist.
func (h *Handler) getClients(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")

	clients, err := queryMany[clientProfile](h.db, c,
		`SELECT * FROM clients WHERE trainer_id = @trainerID ORDER BY name ASC`,
		pgx.NamedArgs{"trainerID": trainerID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch clients")
		return
	}
	if clients == nil {
		clients = []clientProfile{}
	}

	c.JSON(http.StatusOK, clients)
}

// createClient stores a client's biometric profile. The same range invariants
// as the calculator apply, so a stored client is always a valid calculator
// input later. Activity level IS validated here (unlike in the calculator,
// which degrades) — rejecting bad data at write time beats silently computing
// with the fallback multiplier forever after.
// POST /api/clients.
func (h *Handler) createClient(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")

	var body createClientRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if err := validateBiometricInput(biometricInput{
		Gender:        body.Gender,
		AgeYears:      body.AgeYears,
		WeightKG:      body.WeightKG,
		HeightCM:      body.HeightCM,
		ActivityLevel: body.ActivityLevel,
	}); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := activityMultipliers[body.ActivityLevel]; !ok {
		apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, lightly_active, moderately_active, very_active, extremely_active")
		return
	}

	client, err := queryOne[clientProfile](h.db, c,
		`INSERT INTO clients (trainer_id, name, gender, age_years, weight_kg, height_cm, activity_level)
		 VALUES (@trainerID, @name, @gender, @ageYears, @weightKG, @heightCM, @activityLevel)
		 RETURNING *`,
		pgx.NamedArgs{
			"trainerID": trainerID, "name": body.Name, "gender": body.Gender,
			"ageYears": body.AgeYears, "weightKG": body.WeightKG,
			"heightCM": body.HeightCM, "activityLevel": body.ActivityLevel,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

// fetchClient loads a client by ID scoped to the owning trainer.
func (h *Handler) fetchClient(c *gin.Context, id string, trainerID int) (clientProfile, error) {
	return queryOne[clientProfile](h.db, c,
		"SELECT * FROM clients WHERE id = @id AND trainer_id = @trainerID",
		pgx.NamedArgs{"id": id, "trainerID": trainerID})
}

// getClient returns a single client profile.
// GET /api/clients/:id.
func (h *Handler) getClient(c *gin.Context) {
	trainerID := c.GetInt("trainer_id")

	client, err := h.fetchClient(c, c.Param("id"), trainerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "client not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch client")
		}
		return
	}

	c.JSON(http.StatusOK, client)
}
