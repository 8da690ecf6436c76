package main

import "math"

// Calories per gram of each macronutrient.
const (
	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0
)

// macroRatios is a protein/carbs/fat percentage split. Each policy's ratios
// sum to exactly 1.0.
type macroRatios struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

// planGoalRatios varies the split per plan goal. Note these are NOT the same
// numbers as calculatorRatios: the two policies coexisted unreconciled in the
// original system and are kept separate on purpose rather than merged.
var planGoalRatios = map[string]macroRatios{
	"weight_loss": {Protein: 0.35, Carbs: 0.35, Fat: 0.30},
	"muscle_gain": {Protein: 0.30, Carbs: 0.45, Fat: 0.25},
	"maintenance": {Protein: 0.25, Carbs: 0.45, Fat: 0.30},
	"performance": {Protein: 0.20, Carbs: 0.55, Fat: 0.25},
}

// defaultPlanGoalRatios is used for unrecognized goal categories. Allocation
// never fails.
var defaultPlanGoalRatios = planGoalRatios["maintenance"]

// calculatorRatios is the fixed split applied to every calorie option the
// calculator emits, regardless of goal.
var calculatorRatios = macroRatios{Protein: 0.25, Carbs: 0.45, Fat: 0.30}

// gramsFor converts a calorie total and a ratio set into gram targets.
func gramsFor(calories float64, r macroRatios) macroTargets {
	return macroTargets{
		ProteinG: int(math.Round(calories * r.Protein / kcalPerGramProtein)),
		CarbsG:   int(math.Round(calories * r.Carbs / kcalPerGramCarbs)),
		FatG:     int(math.Round(calories * r.Fat / kcalPerGramFat)),
	}
}

// allocateMacros distributes calories into gram targets using the plan-goal
// policy. Pure: identical inputs always yield identical output.
func allocateMacros(calories float64, goal string) macroTargets {
	r, ok := planGoalRatios[goal]
	if !ok {
		r = defaultPlanGoalRatios
	}
	return gramsFor(calories, r)
}

// allocateCalculatorMacros distributes calories using the calculator policy
// (25% protein / 45% carbs / 30% fat for every goal).
func allocateCalculatorMacros(calories float64) macroTargets {
	return gramsFor(calories, calculatorRatios)
}
