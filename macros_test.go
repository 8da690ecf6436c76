package main

import (
	"math"
	"testing"
)

// TestRatios_SumToOne verifies every macro policy's percentages sum to 1.0
// before gram conversion — both the per-goal plan policy and the calculator's
// fixed policy.
func TestRatios_SumToOne(t *testing.T) {
	policies := map[string]macroRatios{"calculator": calculatorRatios}
	for goal, r := range planGoalRatios {
		policies["plan:"+goal] = r
	}

	for name, r := range policies {
		sum := r.Protein + r.Carbs + r.Fat
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("%s: ratios sum to %f, want 1.0", name, sum)
		}
	}
}

// TestAllocateMacros_WeightLoss2000 checks the plan-goal policy on a round
// number: 2000 kcal at 35P/35C/30F → 175g protein, 175g carbs, 67g fat.
func TestAllocateMacros_WeightLoss2000(t *testing.T) {
	got := allocateMacros(2000, "weight_loss")
	want := macroTargets{ProteinG: 175, CarbsG: 175, FatG: 67}
	if got != want {
		t.Errorf("allocateMacros(2000, weight_loss) = %+v, want %+v", got, want)
	}
}

// TestAllocateMacros_Idempotent verifies pure-function behavior: two identical
// calls yield identical output.
func TestAllocateMacros_Idempotent(t *testing.T) {
	first := allocateMacros(2000, "weight_loss")
	second := allocateMacros(2000, "weight_loss")
	if first != second {
		t.Errorf("two identical calls differ: %+v vs %+v", first, second)
	}
}

// TestAllocateMacros_UnknownGoalFallsBack verifies an unrecognized goal uses
// the maintenance ratios rather than failing — allocation has no failure mode.
func TestAllocateMacros_UnknownGoalFallsBack(t *testing.T) {
	got := allocateMacros(2400, "keto_carnivore")
	want := allocateMacros(2400, "maintenance")
	if got != want {
		t.Errorf("unknown goal = %+v, want maintenance allocation %+v", got, want)
	}
}

// TestAllocateMacros_ZeroCalories verifies a zero-calorie input yields all
// zeros, not an error.
func TestAllocateMacros_ZeroCalories(t *testing.T) {
	got := allocateMacros(0, "maintenance")
	if got != (macroTargets{}) {
		t.Errorf("allocateMacros(0, maintenance) = %+v, want all zeros", got)
	}
}

// TestAllocateCalculatorMacros_DivergesFromPlanPolicy pins the known
// inconsistency between the two policies: for a weight-loss calorie target the
// calculator's fixed 25/45/30 split produces different grams than the plan
// policy's 35/35/30. The divergence is preserved on purpose, so this test
// fails loudly if anyone "fixes" it by merging the tables.
func TestAllocateCalculatorMacros_DivergesFromPlanPolicy(t *testing.T) {
	calc := allocateCalculatorMacros(2000)
	plan := allocateMacros(2000, "weight_loss")
	if calc == plan {
		t.Errorf("calculator and plan-goal policies agree at 2000 kcal (%+v) — the tables must stay divergent", calc)
	}
	want := macroTargets{ProteinG: 125, CarbsG: 225, FatG: 67}
	if calc != want {
		t.Errorf("allocateCalculatorMacros(2000) = %+v, want %+v", calc, want)
	}
}
