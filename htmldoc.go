package main

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// planDocTemplate is the full printable document: header, client info block,
// nutrition summary with the macro percentage split, one section per meal, a
// totals table, and the optional notes sections. Given the same plan and
// client, the output is identical except for the generated-at footer.
const planDocTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Plan.Name}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
h1 { border-bottom: 2px solid #2c7; padding-bottom: 8px; }
h2 { margin-top: 28px; color: #2c7; }
table { border-collapse: collapse; width: 100%; margin-top: 8px; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #f4f4f4; }
.meta { color: #666; font-size: 0.9em; }
footer { margin-top: 40px; color: #999; font-size: 0.8em; }
</style>
</head>
<body>
<h1>{{.Plan.Name}}</h1>

<h2>Client</h2>
<table>
<tr><th>Name</th><td>{{.Client.Name}}</td></tr>
<tr><th>Gender</th><td>{{.Client.Gender}}</td></tr>
<tr><th>Age</th><td>{{.Client.AgeYears}} years</td></tr>
<tr><th>Weight</th><td>{{printf "%.1f" .Client.WeightKG}} kg</td></tr>
<tr><th>Height</th><td>{{printf "%.1f" .Client.HeightCM}} cm</td></tr>
<tr><th>Activity level</th><td>{{.ActivityLabel}}</td></tr>
</table>

<h2>Nutrition Summary</h2>
<table>
<tr><th>Goal</th><td>{{.GoalLabel}}</td></tr>
<tr><th>Daily calories</th><td>{{printf "%.0f" .Plan.DailyCalories}} kcal</td></tr>
<tr><th>Protein</th><td>{{.Plan.ProteinG}} g ({{.ProteinPct}}%)</td></tr>
<tr><th>Carbohydrates</th><td>{{.Plan.CarbsG}} g ({{.CarbsPct}}%)</td></tr>
<tr><th>Fat</th><td>{{.Plan.FatG}} g ({{.FatPct}}%)</td></tr>
</table>

<h2>Meals</h2>
{{if .Plan.Meals}}
{{range .Plan.Meals}}
<h3>{{.MealType}} — {{.Name}}</h3>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<table>
<tr><th>Calories</th><th>Protein</th><th>Carbs</th><th>Fat</th></tr>
<tr>
<td>{{printf "%.0f" .Calories}} kcal</td>
<td>{{printf "%.1f" .ProteinG}} g</td>
<td>{{printf "%.1f" .CarbsG}} g</td>
<td>{{printf "%.1f" .FatG}} g</td>
</tr>
</table>
{{if .Ingredients}}<p class="meta"><strong>Ingredients:</strong> {{.Ingredients}}</p>{{end}}
{{if .Instructions}}<p class="meta"><strong>Instructions:</strong> {{.Instructions}}</p>{{end}}
{{end}}

<h2>Daily Totals</h2>
<table>
<tr><th>Calories</th><th>Protein</th><th>Carbs</th><th>Fat</th></tr>
<tr>
<td>{{printf "%.0f" .Totals.Calories}} kcal</td>
<td>{{printf "%.1f" .Totals.ProteinG}} g</td>
<td>{{printf "%.1f" .Totals.CarbsG}} g</td>
<td>{{printf "%.1f" .Totals.FatG}} g</td>
</tr>
</table>
{{else}}
<p class="meta">No meals have been added to this plan yet.</p>
{{end}}

{{if .Restrictions}}<h2>Dietary Restrictions</h2><p>{{.Restrictions}}</p>{{end}}
{{if .Supplements}}<h2>Supplements</h2><p>{{.Supplements}}</p>{{end}}
{{if .HydrationNotes}}<h2>Hydration</h2><p>{{.HydrationNotes}}</p>{{end}}

<footer>Generated {{.GeneratedAt}}</footer>
</body>
</html>
`

var planDocTmpl = template.Must(template.New("plandoc").Parse(planDocTemplate))

// planDocView is the template input assembled from a plan and its client.
type planDocView struct {
	Plan           *planDocument
	Client         *clientProfile
	GoalLabel      string
	ActivityLabel  string
	Totals         dailyTotals
	ProteinPct     int
	CarbsPct       int
	FatPct         int
	Restrictions   string
	Supplements    string
	HydrationNotes string
	GeneratedAt    string
}

// titleCase turns snake_case keys ("moderately_active", "weight_loss") into
// display labels ("Moderately Active", "Weight Loss").
func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// macroPercentages splits the plan's macro targets into calorie-share
// percentages (protein calories / total macro calories, etc.). All zeros when
// no macros are set — never a division by zero.
func macroPercentages(p *planDocument) (proteinPct, carbsPct, fatPct int) {
	proteinCal := float64(p.ProteinG) * kcalPerGramProtein
	carbsCal := float64(p.CarbsG) * kcalPerGramCarbs
	fatCal := float64(p.FatG) * kcalPerGramFat
	total := proteinCal + carbsCal + fatCal
	if total == 0 {
		return 0, 0, 0
	}
	return int(proteinCal/total*100 + 0.5),
		int(carbsCal/total*100 + 0.5),
		int(fatCal/total*100 + 0.5)
}

// assemblePlanHTML renders the plan document to HTML. This is the input to the
// PDF renderer AND the fallback artifact itself, so it must succeed or the
// whole export fails — there is no further degradation below HTML.
func assemblePlanHTML(plan *planDocument, client *clientProfile, generatedAt time.Time) (string, error) {
	if plan == nil || strings.TrimSpace(plan.Name) == "" {
		return "", fmt.Errorf("plan is missing a name")
	}
	if client == nil {
		return "", fmt.Errorf("client profile is required")
	}

	proteinPct, carbsPct, fatPct := macroPercentages(plan)
	view := planDocView{
		Plan:          plan,
		Client:        client,
		GoalLabel:     titleCase(plan.Goal),
		ActivityLabel: titleCase(client.ActivityLevel),
		Totals:        computeDailyTotals(plan.Meals),
		ProteinPct:    proteinPct,
		CarbsPct:      carbsPct,
		FatPct:        fatPct,
		GeneratedAt:   generatedAt.UTC().Format("2006-01-02 15:04 UTC"),
	}
	if plan.Restrictions != nil {
		view.Restrictions = *plan.Restrictions
	}
	if plan.Supplements != nil {
		view.Supplements = *plan.Supplements
	}
	if plan.HydrationNotes != nil {
		view.HydrationNotes = *plan.HydrationNotes
	}

	var buf bytes.Buffer
	if err := planDocTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render plan template: %w", err)
	}
	return buf.String(), nil
}
