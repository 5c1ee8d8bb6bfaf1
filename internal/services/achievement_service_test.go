package services

import (
	"testing"

	"github.com/ahmetkoprulu/rtqb/models"
)

func TestEvaluateConditionsOperators(t *testing.T) {
	stats := map[string]float64{"wins": 10, "level": 5}

	tests := []struct {
		name      string
		condition models.AchievementCondition
		want      bool
	}{
		{"eq match", models.AchievementCondition{Stat: "wins", Operator: models.OperatorEq, Value: 10}, true},
		{"eq miss", models.AchievementCondition{Stat: "wins", Operator: models.OperatorEq, Value: 9}, false},
		{"gt match", models.AchievementCondition{Stat: "wins", Operator: models.OperatorGt, Value: 9}, true},
		{"gt boundary", models.AchievementCondition{Stat: "wins", Operator: models.OperatorGt, Value: 10}, false},
		{"lt match", models.AchievementCondition{Stat: "level", Operator: models.OperatorLt, Value: 6}, true},
		{"gte boundary", models.AchievementCondition{Stat: "wins", Operator: models.OperatorGte, Value: 10}, true},
		{"lte boundary", models.AchievementCondition{Stat: "level", Operator: models.OperatorLte, Value: 5}, true},
		{"lte miss", models.AchievementCondition{Stat: "level", Operator: models.OperatorLte, Value: 4}, false},
		{"unknown stat", models.AchievementCondition{Stat: "losses", Operator: models.OperatorGte, Value: 0}, false},
		{"unknown operator", models.AchievementCondition{Stat: "wins", Operator: "ne", Value: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateConditions([]models.AchievementCondition{tt.condition}, stats)
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEvaluateConditionsAllMustHold(t *testing.T) {
	stats := map[string]float64{"wins": 10, "level": 5}

	conditions := []models.AchievementCondition{
		{Stat: "wins", Operator: models.OperatorGte, Value: 10},
		{Stat: "level", Operator: models.OperatorGte, Value: 5},
	}
	if !EvaluateConditions(conditions, stats) {
		t.Fatal("expected all conditions to hold")
	}

	conditions[1].Value = 6
	if EvaluateConditions(conditions, stats) {
		t.Fatal("one failing condition must fail the whole evaluation")
	}
}

func TestEvaluateConditionsEmptyNeverUnlocks(t *testing.T) {
	if EvaluateConditions(nil, map[string]float64{"wins": 100}) {
		t.Fatal("achievement with no conditions must never unlock")
	}
}
