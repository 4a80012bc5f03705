// Package nutrition computes calorie targets and meal scores from a user's
// onboarding profile.
package nutrition

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidProfile = errors.New("invalid nutrition profile")

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

var goalAdjustments = map[Goal]float64{
	GoalLose:     -500,
	GoalMaintain: 0,
	GoalGain:     300,
}

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9

	proteinShare = 0.30
	carbsShare   = 0.40
	fatShare     = 0.30

	MealsPerDay = 3
)

// Profile carries the body metrics collected during onboarding.
type Profile struct {
	Sex      Sex           `json:"sex"`
	AgeYears int           `json:"age_years"`
	WeightKg float64       `json:"weight_kg"`
	HeightCm float64       `json:"height_cm"`
	Activity ActivityLevel `json:"activity_level"`
}

func (p Profile) Validate() error {
	switch {
	case p.WeightKg <= 0:
		return fmt.Errorf("%w: weight must be positive", ErrInvalidProfile)
	case p.HeightCm <= 0:
		return fmt.Errorf("%w: height must be positive", ErrInvalidProfile)
	case p.AgeYears <= 0:
		return fmt.Errorf("%w: age must be positive", ErrInvalidProfile)
	}
	switch p.Sex {
	case SexMale, SexFemale, SexOther:
	default:
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidProfile, p.Sex)
	}
	if _, ok := activityMultipliers[p.Activity]; !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, p.Activity)
	}
	return nil
}

// Targets are daily intake targets.
type Targets struct {
	BMR      float64 `json:"bmr"`
	TDEE     float64 `json:"tdee"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Meal is the macro content of a single logged meal.
type Meal struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// BMR uses the Mifflin-St Jeor equation. SexOther averages both variants.
func BMR(p Profile) float64 {
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.AgeYears)
	switch p.Sex {
	case SexMale:
		return base + 5
	case SexFemale:
		return base - 161
	default:
		return base - 78
	}
}

// TDEE scales BMR by the activity multiplier; unknown levels count as sedentary.
func TDEE(p Profile) float64 {
	m, ok := activityMultipliers[p.Activity]
	if !ok {
		m = activityMultipliers[ActivitySedentary]
	}
	return BMR(p) * m
}

func calorieFloor(sex Sex) float64 {
	if sex == SexMale {
		return 1500
	}
	return 1200
}

// DailyTargets derives calorie and macro targets for the goal.
func DailyTargets(p Profile, goal Goal) (Targets, error) {
	if err := p.Validate(); err != nil {
		return Targets{}, err
	}
	adj, ok := goalAdjustments[goal]
	if !ok {
		return Targets{}, fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, goal)
	}

	bmr := BMR(p)
	tdee := TDEE(p)
	calories := math.Max(tdee+adj, calorieFloor(p.Sex))

	return Targets{
		BMR:      math.Round(bmr),
		TDEE:     math.Round(tdee),
		Calories: math.Round(calories),
		ProteinG: math.Round(calories * proteinShare / kcalPerGramProtein),
		CarbsG:   math.Round(calories * carbsShare / kcalPerGramCarbs),
		FatG:     math.Round(calories * fatShare / kcalPerGramFat),
	}, nil
}

func componentScore(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	score := 100 * (1 - math.Abs(actual-target)/target)
	return math.Min(100, math.Max(0, score))
}

// MealScore rates a meal against one meal's share of the daily targets, 0 to 100.
func MealScore(meal Meal, daily Targets) float64 {
	per := float64(MealsPerDay)
	score := 0.40*componentScore(meal.Calories, daily.Calories/per) +
		0.30*componentScore(meal.ProteinG, daily.ProteinG/per) +
		0.15*componentScore(meal.CarbsG, daily.CarbsG/per) +
		0.15*componentScore(meal.FatG, daily.FatG/per)
	return math.Round(score*10) / 10
}

// DailyScore averages meal scores weighted by meal calories.
func DailyScore(meals []Meal, daily Targets) float64 {
	var weighted, total float64
	for _, meal := range meals {
		if meal.Calories <= 0 {
			continue
		}
		weighted += MealScore(meal, daily) * meal.Calories
		total += meal.Calories
	}
	if total == 0 {
		return 0
	}
	return math.Round(weighted/total*10) / 10
}
