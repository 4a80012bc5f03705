package settings

import (
	"strconv"
	"strings"
	"time"
)

// Answer keys written by the onboarding screens.
const (
	answerName           = "name"
	answerGoal           = "goal"
	answerGender         = "gender"
	answerBirthDate      = "birth_date"
	answerHeightCm       = "height_cm"
	answerWeightKg       = "weight_kg"
	answerTargetWeightKg = "target_weight_kg"
	answerActivity       = "activity_level"
	answerDiet           = "diet_preference"
	answerReferralCode   = "referral_code"
	answerReminders      = "daily_reminder"
)

// applyAnswers fills profile fields from the loosely typed answers bag.
// Missing or malformed answers leave the field untouched.
func applyAnswers(p *UserProfile, answers map[string]any) {
	if v, ok := stringAnswer(answers, answerName); ok {
		p.DisplayName = v
	}
	if v, ok := stringAnswer(answers, answerGoal); ok {
		p.Goal = v
	}
	if v, ok := stringAnswer(answers, answerGender); ok {
		p.Sex = strings.ToLower(v)
	}
	if v, ok := stringAnswer(answers, answerBirthDate); ok {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			p.BirthYear = t.Year()
		}
	}
	if v, ok := numberAnswer(answers, answerHeightCm); ok {
		p.HeightCm = v
	}
	if v, ok := numberAnswer(answers, answerWeightKg); ok {
		p.WeightKg = v
	}
	if v, ok := numberAnswer(answers, answerTargetWeightKg); ok {
		p.TargetWeightKg = v
	}
	if v, ok := stringAnswer(answers, answerActivity); ok {
		p.ActivityLevel = v
	}
	if v, ok := stringAnswer(answers, answerDiet); ok {
		p.DietPreference = v
	}
	if v, ok := stringAnswer(answers, answerReferralCode); ok {
		p.ReferralCode = strings.ToUpper(v)
	}
	if v, ok := answers[answerReminders].(bool); ok {
		p.Notifications.DailyReminder = v
	}
}

func stringAnswer(answers map[string]any, key string) (string, bool) {
	s, ok := answers[key].(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// numberAnswer accepts JSON numbers and numeric strings.
func numberAnswer(answers map[string]any, key string) (float64, bool) {
	switch v := answers[key].(type) {
	case float64:
		return v, v > 0
	case int:
		return float64(v), v > 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && f > 0
	}
	return 0, false
}
