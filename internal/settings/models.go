package settings

import "time"

// UserProfile is the authoritative profile kept in the document store.
type UserProfile struct {
	UserID           string         `json:"user_id" bson:"_id"`
	DisplayName      string         `json:"display_name" bson:"display_name"`
	Goal             string         `json:"goal" bson:"goal"`
	Sex              string         `json:"sex" bson:"sex"`
	BirthYear        int            `json:"birth_year" bson:"birth_year"`
	HeightCm         float64        `json:"height_cm" bson:"height_cm"`
	WeightKg         float64        `json:"weight_kg" bson:"weight_kg"`
	TargetWeightKg   float64        `json:"target_weight_kg" bson:"target_weight_kg"`
	ActivityLevel    string         `json:"activity_level" bson:"activity_level"`
	DietPreference   string         `json:"diet_preference" bson:"diet_preference"`
	ReferralCode     string         `json:"referral_code,omitempty" bson:"referral_code,omitempty"`
	OnboardingStatus string         `json:"onboarding_status" bson:"onboarding_status"`
	NextStatuses     []string       `json:"next_statuses" bson:"-"`
	Answers          map[string]any `json:"answers,omitempty" bson:"answers,omitempty"`
	Notifications    Notifications  `json:"notifications" bson:"notifications"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at"`
}

type Notifications struct {
	DailyReminder bool   `json:"daily_reminder" bson:"daily_reminder"`
	ReminderTime  string `json:"reminder_time,omitempty" bson:"reminder_time,omitempty"` // HH:MM local
	WeeklySummary bool   `json:"weekly_summary" bson:"weekly_summary"`
}

// UpdateProfileRequest carries the editable fields; nil means unchanged.
type UpdateProfileRequest struct {
	DisplayName    *string        `json:"display_name"`
	Goal           *string        `json:"goal"`
	Sex            *string        `json:"sex"`
	BirthYear      *int           `json:"birth_year"`
	HeightCm       *float64       `json:"height_cm"`
	WeightKg       *float64       `json:"weight_kg"`
	TargetWeightKg *float64       `json:"target_weight_kg"`
	ActivityLevel  *string        `json:"activity_level"`
	DietPreference *string        `json:"diet_preference"`
	Notifications  *Notifications `json:"notifications"`
}
