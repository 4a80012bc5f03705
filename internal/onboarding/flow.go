package onboarding

import "nutriguide/onboarding-backend/pkg/workflows"

// Step ids of the default flow. Clients use them as screen identifiers.
const (
	StepWelcome       = "welcome"
	StepGoal          = "goal"
	StepGender        = "gender"
	StepBirthDate     = "birth-date"
	StepMeasurements  = "height-weight"
	StepActivity      = "activity-level"
	StepTargetWeight  = "target-weight"
	StepDiet          = "diet-preference"
	StepReferral      = "referral-code"
	StepCreateAccount = "create-account"
	StepNotifications = "notifications"
	StepPlanReady     = "plan-ready"
)

// DefaultFlow is the onboarding flow shipped with the app.
// The account step is only reachable going forward.
var DefaultFlow = workflows.MustSequencer([]workflows.StepDefinition{
	{ID: StepWelcome, Route: "/onboarding/welcome", Title: "Welcome"},
	{ID: StepGoal, Route: "/onboarding/goal", Title: "What is your goal?"},
	{ID: StepGender, Route: "/onboarding/gender", Title: "Your sex"},
	{ID: StepBirthDate, Route: "/onboarding/birth-date", Title: "When were you born?"},
	{ID: StepMeasurements, Route: "/onboarding/height-weight", Title: "Height & weight"},
	{ID: StepActivity, Route: "/onboarding/activity-level", Title: "How active are you?"},
	{ID: StepTargetWeight, Route: "/onboarding/target-weight", Title: "Target weight"},
	{ID: StepDiet, Route: "/onboarding/diet-preference", Title: "Diet preference", Optional: true},
	{ID: StepReferral, Route: "/onboarding/referral-code", Title: "Referral code", Optional: true},
	{ID: StepCreateAccount, Route: "/onboarding/create-account", Title: "Create your account", SkipOnBack: true},
	{ID: StepNotifications, Route: "/onboarding/notifications", Title: "Stay on track", Optional: true},
	{ID: StepPlanReady, Route: "/onboarding/plan-ready", Title: "Your plan is ready"},
})
