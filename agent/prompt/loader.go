package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/onboarding.txt
	onboardingRaw string

	//go:embed template/property.txt
	propertyRaw string

	//go:embed template/schedule.txt
	scheduleRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
	Onboarding string
	Property   string
	Schedule   string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time, trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Onboarding: strings.TrimSpace(onboardingRaw),
		Property:   strings.TrimSpace(propertyRaw),
		Schedule:   strings.TrimSpace(scheduleRaw),
	}
}
