package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Ни одного правила — всегда системный дефолт 5/7.
func TestResolveSla_DefaultFallback(t *testing.T) {
	for _, step := range AllSteps {
		for _, sev := range []Severity{SeverityS, SeverityA, SeverityB, SeverityC} {
			got := ResolveSla(step, sev, nil, DefaultThresholds())
			assert.Equal(t, SlaThresholds{WarningDays: 5, MaxDays: 7}, got, "этап %s, MG %s", step, sev)
		}
	}
}

// Правило с точной серьезностью побеждает wildcard того же этапа.
func TestResolveSla_SeveritySpecificWins(t *testing.T) {
	rules := []SlaRule{
		{Step: StepAwaitingTechAnalysis, Severity: "", WarningDays: 7, MaxDays: 10, Active: true},
		{Step: StepAwaitingTechAnalysis, Severity: SeverityA, WarningDays: 3, MaxDays: 5, Active: true},
	}

	got := ResolveSla(StepAwaitingTechAnalysis, SeverityA, rules, DefaultThresholds())
	assert.Equal(t, SlaThresholds{WarningDays: 3, MaxDays: 5}, got)

	// Для другой серьезности — wildcard этапа.
	got = ResolveSla(StepAwaitingTechAnalysis, SeverityB, rules, DefaultThresholds())
	assert.Equal(t, SlaThresholds{WarningDays: 7, MaxDays: 10}, got)
}

func TestResolveSla_InactiveRulesSkipped(t *testing.T) {
	rules := []SlaRule{
		{Step: StepAwaitingRootCause, Severity: SeverityS, WarningDays: 1, MaxDays: 2, Active: false},
		{Step: StepAwaitingRootCause, Severity: "", WarningDays: 4, MaxDays: 9, Active: false},
	}

	got := ResolveSla(StepAwaitingRootCause, SeverityS, rules, DefaultThresholds())
	assert.Equal(t, SlaThresholds{WarningDays: DefaultWarningDays, MaxDays: DefaultMaxDays}, got,
		"неактивные правила не должны участвовать в разрешении")
}

func TestResolveSla_OtherStepIgnored(t *testing.T) {
	rules := []SlaRule{
		{Step: StepAwaitingValidation, Severity: "", WarningDays: 2, MaxDays: 3, Active: true},
	}
	got := ResolveSla(StepAwaitingDisposition, SeverityC, rules, DefaultThresholds())
	assert.Equal(t, SlaThresholds{WarningDays: 5, MaxDays: 7}, got)
}

// Дефолт из конфигурации доезжает до результата, когда правил нет.
func TestResolveSla_ConfiguredDefaultUsed(t *testing.T) {
	custom := SlaThresholds{WarningDays: 2, MaxDays: 3}
	got := ResolveSla(StepAwaitingCorrectiveAction, SeverityB, nil, custom)
	assert.Equal(t, custom, got)
}

func TestClassify_Boundaries(t *testing.T) {
	thresholds := SlaThresholds{WarningDays: 5, MaxDays: 7}

	cases := []struct {
		aging int
		want  Classification
	}{
		{0, ClassificationOK},
		{4, ClassificationOK},
		{5, ClassificationWarning},
		{7, ClassificationWarning},
		{8, ClassificationExceeded},
		{100, ClassificationExceeded},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.aging, thresholds), "%d дней", c.aging)
	}
}
