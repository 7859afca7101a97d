package lifecycle

// SlaThresholds — разрешенная пара порогов для (этап, серьезность).
type SlaThresholds struct {
	WarningDays int
	MaxDays     int
}

// Системный дефолт, когда админ не настроил ни одного правила:
// предупреждение с 5-го дня, превышение после 7-го.
const (
	DefaultWarningDays = 5
	DefaultMaxDays     = 7
)

// DefaultThresholds — системная пара порогов; конфигурация может
// подменить ее своими значениями.
func DefaultThresholds() SlaThresholds {
	return SlaThresholds{WarningDays: DefaultWarningDays, MaxDays: DefaultMaxDays}
}

// SlaRule — одно админское правило SLA. Severity пустая строка = правило
// действует для всех серьезностей этапа.
type SlaRule struct {
	Step        Step
	Severity    Severity
	WarningDays int
	MaxDays     int
	Active      bool
}

// ResolveSla выбирает пороги для (step, severity) по явному порядку:
//  1. активное правило с точным совпадением этапа и серьезности;
//  2. активное правило этапа без серьезности (wildcard);
//  3. переданный дефолт (обычно DefaultThresholds или значения из конфига).
//
// Функция тотальна — пара порогов возвращается всегда.
func ResolveSla(step Step, severity Severity, rules []SlaRule, defaults SlaThresholds) SlaThresholds {
	for _, r := range rules {
		if r.Active && r.Step == step && r.Severity != "" && r.Severity == severity {
			return SlaThresholds{WarningDays: r.WarningDays, MaxDays: r.MaxDays}
		}
	}
	for _, r := range rules {
		if r.Active && r.Step == step && r.Severity == "" {
			return SlaThresholds{WarningDays: r.WarningDays, MaxDays: r.MaxDays}
		}
	}
	return defaults
}

// Classification — результат сверки старения этапа с порогами SLA.
type Classification string

const (
	ClassificationOK       Classification = "OK"
	ClassificationWarning  Classification = "WARNING"
	ClassificationExceeded Classification = "EXCEEDED"
)

// Classify сравнивает старение в текущем этапе с порогами.
// Граница maxDays еще WARNING, превышение — строго больше.
func Classify(agingByStep int, t SlaThresholds) Classification {
	switch {
	case agingByStep > t.MaxDays:
		return ClassificationExceeded
	case agingByStep >= t.WarningDays:
		return ClassificationWarning
	default:
		return ClassificationOK
	}
}
