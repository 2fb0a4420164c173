package wipe

// WipeMethod определяет метод санитизации
type WipeMethod string

const (
	MethodNISTClear   WipeMethod = "nist_sp800_88_clear"
	MethodNISTPurge   WipeMethod = "nist_sp800_88_purge"
	MethodDoD3Pass    WipeMethod = "dod_3_pass"
	MethodSecureErase WipeMethod = "secure_erase"
	MethodCryptoErase WipeMethod = "crypto_erase"
)

// SecurityLevel уровень строгости затирания
type SecurityLevel string

const (
	LevelQuick    SecurityLevel = "quick"
	LevelStandard SecurityLevel = "standard"
	LevelSecure   SecurityLevel = "secure"
	LevelMilitary SecurityLevel = "military"
)

// Pattern паттерн перезаписи, номинально применяемый в течение прохода
type Pattern string

const (
	PatternZeros          Pattern = "0x00"
	PatternOnes           Pattern = "0xFF"
	PatternRandom         Pattern = "CSPRNG"
	PatternATASecureErase Pattern = "ATA_SECURE_ERASE"
	PatternKeyDestruction Pattern = "KEY_DESTRUCTION"
)

// MethodPolicy политика метода: базовое число проходов и упорядоченный
// список паттернов, циклически выбираемых по номеру прохода
type MethodPolicy struct {
	Method     WipeMethod
	Label      string
	BasePasses int
	Patterns   []Pattern
}

var methodPolicies = map[WipeMethod]MethodPolicy{
	MethodNISTClear: {
		Method:     MethodNISTClear,
		Label:      "NIST SP 800-88 Clear",
		BasePasses: 1,
		Patterns:   []Pattern{PatternRandom},
	},
	MethodNISTPurge: {
		Method:     MethodNISTPurge,
		Label:      "NIST SP 800-88 Purge",
		BasePasses: 3,
		Patterns:   []Pattern{PatternZeros, PatternOnes, PatternRandom},
	},
	MethodDoD3Pass: {
		Method:     MethodDoD3Pass,
		Label:      "DoD 5220.22-M (3 pass)",
		BasePasses: 3,
		Patterns:   []Pattern{PatternZeros, PatternOnes, PatternRandom},
	},
	MethodSecureErase: {
		Method:     MethodSecureErase,
		Label:      "ATA Secure Erase",
		BasePasses: 1,
		Patterns:   []Pattern{PatternATASecureErase},
	},
	MethodCryptoErase: {
		Method:     MethodCryptoErase,
		Label:      "Cryptographic Erase",
		BasePasses: 1,
		Patterns:   []Pattern{PatternKeyDestruction},
	},
}

// SupportedMethods возвращает все известные методы в стабильном порядке
func SupportedMethods() []MethodPolicy {
	order := []WipeMethod{MethodNISTClear, MethodNISTPurge, MethodDoD3Pass, MethodSecureErase, MethodCryptoErase}
	policies := make([]MethodPolicy, 0, len(order))
	for _, m := range order {
		policies = append(policies, methodPolicies[m])
	}
	return policies
}

// ResolveMethod разрешает метод по строке. Неизвестный метод никогда не
// приводит к ошибке: используется консервативный fallback NIST Clear.
func ResolveMethod(method WipeMethod) MethodPolicy {
	if policy, ok := methodPolicies[method]; ok {
		return policy
	}
	return methodPolicies[MethodNISTClear]
}

// CalculatePasses вычисляет итоговое число проходов для уровня
func CalculatePasses(level SecurityLevel, basePasses int) int {
	switch level {
	case LevelQuick:
		passes := basePasses / 2
		if passes < 1 {
			passes = 1
		}
		return passes
	case LevelSecure:
		return basePasses * 2
	case LevelMilitary:
		passes := basePasses * 7
		if passes < 35 {
			passes = 35
		}
		return passes
	case LevelStandard:
		fallthrough
	default:
		return basePasses
	}
}

// PatternForPass выбирает паттерн для прохода pass (нумерация с 1)
func PatternForPass(policy MethodPolicy, pass int) Pattern {
	if len(policy.Patterns) == 0 {
		return PatternZeros
	}
	return policy.Patterns[(pass-1)%len(policy.Patterns)]
}

// ValidateLevel проверяет корректность уровня, неизвестный уровень
// приводится к standard
func ValidateLevel(level SecurityLevel) SecurityLevel {
	switch level {
	case LevelQuick, LevelStandard, LevelSecure, LevelMilitary:
		return level
	default:
		return LevelStandard
	}
}
