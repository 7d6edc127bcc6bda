package models

import "strings"

// Method is a brew method the advisor knows how to build recipes for.
// Use these constants instead of magic strings for type safety.
type Method string

const (
	MethodV60      Method = "V60"
	MethodEspresso Method = "ESPRESSO"
)

// String returns the string representation of the Method.
func (m Method) String() string {
	return string(m)
}

// DisplayName returns a human-readable name for the Method.
func (m Method) DisplayName() string {
	switch m {
	case MethodV60:
		return "V60 pour-over"
	case MethodEspresso:
		return "Espresso"
	default:
		return string(m)
	}
}

// IsValid reports whether m is one of the supported methods.
func (m Method) IsValid() bool {
	return m == MethodV60 || m == MethodEspresso
}

// ParseMethod accepts the canonical names plus the common spellings people
// type ("pour-over", "pourover", "v60", "espresso"), case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch normalizeToken(s) {
	case "v60", "pour_over", "pourover":
		return MethodV60, nil
	case "espresso":
		return MethodEspresso, nil
	default:
		return "", ErrInvalidMethod
	}
}

// RoastLevel is the roast degree of the beans being brewed.
type RoastLevel string

const (
	RoastLight  RoastLevel = "light"
	RoastMedium RoastLevel = "medium"
	RoastDark   RoastLevel = "dark"
)

func (r RoastLevel) String() string {
	return string(r)
}

// IsValid reports whether r is one of the supported roast levels.
func (r RoastLevel) IsValid() bool {
	return r == RoastLight || r == RoastMedium || r == RoastDark
}

// ParseRoastLevel parses a roast level case-insensitively.
func ParseRoastLevel(s string) (RoastLevel, error) {
	r := RoastLevel(normalizeToken(s))
	if !r.IsValid() {
		return "", ErrInvalidRoastLevel
	}
	return r, nil
}

// TasteGoal is the cup profile the user wants a recipe to lean towards.
type TasteGoal string

const (
	TasteBalanced   TasteGoal = "balanced"
	TasteSweeter    TasteGoal = "sweeter"
	TasteBrighter   TasteGoal = "brighter"
	TasteLessBitter TasteGoal = "less_bitter"
)

func (t TasteGoal) String() string {
	return string(t)
}

// IsValid reports whether t is one of the supported taste goals.
func (t TasteGoal) IsValid() bool {
	switch t {
	case TasteBalanced, TasteSweeter, TasteBrighter, TasteLessBitter:
		return true
	}
	return false
}

// ParseTasteGoal parses a taste goal. An empty string means balanced.
func ParseTasteGoal(s string) (TasteGoal, error) {
	if strings.TrimSpace(s) == "" {
		return TasteBalanced, nil
	}
	t := TasteGoal(normalizeToken(s))
	if !t.IsValid() {
		return "", ErrInvalidTasteGoal
	}
	return t, nil
}

// TasteResult describes how a brew actually tasted, used by the dial-in assistant.
type TasteResult string

const (
	ResultTooSour   TasteResult = "too_sour"
	ResultTooBitter TasteResult = "too_bitter"
	ResultTooWeak   TasteResult = "too_weak"
	ResultTooStrong TasteResult = "too_strong"
	ResultBalanced  TasteResult = "balanced"
)

func (t TasteResult) String() string {
	return string(t)
}

// IsValid reports whether t is one of the supported taste results.
func (t TasteResult) IsValid() bool {
	switch t {
	case ResultTooSour, ResultTooBitter, ResultTooWeak, ResultTooStrong, ResultBalanced:
		return true
	}
	return false
}

// UnderExtracted reports whether the result points at under-extraction.
func (t TasteResult) UnderExtracted() bool {
	return t == ResultTooSour || t == ResultTooWeak
}

// OverExtracted reports whether the result points at over-extraction.
func (t TasteResult) OverExtracted() bool {
	return t == ResultTooBitter || t == ResultTooStrong
}

// ParseTasteResult parses a taste result case-insensitively.
func ParseTasteResult(s string) (TasteResult, error) {
	t := TasteResult(normalizeToken(s))
	if !t.IsValid() {
		return "", ErrInvalidTasteResult
	}
	return t, nil
}

// normalizeToken lowercases, trims and folds spaces and dashes into underscores
// so "Less Bitter", "less-bitter" and "less_bitter" compare equal.
func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
