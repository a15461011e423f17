package connascence

// Thresholds control when structural coupling becomes a violation.
type Thresholds struct {
	// ParameterThreshold is the largest acceptable parameter count.
	ParameterThreshold int `json:"parameter_threshold"`
	// ParameterCritical escalates positional coupling past this count.
	ParameterCritical int `json:"parameter_critical"`
	// GlobalVarThreshold is the largest acceptable count of distinct
	// module-level mutable names per file.
	GlobalVarThreshold int `json:"global_var_threshold"`
}

// DefaultThresholds returns the standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ParameterThreshold: 6,
		ParameterCritical:  10,
		GlobalVarThreshold: 5,
	}
}

// Allowlist holds literal values considered self-evident and therefore
// exempt from magic-literal detection.
type Allowlist struct {
	Numbers map[string]struct{}
	Strings map[string]struct{}
}

// DefaultAllowlist returns the built-in self-evident values.
func DefaultAllowlist() Allowlist {
	numbers := []string{"0", "1", "-1", "2", "10", "100", "1000"}
	strings := []string{"", " ", "\n", "\t", "utf-8", "utf8", "ascii"}

	a := Allowlist{
		Numbers: make(map[string]struct{}, len(numbers)),
		Strings: make(map[string]struct{}, len(strings)),
	}
	for _, n := range numbers {
		a.Numbers[n] = struct{}{}
	}
	for _, s := range strings {
		a.Strings[s] = struct{}{}
	}
	return a
}

// AllowsNumber reports whether a numeric literal is self-evident.
func (a Allowlist) AllowsNumber(value string) bool {
	_, ok := a.Numbers[value]
	return ok
}

// AllowsString reports whether a string literal is self-evident. Single
// characters never count as magic values.
func (a Allowlist) AllowsString(value string) bool {
	if len(value) <= 1 {
		return true
	}
	_, ok := a.Strings[value]
	return ok
}

// initializerVerbs are call names whose result a following call on the same
// receiver typically depends on. The execution-order heuristic only fires on
// these, trading recall for a low false-positive rate.
var initializerVerbs = map[string]struct{}{
	"open":       {},
	"connect":    {},
	"init":       {},
	"initialize": {},
	"setup":      {},
	"start":      {},
	"begin":      {},
	"acquire":    {},
	"lock":       {},
	"login":      {},
}
