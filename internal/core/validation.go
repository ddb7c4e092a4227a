package core

// validation.go checks resolved bindings before any row is processed.
//
// A table is accepted only when every required target resolved. Rejection is
// all-or-nothing: a table missing a required column emits no rows at all.

// RequiredTargets are the targets a table must bind to be cleaned.
var RequiredTargets = []Target{TargetCaseNumber, TargetJurorsReporting}

// ValidateBindings returns a SchemaError listing every required target that
// is unbound, or nil if all are bound.
func ValidateBindings(source string, b Bindings) error {
	var missing []Target
	for _, t := range RequiredTargets {
		if !b.Has(t) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Source: source, Missing: missing}
	}
	return nil
}
