package scene

import "fmt"

// ValidationSeverity indicates whether a finding should block export or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Box      *Box // nil for scene-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Box == nil {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] box %s: %s", e.Severity, e.Box.Label(), e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the scene for problems that individual operations cannot
// see on their own. It never mutates the scene.
func Validate(s *Scene) ValidationResult {
	var findings []ValidationError
	findings = append(findings, validateRoots(s)...)
	findings = append(findings, validateApertures(s)...)
	findings = append(findings, validateReachability(s)...)
	findings = append(findings, validateNames(s)...)

	var res ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityError {
			res.Errors = append(res.Errors, f)
		} else {
			res.Warnings = append(res.Warnings, f)
		}
	}
	return res
}

// validateRoots flags roots that are attached to another box. Their
// position is owned by the reference, so they cannot be placed as roots.
func validateRoots(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, r := range s.roots {
		if r.ref != nil {
			errs = append(errs, ValidationError{
				Box:      r,
				Message:  fmt.Sprintf("root is attached to %s", r.ref.Label()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateApertures warns about overlapping and zero-volume apertures. The
// decomposer assumes pairwise disjoint apertures; the boolean path falls
// back to a marker for zero-volume ones.
func validateApertures(s *Scene) []ValidationError {
	var warnings []ValidationError
	for _, b := range s.order {
		for i, a := range b.apertures {
			if a.Volume() <= 0 {
				warnings = append(warnings, ValidationError{
					Box:      b,
					Message:  fmt.Sprintf("aperture %d has zero volume", i),
					Severity: SeverityWarning,
				})
			}
			for j := i + 1; j < len(b.apertures); j++ {
				if a.Overlaps(b.apertures[j]) {
					warnings = append(warnings, ValidationError{
						Box:      b,
						Message:  fmt.Sprintf("apertures %d and %d overlap", i, j),
						Severity: SeverityWarning,
					})
				}
			}
		}
	}
	return warnings
}

// validateReachability warns about registered boxes that no root reaches
// through either relation. They are never exported.
func validateReachability(s *Scene) []ValidationError {
	seen := make(map[*Box]bool)
	var visit func(b *Box)
	visit = func(b *Box) {
		if seen[b] {
			return
		}
		seen[b] = true
		for _, c := range b.static {
			visit(c.Box)
		}
		for _, c := range b.attached {
			visit(c)
		}
	}
	for _, r := range s.roots {
		visit(r)
	}

	var warnings []ValidationError
	for _, b := range s.order {
		if !seen[b] {
			warnings = append(warnings, ValidationError{
				Box:      b,
				Message:  "not reachable from any root; it will not be exported",
				Severity: SeverityWarning,
			})
		}
	}
	return warnings
}

func validateNames(s *Scene) []ValidationError {
	var warnings []ValidationError
	seen := make(map[string]bool)
	for _, b := range s.order {
		if b.Name == "" {
			continue
		}
		if seen[b.Name] {
			warnings = append(warnings, ValidationError{
				Box:      b,
				Message:  fmt.Sprintf("duplicate name %q; lookups resolve to the last box", b.Name),
				Severity: SeverityWarning,
			})
		}
		seen[b.Name] = true
	}
	return warnings
}
