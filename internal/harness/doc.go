// Package harness runs predicate composition scenarios.
//
// A scenario names predicate definition files, the operator that joins them
// and a set of records with the expected outcome of the composed predicate.
//
// # Scenario Format
//
//	name: adults_or_us
//	description: "Adults anywhere or anyone in the US"
//	op: or
//	predicates:
//	  - ../predicates/adults.yaml
//	  - ../predicates/us.yaml
//	expect_tree: 'x => ((x.age >= 18) || (x.country == "US"))'
//	records:
//	  - name: minor in the US
//	    value: { age: 12, country: US }
//	    expect: true
//
// Predicate paths are relative to the scenario file. A scenario that
// expects composition to fail sets expect_error to the error code
// (TYPE_MISMATCH, ARITY_MISMATCH, SCOPE_COLLISION) and lists no records.
//
// # Checks
//
// Besides the expected values, every run verifies that:
//   - the composed predicate binds exactly one parameter, the first operand's
//   - no other parameter is referenced in the composed body
//   - the operands print the same before and after composition
//   - for every record, the composed result equals the operator applied to
//     the operands' individual results
//
// # Golden Files
//
// RunWithGolden snapshots the composed tree and per-record results under
// testdata/golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
