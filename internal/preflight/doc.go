// Package preflight provides system validation checks to ensure
// memoryforge can run successfully before its first sync.
//
// The package validates:
//   - The knowledge root exists
//   - Write permissions in the project's store directory
//   - The configured embedding backend is reachable
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, root, embedder)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
