// Package diag defines the diagnostic model shared by all repair phases.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the scanner, line classifier, balance tracker, rule engine and applier.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO or CLI integration.
// Rendering lives in internal/diagfmt; edits are applied by internal/fix.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error.
//   - Code – compact numeric identifier (codes.go) with a stable string form.
//     Code ranges: LEX (scanner), CLS (classifier), REP (rules and applier),
//     IO, PRJ (configuration), VER (grammar oracle).
//   - Primary – byte span inside the file the diagnostic belongs to. A Bag
//     always holds diagnostics of a single file.
//   - Notes – secondary spans: the rules considered, candidates rejected.
//   - Fixes – candidate edits that were not applied (low confidence,
//     conflicts), kept so a human can review them.
//
// Codes for which Code.Fatal reports true exclude the file from repair.
package diag
