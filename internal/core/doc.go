// Package core reconciles jury-usage tables onto one canonical schema.
//
// This package holds all domain logic independent of file formats and
// transports. The csvio and workbook packages turn files into [Input] values;
// the CLI and the web server hand those to a [Cleaner].
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Rules: a [RuleSet] lists, per canonical [Target], the header matchers
//     tried in priority order. [DefaultRules] covers known source variants
//     and [LoadRules] overlays a YAML file.
//   - Resolution: a [Resolver] normalizes headers ([Normalize]) and binds
//     each target to one column, or to every matching column for
//     consolidated targets such as Charges.
//   - Derivation: a [Calculator] builds each [CleanedRow], deriving Jurors
//     Used, Jurors Not Used, Utilization Rate and Case Category under a
//     [UsedPolicy].
//   - Runs: [Cleaner.Run] processes inputs in name order and returns a
//     [Batch] of rows plus one [LogRecord] per table.
//
// # Resolution
//
// Headers are compared after NFKC normalization, punctuation folding and
// whitespace collapsing. With [ModeFold] they are also case-folded:
//
//	r, _ := core.NewResolver(core.DefaultRules())
//	b := r.Bind(header)
//	col, ok := b.Single(core.TargetJurorsReporting)
//
// # Rejection
//
// A table missing Case Number or Jurors Reporting is skipped as a whole and
// logged with the missing columns; it never contributes rows. A run that
// cleans no table ends with [ErrNoCleanedTables].
//
// # Error Handling
//
// Errors are mapped to operator-facing messages using [MapError]:
//
//   - READ001-READ002: unreadable or undecodable sources
//   - TBL001: empty tables
//   - SCH001-SCH002: missing columns and invalid rules
//   - WB001-WB002: workbook problems
//   - UPL001-UPL005: HTTP upload problems
package core
