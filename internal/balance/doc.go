// Package balance tracks per-kind delimiter deltas line by line and
// localizes imbalances into windows.
//
// Tracking runs a plain stack matcher first. A document without anomalies
// yields zero windows. Otherwise a second matcher walks the lines again and,
// within the imbalance found by the first one, also closes openers at the
// first later line that returns to (or below) the opener's indentation. Every
// anomaly ends up in a Window: the line range where the running delta left
// its local baseline, plus the boundary line where it should have returned.
// A boundary further than the lookback makes the window Unresolved.
package balance
