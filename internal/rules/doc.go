// Package rules turns imbalance windows into scored candidate edits.
//
// Each rule matches on the role of the window's boundary line, the direction
// of the imbalance and its cause. Confidence combines the uniqueness of the
// boundary, agreement between rules proposing the same edit (noisy-or) and
// the distance between the window start and its boundary. Candidates below
// the minimum confidence are returned separately and never applied.
package rules
