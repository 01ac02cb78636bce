// Package classify assigns one structural role to every line of a scanned
// buffer.
//
// Roles come from lexical cues only: the leading keyword and the shape of the
// trailing delimiter of the line's code view, where comment bytes are blanked
// and string bytes replaced by a placeholder. Every cue adds support to a
// role; the best supported role wins and a tie between different roles makes
// the line Ambiguous. Lines are recomputed from scratch on every pass.
package classify
