// Package token defines the delimiter tokens and span classes produced by the
// scanner.
// Invariants:
//   - Tokens exist only for Code segments; delimiters inside strings, template
//     text, regex literals and comments never become tokens.
//   - Segments returned by one scan tile the buffer: they are sorted, adjacent
//     and cover [0, len(content)).
//   - Token.Span is always one byte long.
package token
