package token

// Kind represents a structural delimiter token.
type Kind uint8

const (
	// Invalid marks the zero Kind.
	Invalid Kind = iota
	// OpenParen is '('.
	OpenParen
	// CloseParen is ')'.
	CloseParen
	// OpenBrace is '{'.
	OpenBrace
	// CloseBrace is '}'.
	CloseBrace
	// OpenBracket is '['.
	OpenBracket
	// CloseBracket is ']'.
	CloseBracket
)

// Delim names a delimiter family independent of direction.
type Delim uint8

const (
	Paren Delim = iota
	Brace
	Bracket
	delimCount
)

// Delims lists every delimiter family in a stable order.
var Delims = [delimCount]Delim{Paren, Brace, Bracket}

func (d Delim) String() string {
	switch d {
	case Paren:
		return "paren"
	case Brace:
		return "brace"
	case Bracket:
		return "bracket"
	}
	return "unknown"
}

// Open returns the opening kind for the family.
func (d Delim) Open() Kind {
	switch d {
	case Paren:
		return OpenParen
	case Brace:
		return OpenBrace
	case Bracket:
		return OpenBracket
	}
	return Invalid
}

// Close returns the closing kind for the family.
func (d Delim) Close() Kind {
	return d.Open() + 1
}

// KindOf maps a delimiter byte to its Kind.
func KindOf(b byte) Kind {
	switch b {
	case '(':
		return OpenParen
	case ')':
		return CloseParen
	case '{':
		return OpenBrace
	case '}':
		return CloseBrace
	case '[':
		return OpenBracket
	case ']':
		return CloseBracket
	}
	return Invalid
}

// IsOpen reports whether k opens a delimiter pair.
func (k Kind) IsOpen() bool {
	return k == OpenParen || k == OpenBrace || k == OpenBracket
}

// IsClose reports whether k closes a delimiter pair.
func (k Kind) IsClose() bool {
	return k == CloseParen || k == CloseBrace || k == CloseBracket
}

// Delim returns the family of k.
func (k Kind) Delim() Delim {
	switch k {
	case OpenParen, CloseParen:
		return Paren
	case OpenBrace, CloseBrace:
		return Brace
	default:
		return Bracket
	}
}

// Matching returns the kind that pairs with k.
func (k Kind) Matching() Kind {
	switch {
	case k.IsOpen():
		return k + 1
	case k.IsClose():
		return k - 1
	}
	return Invalid
}

// Byte returns the source character of k.
func (k Kind) Byte() byte {
	switch k {
	case OpenParen:
		return '('
	case CloseParen:
		return ')'
	case OpenBrace:
		return '{'
	case CloseBrace:
		return '}'
	case OpenBracket:
		return '['
	case CloseBracket:
		return ']'
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case OpenParen:
		return "OpenParen"
	case CloseParen:
		return "CloseParen"
	case OpenBrace:
		return "OpenBrace"
	case CloseBrace:
		return "CloseBrace"
	case OpenBracket:
		return "OpenBracket"
	case CloseBracket:
		return "CloseBracket"
	}
	return "Invalid"
}
