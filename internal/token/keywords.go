package token

// Keyword flags describe how a leading word behaves at the start of a line.
type Keyword uint8

const (
	// KwStatement starts a new statement.
	KwStatement Keyword = 1 << iota
	// KwBlock introduces a control-flow or declaration body.
	KwBlock
)

var keywords = map[string]Keyword{
	"return":    KwStatement,
	"const":     KwStatement,
	"let":       KwStatement,
	"var":       KwStatement,
	"await":     KwStatement,
	"throw":     KwStatement,
	"export":    KwStatement,
	"import":    KwStatement,
	"break":     KwStatement,
	"continue":  KwStatement,
	"yield":     KwStatement,
	"type":      KwStatement,
	"interface": KwStatement | KwBlock,
	"enum":      KwStatement | KwBlock,
	"if":        KwStatement | KwBlock,
	"for":       KwStatement | KwBlock,
	"while":     KwStatement | KwBlock,
	"switch":    KwStatement | KwBlock,
	"try":       KwStatement | KwBlock,
	"do":        KwStatement | KwBlock,
	"function":  KwStatement | KwBlock,
	"class":     KwStatement | KwBlock,
	"async":     KwStatement | KwBlock,
	"else":      KwBlock,
	"catch":     KwBlock,
	"finally":   KwBlock,
}

// LookupKeyword возвращает флаги и bool если это ключевое слово.
// Ключевые слова регистрозависимые: только lowercase версии распознаются.
func LookupKeyword(ident string) (Keyword, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// ExprKeyword reports whether a '/' after ident starts a regex literal.
func ExprKeyword(ident string) bool {
	switch ident {
	case "return", "typeof", "instanceof", "in", "of", "new", "delete", "void",
		"throw", "case", "do", "else", "yield", "await":
		return true
	}
	return false
}
