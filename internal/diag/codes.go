package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0
	// Лексические
	LexInfo                     Code = 1000
	LexUnterminatedString       Code = 1001
	LexUnterminatedTemplate     Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexUnterminatedElement      Code = 1004

	// Классификация строк
	ClsInfo          Code = 2000
	ClsAmbiguousRole Code = 2001

	// Ремонт
	RepInfo              Code = 3000
	RepConflictingEdits  Code = 3001
	RepMaxPassesExceeded Code = 3002
	RepLowConfidence     Code = 3003
	RepNoProgress        Code = 3004
	RepUnresolvedWindow  Code = 3005
	RepDeferredEdit      Code = 3006
	RepLiteralTouch      Code = 3007
	RepEditApplied       Code = 3008

	// IO
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
	IOCacheReadError Code = 4003

	// Проект
	PrjConfigError Code = 5001
	PrjBadPattern  Code = 5002

	// Оракул
	VerifyInfo     Code = 6000
	VerifyRejected Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnterminatedString:       "Unterminated string",
		LexUnterminatedTemplate:     "Unterminated template literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexUnterminatedElement:      "Unterminated JSX element",
		ClsInfo:                     "Classification information",
		ClsAmbiguousRole:            "Ambiguous line role",
		RepInfo:                     "Repair information",
		RepConflictingEdits:         "Conflicting edits",
		RepMaxPassesExceeded:        "Max passes exceeded",
		RepLowConfidence:            "Edit below confidence threshold",
		RepNoProgress:               "No applicable edit",
		RepUnresolvedWindow:         "Unresolved imbalance",
		RepDeferredEdit:             "Edit deferred to next pass",
		RepLiteralTouch:             "Edit touches a literal",
		RepEditApplied:              "Edit applied",
		IOLoadFileError:             "Failed to load file",
		IOWriteFileError:            "Failed to write file",
		IOCacheReadError:            "Unreadable cache record",
		PrjConfigError:              "Invalid configuration",
		PrjBadPattern:               "Invalid path pattern",
		VerifyInfo:                  "Verification information",
		VerifyRejected:              "Grammar check rejected repair",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CLS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("REP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("VER%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Fatal reports whether the code excludes the file from repair entirely.
func (c Code) Fatal() bool {
	switch c {
	case LexUnterminatedString, LexUnterminatedTemplate, LexUnterminatedBlockComment, LexUnterminatedElement,
		IOLoadFileError, IOWriteFileError:
		return true
	}
	return false
}
