package fuzztests

import (
	"errors"
	"testing"

	"mend/internal/diag"
	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func FuzzLexerSegments(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		file := source.Virtual("fuzz.js", clampInput(input))

		bag := diag.NewBag(64)
		res, err := lexer.Scan(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		if err != nil {
			if !errors.Is(err, lexer.ErrUnterminated) {
				t.Fatalf("unexpected scan error: %v", err)
			}
			if !bag.HasFatal() {
				t.Fatal("scan failed without a diagnostic")
			}
			return
		}
		if err := testkit.CheckSegments(res, file); err != nil {
			t.Fatal(err)
		}
	})
}
