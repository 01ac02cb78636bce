package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

var seedExts = map[string]bool{".js": true, ".jsx": true, ".mjs": true, ".cjs": true, ".ts": true, ".tsx": true}

// inlineSeeds cover the lexical corners: templates, regex vs division,
// comments, JSX text and tags.
var inlineSeeds = []string{
	"",
	"foo(bar, {\n  x: 1\n\nreturn x;\n",
	"foo(() => {\n  x();\n});\n});\n",
	"if (a) {\n  b();\nc();\n",
	"const t = `a ${b({ c: `${d}` })} e`;\n",
	"const r = /[(]{2}/g.test(s) ? a / b : (c);\n",
	"/* { */ // (\nfoo[\"]\"](1;\n",
	"const el = <div>{items.map(i => (<span key={i}>{i}</span>))}</div>;\n",
	"const s = 'unterminated\n",
	"return (\n  <div>\n    <p>Don't (panic)</p>\n  </div>\n);\n",
	"const a = <ul>{xs.map(x => <li key={x}>{x}</li>)}</ul>;\n",
	"const i = <img src=\"a.png\" alt=\"it's\" />;\n",
	"const f = <>\n  <A b={{ c: 1 }} />\n</>;\n",
	"foo(bar, {\n  x: <b>it's</b>\n\nreturn x;\n",
	"const g = <T,>(x: T) => x;\n",
}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все исходники JS/TS
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !seedExts[filepath.Ext(path)] {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
