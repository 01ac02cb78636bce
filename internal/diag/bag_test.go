package diag

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"mend/internal/source"
)

func TestBagLimitAndFlags(t *testing.T) {
	b := NewBag(2)
	if !b.Add(New(SevInfo, RepEditApplied, source.Span{}, "applied")) {
		t.Fatal("first add must succeed")
	}
	if !b.Add(NewError(LexUnterminatedTemplate, source.Span{Start: 4, End: 9}, "x")) {
		t.Fatal("second add must succeed")
	}
	if b.Add(New(SevWarning, RepNoProgress, source.Span{}, "dropped")) {
		t.Fatal("third add must hit the limit")
	}
	if !b.HasFatal() {
		t.Fatal("unterminated template must be fatal")
	}

	full := NewBag(1)
	full.Add(New(SevWarning, RepLowConfidence, source.Span{}, "low"))
	full.Add(New(SevWarning, RepLowConfidence, source.Span{}, "low"))
	if !full.Add(NewError(LexUnterminatedString, source.Span{Start: 1, End: 2}, "x")) {
		t.Fatal("fatal diagnostic must bypass the limit")
	}
	if !full.HasFatal() || full.Len() != 2 || full.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d fatal=%v", full.Len(), full.Dropped(), full.HasFatal())
	}

	unbounded := NewBag(0)
	for i := 0; i < 100; i++ {
		unbounded.Add(New(SevInfo, RepInfo, source.Span{}, "x"))
	}
	if unbounded.Len() != 100 {
		t.Fatalf("unbounded bag kept %d items", unbounded.Len())
	}
}

func TestBagSort(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, RepLowConfidence, source.Span{Start: 10, End: 10}, "low"))
	b.Add(New(SevError, RepConflictingEdits, source.Span{Start: 3, End: 5}, "conflict"))
	b.Add(New(SevInfo, RepEditApplied, source.Span{Start: 3, End: 5}, "applied"))
	b.Sort()
	var got []Code
	for _, d := range b.Items() {
		got = append(got, d.Code)
	}
	if diff := cmp.Diff([]Code{RepConflictingEdits, RepEditApplied, RepLowConfidence}, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestDedupReporter(t *testing.T) {
	at := source.Span{Start: 1, End: 2}
	tests := []struct {
		name   string
		report func(r *DedupReporter)
		want   []string
		notes  []int
	}{
		{
			name: "exact repeats in one pass",
			report: func(r *DedupReporter) {
				for range 3 {
					ReportWarning(r, RepDeferredEdit, at, "deferred").Emit()
				}
				ReportWarning(r, RepDeferredEdit, at, "other").Emit()
			},
			want:  []string{"deferred", "other"},
			notes: []int{0, 0},
		},
		{
			name: "later pass replaces the window",
			report: func(r *DedupReporter) {
				r.NextPass()
				ReportWarning(r, RepUnresolvedWindow, at, "boundary line 4").Emit()
				r.NextPass()
				ReportWarning(r, RepUnresolvedWindow, at, "boundary line 5").Emit()
				ReportWarning(r, RepUnresolvedWindow, source.Span{Start: 7, End: 9}, "another window").Emit()
			},
			want:  []string{"boundary line 5", "another window"},
			notes: []int{1, 0},
		},
		{
			name: "applied edits are kept",
			report: func(r *DedupReporter) {
				r.NextPass()
				ReportInfo(r, RepEditApplied, at, "R1: first").Emit()
				r.NextPass()
				ReportInfo(r, RepEditApplied, at, "R3: second").Emit()
			},
			want:  []string{"R1: first", "R3: second"},
			notes: []int{0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := NewBag(0)
			r := NewDedupReporter(BagReporter{Bag: bag})
			tt.report(r)
			if bag.Len() != 0 {
				t.Fatal("diagnostics forwarded before Flush")
			}
			r.Flush()
			var msgs []string
			var notes []int
			for _, d := range bag.Items() {
				msgs = append(msgs, d.Message)
				notes = append(notes, len(d.Notes))
			}
			if diff := cmp.Diff(tt.want, msgs); diff != "" {
				t.Fatalf("messages (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.notes, notes); diff != "" {
				t.Fatalf("note counts (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithNoteCopies(t *testing.T) {
	base := New(SevWarning, RepNoProgress, source.Span{}, "w").WithNote(source.Span{}, "a")
	x := base.WithNote(source.Span{}, "x")
	y := base.WithNote(source.Span{}, "y")
	if x.Notes[1].Msg != "x" || y.Notes[1].Msg != "y" || len(base.Notes) != 1 {
		t.Fatalf("notes share storage: %v %v %v", base.Notes, x.Notes, y.Notes)
	}
}

func TestCodeIDs(t *testing.T) {
	tests := []struct {
		code Code
		id   string
	}{
		{LexUnterminatedBlockComment, "LEX1003"},
		{ClsAmbiguousRole, "CLS2001"},
		{RepMaxPassesExceeded, "REP3002"},
		{IOWriteFileError, "IO4002"},
		{PrjConfigError, "PRJ5001"},
		{VerifyRejected, "VER6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d: ID() = %s, want %s", tt.code, got, tt.id)
		}
	}
	if RepMaxPassesExceeded.Fatal() {
		t.Error("max passes must not be fatal")
	}
}
