package piecetree

import "testing"

func TestMarkImmediate(t *testing.T) {
	pt := fragmented(t, "hello wonderful world", 4)
	defer pt.Close()
	for pos := uint64(0); pos <= pt.Len(); pos++ {
		m, err := pt.Mark(pos)
		if err != nil {
			t.Fatal(err)
		}
		if got := pt.MarkToPos(&m); got.Pos != pos || got.Deleted {
			t.Errorf("Mark(%d) resolves to %+v", pos, got)
		}
	}
}

func TestMarkFollowsInsertBefore(t *testing.T) {
	pt := FromBytes([]byte("hello world"))
	defer pt.Close()
	m, err := pt.Mark(6)
	if err != nil {
		t.Fatal(err)
	}
	if err := pt.InsertString(2, "XYZ"); err != nil {
		t.Fatal(err)
	}
	if got := pt.MarkToPos(&m); got.Pos != 9 || got.Deleted {
		t.Errorf("after insert before: %+v, want pos 9", got)
	}
	if m.Orig != 9 {
		t.Errorf("Orig = %d, want 9", m.Orig)
	}
	if err := pt.InsertString(10, "!!"); err != nil {
		t.Fatal(err)
	}
	if got := pt.MarkToPos(&m); got.Pos != 9 {
		t.Errorf("after insert after: %+v, want pos 9", got)
	}
}

func TestMarkDeleted(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		setup   func(pt *PieceTree) error
		mark    uint64
		remove  Range
		want    MarkPos
	}{
		{name: "inside span", initial: "hello cruel world", mark: 8, remove: Span(6, 12), want: MarkPos{Pos: 6, Deleted: true}},
		{name: "span starts at mark", initial: "hello cruel world", mark: 6, remove: Span(6, 12), want: MarkPos{Pos: 6, Deleted: true}},
		{name: "marked byte only", initial: "abcdef", mark: 3, remove: Span(3, 4), want: MarkPos{Pos: 3, Deleted: true}},
		{name: "first byte", initial: "abc", mark: 0, remove: Span(0, 1), want: MarkPos{Pos: 0, Deleted: true}},
		{name: "span ends at mark", initial: "hello cruel world", mark: 12, remove: Span(6, 12), want: MarkPos{Pos: 6}},
		{
			name:    "predecessor piece removed",
			initial: "abcdef",
			setup:   func(pt *PieceTree) error { return pt.InsertString(3, "X") },
			mark:    4,
			remove:  Span(3, 4),
			want:    MarkPos{Pos: 3},
		},
		{
			name:    "successor piece removed",
			initial: "abcdef",
			setup:   func(pt *PieceTree) error { return pt.InsertString(3, "X") },
			mark:    2,
			remove:  Span(3, 4),
			want:    MarkPos{Pos: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := FromBytes([]byte(tt.initial))
			defer pt.Close()
			if tt.setup != nil {
				if err := tt.setup(pt); err != nil {
					t.Fatal(err)
				}
			}
			m, err := pt.Mark(tt.mark)
			if err != nil {
				t.Fatal(err)
			}
			if err := pt.Remove(tt.remove); err != nil {
				t.Fatal(err)
			}
			got := pt.MarkToPos(&m)
			if got != tt.want {
				t.Errorf("MarkToPos = %+v, want %+v", got, tt.want)
			}
			if m.Orig != tt.want.Pos {
				t.Errorf("Orig = %d, want %d", m.Orig, tt.want.Pos)
			}
		})
	}
}

func TestMarkDeletedWholeContent(t *testing.T) {
	pt := FromBytes([]byte("abc"))
	defer pt.Close()
	m, err := pt.Mark(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := pt.Remove(Full()); err != nil {
		t.Fatal(err)
	}
	if got := pt.MarkToPos(&m); !got.Deleted || got.Pos != 0 {
		t.Errorf("%+v, want deleted at 0", got)
	}
}

func TestMarkFollowsByte(t *testing.T) {
	pt := New()
	defer pt.Close()
	if err := pt.InsertString(0, "ab"); err != nil {
		t.Fatal(err)
	}
	if err := pt.InsertString(0, "cd"); err != nil {
		t.Fatal(err)
	}
	// "cdab", piece boundary at 2.
	boundary, err := pt.Mark(2)
	if err != nil {
		t.Fatal(err)
	}
	inside, err := pt.Mark(3)
	if err != nil {
		t.Fatal(err)
	}
	if err := pt.InsertString(2, "XX"); err != nil {
		t.Fatal(err)
	}
	if err := pt.InsertString(5, "YY"); err != nil {
		t.Fatal(err)
	}
	// "cdXXaYYb"
	if got := pt.MarkToPos(&boundary); got != (MarkPos{Pos: 4}) {
		t.Errorf("boundary mark %+v, want 4", got)
	}
	if got := pt.MarkToPos(&inside); got != (MarkPos{Pos: 7}) {
		t.Errorf("inside mark %+v, want 7", got)
	}
}

func TestMarkEndOfBuffer(t *testing.T) {
	pt := FromBytes([]byte("abc"))
	defer pt.Close()
	m, err := pt.Mark(3)
	if err != nil {
		t.Fatal(err)
	}
	if !m.EOB {
		t.Fatal("mark at end is not EOB")
	}
	_ = pt.Append([]byte("def"))
	if got := pt.MarkToPos(&m); got.Pos != 6 {
		t.Errorf("%+v, want 6", got)
	}
	if _, err := pt.Mark(7); err == nil {
		t.Error("Mark past end succeeded")
	}
}

func TestMarkCopies(t *testing.T) {
	pt := FromBytes([]byte("..."))
	defer pt.Close()
	if err := pt.InsertMulti([]uint64{1, 2}, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	// ".abc.abc."
	m, err := pt.Mark(6)
	if err != nil {
		t.Fatal(err)
	}
	if m.Count != 1 {
		t.Fatalf("Count = %d, want 1", m.Count)
	}
	if got := pt.MarkToPos(&m); got.Pos != 6 {
		t.Errorf("%+v, want 6", got)
	}
	if err := pt.InsertString(0, "__"); err != nil {
		t.Fatal(err)
	}
	if got := pt.MarkToPos(&m); got.Pos != 8 {
		t.Errorf("%+v, want 8", got)
	}
}

func TestMarkOnEmpty(t *testing.T) {
	pt := New()
	defer pt.Close()
	m, err := pt.Mark(0)
	if err != nil || !m.EOB {
		t.Fatalf("Mark(0) on empty = %+v, %v", m, err)
	}
}
