package collab

import (
	"errors"
	"reflect"
	"testing"

	"example.com/syncedit/pkg/buffer"
	"example.com/syncedit/pkg/wire"
)

// classify runs every event surface emits during fn through c.
func classify(t *testing.T, c *Classifier, s *fakeSurface, fn func()) ([]wire.Operation, []error) {
	t.Helper()
	var ops []wire.Operation
	var errs []error
	s.ObserveEdits(func(ev EditEvent) {
		got, err := c.Classify(ev)
		ops = append(ops, got...)
		if err != nil {
			errs = append(errs, err)
		}
	})
	fn()
	return ops, errs
}

func TestClassifySingleCharacter(t *testing.T) {
	s := newFakeSurface("ab\ncd")
	c := NewClassifier(NewMapper(s), &LoopbackSuppressor{}, DropMultiChar)
	ops, errs := classify(t, c, s, func() {
		s.typeText(4, "x")
		s.erase(0, 1)
		s.typeText(0, "é")
	})
	want := []wire.Operation{wire.InsertChar{Index: 4, Char: 'x'}, wire.DeleteChar{Index: 0}, wire.InsertChar{Index: 0, Char: 'é'}}
	if len(errs) != 0 || !reflect.DeepEqual(ops, want) {
		t.Fatalf("got %v %v, want %v", ops, errs, want)
	}
}

func TestClassifyNewline(t *testing.T) {
	s := newFakeSurface("ab")
	c := NewClassifier(NewMapper(s), &LoopbackSuppressor{}, DropMultiChar)
	ops, errs := classify(t, c, s, func() {
		s.typeText(1, "\n")
		s.erase(1, 2)
	})
	want := []wire.Operation{wire.InsertChar{Index: 1, Char: '\n'}, wire.DeleteChar{Index: 1}}
	if len(errs) != 0 || !reflect.DeepEqual(ops, want) {
		t.Fatalf("got %v %v, want %v", ops, errs, want)
	}
	if s.buf.String() != "ab" {
		t.Fatalf("unexpected document %q", s.buf.String())
	}
}

func TestClassifyNewlineShapeOnly(t *testing.T) {
	c := NewClassifier(NewMapper(newFakeSurface("abc")), nil, DropMultiChar)
	// two lines but not both empty is a multi-character edit
	ev := EditEvent{Action: ActionInsert, Start: buffer.Position{Row: 0, Column: 1}, End: buffer.Position{Row: 1, Column: 1}, Lines: []string{"", "x"}}
	if _, err := c.Classify(ev); !errors.Is(err, ErrUnsupportedEdit) {
		t.Fatalf("expected ErrUnsupportedEdit, got %v", err)
	}
	// rows not adjacent
	ev = EditEvent{Action: ActionInsert, End: buffer.Position{Row: 2}, Lines: []string{"", ""}}
	if _, err := c.Classify(ev); !errors.Is(err, ErrUnsupportedEdit) {
		t.Fatalf("expected ErrUnsupportedEdit, got %v", err)
	}
}

func TestClassifyMultiCharDrop(t *testing.T) {
	s := newFakeSurface("hello")
	c := NewClassifier(NewMapper(s), &LoopbackSuppressor{}, DropMultiChar)
	ops, errs := classify(t, c, s, func() {
		s.typeText(5, " world")
		s.erase(0, 2)
	})
	if len(ops) != 0 {
		t.Fatalf("expected no operations, got %v", ops)
	}
	if len(errs) != 2 || !errors.Is(errs[0], ErrUnsupportedEdit) || !errors.Is(errs[1], ErrUnsupportedEdit) {
		t.Fatalf("expected two unsupported edits, got %v", errs)
	}
}

func TestClassifyMultiCharDecompose(t *testing.T) {
	s := newFakeSurface("ab")
	c := NewClassifier(NewMapper(s), &LoopbackSuppressor{}, DecomposeMultiChar)
	ops, errs := classify(t, c, s, func() {
		s.typeText(1, "x\ny")
		s.erase(0, 3)
	})
	want := []wire.Operation{
		wire.InsertChar{Index: 1, Char: 'x'},
		wire.InsertChar{Index: 2, Char: '\n'},
		wire.InsertChar{Index: 3, Char: 'y'},
		wire.DeleteChar{Index: 0},
		wire.DeleteChar{Index: 0},
		wire.DeleteChar{Index: 0},
	}
	if len(errs) != 0 || !reflect.DeepEqual(ops, want) {
		t.Fatalf("got %v %v, want %v", ops, errs, want)
	}
	if s.buf.String() != "yb" {
		t.Fatalf("unexpected document %q", s.buf.String())
	}
}

func TestClassifySkipsRemote(t *testing.T) {
	s := newFakeSurface("ab")
	c := NewClassifier(NewMapper(s), &LoopbackSuppressor{}, DropMultiChar)
	ops, errs := classify(t, c, s, func() {
		_ = s.ApplyCharacterEdit(Range{Start: buffer.Position{Column: 1}, End: buffer.Position{Column: 1}}, "c")
		_ = s.ApplyCharacterEdit(Range{Start: buffer.Position{Column: 0}, End: buffer.Position{Column: 1}}, "")
	})
	if len(ops) != 0 || len(errs) != 0 {
		t.Fatalf("remote edits must not be classified, got %v %v", ops, errs)
	}
}

func TestLoopbackSuppressesOneRemoval(t *testing.T) {
	s := newFakeSurface("old")
	sup := &LoopbackSuppressor{}
	c := NewClassifier(NewMapper(s), sup, DropMultiChar)
	ops, errs := classify(t, c, s, func() {
		sup.Arm()
		s.ReplaceAll("xyz")
		s.erase(2, 3)
	})
	want := []wire.Operation{wire.DeleteChar{Index: 2}}
	if len(errs) != 0 || !reflect.DeepEqual(ops, want) {
		t.Fatalf("got %v %v, want %v", ops, errs, want)
	}
	if sup.Armed() {
		t.Fatalf("suppressor should be disarmed after one removal")
	}
}

func TestLoopbackIgnoresInsertions(t *testing.T) {
	sup := &LoopbackSuppressor{}
	sup.Arm()
	if sup.Consume(EditEvent{Action: ActionInsert, Lines: []string{"a"}}) {
		t.Fatalf("insertions must not consume the suppressor")
	}
	if sup.Consume(EditEvent{Action: ActionRemove, Lines: []string{"a"}, Origin: OriginRemote}) {
		t.Fatalf("remote removals must not consume the suppressor")
	}
	if !sup.Consume(EditEvent{Action: ActionRemove, Lines: []string{"a"}}) {
		t.Fatalf("expected local removal to be consumed")
	}
	if sup.Consume(EditEvent{Action: ActionRemove, Lines: []string{"a"}}) {
		t.Fatalf("only one removal may be consumed per arm")
	}
}

func TestParseMultiCharPolicy(t *testing.T) {
	if p, err := ParseMultiCharPolicy("decompose"); err != nil || p != DecomposeMultiChar {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if p, err := ParseMultiCharPolicy(""); err != nil || p != DropMultiChar {
		t.Fatalf("empty policy should default to drop, got %v %v", p, err)
	}
	if _, err := ParseMultiCharPolicy("merge"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
