package resource

import (
	"errors"
	"testing"
)

func TestTableInsertGet(t *testing.T) {
	tbl := NewTable[string]("files")
	a := tbl.Insert("a.txt")
	b := tbl.Insert("b.txt")
	if a == b {
		t.Fatalf("handles alias: %d", a)
	}
	if a == 0 || b == 0 {
		t.Fatalf("zero handle issued: %d %d", a, b)
	}

	got, err := tbl.Get(b)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != "b.txt" {
		t.Errorf("Get(b) = %q, want b.txt", *got)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}
}

func TestTableGetMut(t *testing.T) {
	tbl := NewTable[[]int]("ints")
	h := tbl.Insert([]int{1})
	v, err := tbl.GetMut(h)
	if err != nil {
		t.Fatalf("GetMut: %v", err)
	}
	*v = append(*v, 2)

	again, _ := tbl.Get(h)
	if len(*again) != 2 {
		t.Errorf("mutation lost: %v", *again)
	}
}

func TestTableDelete(t *testing.T) {
	tbl := NewTable[string]("files")
	h := tbl.Insert("x")

	v, err := tbl.Delete(h)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if v != "x" {
		t.Errorf("Delete returned %q", v)
	}

	if _, err := tbl.Get(h); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	if _, err := tbl.Delete(h); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("Len = %d, want 0", tbl.Len())
	}
}

func TestTableReusesFreedSlots(t *testing.T) {
	tbl := NewTable[int]("ints")
	a := tbl.Insert(1)
	b := tbl.Insert(2)
	if _, err := tbl.Delete(a); err != nil {
		t.Fatal(err)
	}
	c := tbl.Insert(3)
	if c != a {
		t.Errorf("expected freed handle %d to be reused, got %d", a, c)
	}
	if c == b {
		t.Fatalf("reused handle aliases live handle %d", b)
	}
	v, _ := tbl.Get(b)
	if *v != 2 {
		t.Errorf("live value clobbered: %d", *v)
	}
}

func TestTableUnknownHandles(t *testing.T) {
	tbl := NewTable[int]("ints")
	for _, h := range []Handle{0, 1, 99} {
		_, err := tbl.Get(h)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("Get(%d): err = %v, want *NotFoundError", h, err)
		}
		if nf.Handle != h || nf.Table != "ints" {
			t.Errorf("NotFoundError = %+v", nf)
		}
	}
}
