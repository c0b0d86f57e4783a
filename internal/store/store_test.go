package store

import (
	"bytes"
	"testing"
)

func TestPutGetAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Put("posters", "m1", []byte("small")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	big := bytes.Repeat([]byte("poster-bytes-"), 1024)
	if err := s.Put("posters", "m2", big); err != nil {
		t.Fatalf("Put big: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, ok, err := s.Get("posters", "m1")
	if err != nil || !ok || string(got) != "small" {
		t.Fatalf("Get m1 = %q, %v, %v", got, ok, err)
	}
	got, ok, err = s.Get("posters", "m2")
	if err != nil || !ok || !bytes.Equal(got, big) {
		t.Fatalf("Get m2 = %d bytes, %v, %v", len(got), ok, err)
	}
}

func TestNamespacesDoNotCollide(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_ = s.Put("posters", "m1", []byte("poster"))
	_ = s.Put("trailers", "m1", []byte("trailer"))

	p, _, _ := s.Get("posters", "m1")
	tr, _, _ := s.Get("trailers", "m1")
	if string(p) != "poster" || string(tr) != "trailer" {
		t.Fatalf("namespaces collided: poster=%q trailer=%q", p, tr)
	}
}

func TestMissingNamespaceIsCleanMiss(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get("nothing", "here")
	if err != nil || ok || v != nil {
		t.Fatalf("expected clean miss, got %q %v %v", v, ok, err)
	}
}

func TestDeleteAndKeys(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	for _, k := range []string{"b", "a", "c"} {
		if err := s.Put("ns", k, []byte(k)); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}
	if err := s.Delete("ns", "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	keys, err := s.Keys("ns")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Fatalf("Keys = %v, want [a c]", keys)
	}

	if err := s.Clear("ns"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	keys, _ = s.Keys("ns")
	if len(keys) != 0 {
		t.Fatalf("Keys after Clear = %v", keys)
	}
}

func TestMemoryOnlyMode(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Put("state", "postalCode", []byte(`"94107"`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, _ := s.Get("state", "postalCode")
	if !ok || string(got) != `"94107"` {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestReturnedSliceIsACopy(t *testing.T) {
	s, _ := Open("")
	_ = s.Put("ns", "k", []byte("abc"))

	v, _, _ := s.Get("ns", "k")
	v[0] = 'z'

	again, _, _ := s.Get("ns", "k")
	if string(again) != "abc" {
		t.Fatalf("store value mutated through returned slice: %q", again)
	}
}
