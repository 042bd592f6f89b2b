package loom

import "testing"

func TestClassifyKindGoSource(t *testing.T) {
	sample := []byte("package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	kind := ClassifyKind("main.go", sample)
	if kind != "Go" {
		t.Errorf("ClassifyKind(main.go, ...) = %q, want %q", kind, "Go")
	}
}

func TestClassifyBufferSetsKind(t *testing.T) {
	b := NewBuffer("main.go", []byte("package main\n\nfunc main() {}\n"), 0)
	if err := classifyBuffer(b, 1024); err != nil {
		t.Fatalf("classifyBuffer: %v", err)
	}
	if b.Kind() != "Go" {
		t.Errorf("Kind() = %q, want %q", b.Kind(), "Go")
	}
}

func TestClassifyBufferSampleSmallerThanBuffer(t *testing.T) {
	b := NewBuffer("main.go", []byte("package main\n\nfunc main() {}\n"), 0)
	if err := classifyBuffer(b, 5); err != nil {
		t.Fatalf("classifyBuffer with a tiny sample: %v", err)
	}
}
