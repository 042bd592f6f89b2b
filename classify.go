package loom

import "github.com/go-enry/go-enry/v2"

// ClassifyKind runs a best-effort language/content classification over a
// buffer's name and a content sample, for picking gutter and highlighting
// defaults. It is advisory only: nothing in the engine's correctness
// depends on the result, and callers should be ready for an empty string
// on binary or unrecognized content.
func ClassifyKind(name string, sample []byte) BufferKind {
	lang := enry.GetLanguage(name, sample)
	return BufferKind(lang)
}

// classifyBuffer samples the first sampleBytes of buf and sets its Kind via
// ClassifyKind. It is intended to run as a background job once a buffer is
// large enough that sniffing the whole thing up front would be wasteful.
func classifyBuffer(buf *Buffer, sampleBytes int64) error {
	n := buf.Len()
	if sampleBytes > n {
		sampleBytes = n
	}
	sample, err := buf.Read(0, sampleBytes)
	if err != nil {
		return err
	}
	buf.SetKind(ClassifyKind(buf.Name(), sample))
	return nil
}
