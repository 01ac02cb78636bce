package source

import "bytes"

// Buffer is the per-file repair session state: the immutable original and the
// working copy the current pass reads. A pass never edits Working in place; it
// produces the next Buffer through Next.
type Buffer struct {
	Original *File
	Working  *File
	Pass     int
}

// NewBuffer opens a session on f.
func NewBuffer(f *File) *Buffer {
	return &Buffer{Original: f, Working: f, Pass: 0}
}

// Next returns the scratch buffer for the following pass.
func (b *Buffer) Next(content []byte) *Buffer {
	return &Buffer{
		Original: b.Original,
		Working:  b.Original.WithContent(content),
		Pass:     b.Pass + 1,
	}
}

// Changed reports whether the working copy differs from the original.
func (b *Buffer) Changed() bool {
	return !bytes.Equal(b.Original.Content, b.Working.Content)
}
