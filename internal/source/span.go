package source

import (
	"fmt"
)

// FileID uniquely identifies a kernel source file in the frontend that
// produced the IR. The IR core only carries it through; it never maps
// it back to text.
type FileID uint32

// NoFile marks a span without an origin.
const NoFile FileID = 0

// Span is a half-open byte range in a frontend source file. Basic
// blocks carry one as their sequence point.
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover extends the span to include other. Spans from different files
// do not combine.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
