package reclaim

import "fmt"

// BumpCall is one BumpSlice call
type BumpCall struct {
	Type  string
	Count int
	Align int
}

func (c BumpCall) String() string {
	return fmt.Sprintf("%d x %s aligned to %d", c.Count, c.Type, c.Align)
}
