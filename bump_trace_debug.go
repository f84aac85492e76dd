//go:build !reclaim_release

package reclaim

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// bumpTrace records the calls of a sizing pass and checks the following pass against them
type bumpTrace struct {
	recorded  []BumpCall
	committed bool
}

func bumpCall[R any](count, align int) BumpCall {
	return BumpCall{Type: reflect.TypeFor[R]().String(), Count: count, Align: align}
}

func (t *bumpTrace) record(call BumpCall) *bumpTrace {
	if t == nil {
		t = &bumpTrace{}
	}
	t.recorded = append(t.recorded, call)
	return t
}

func (t *bumpTrace) commit() {
	if t != nil {
		t.committed = true
	}
}

func (t *bumpTrace) check(cursor int, call BumpCall) {
	if t == nil || !t.committed {
		return
	}

	if cursor >= len(t.recorded) {
		panic(errors.Wrapf(ErrBumpPassDiverged, "call %d (%s) was never made by the sizing pass", cursor, call))
	}
	if expected := t.recorded[cursor]; expected != call {
		panic(errors.Wrapf(ErrBumpPassDiverged, "call %d: sizing pass requested %s, but this pass requested %s", cursor, expected, call))
	}
}

func (t *bumpTrace) calls() []BumpCall {
	if t == nil {
		return nil
	}
	return append([]BumpCall(nil), t.recorded...)
}
