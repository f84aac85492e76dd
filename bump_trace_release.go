//go:build reclaim_release

package reclaim

type bumpTrace struct{}

func bumpCall[R any](count, align int) BumpCall {
	return BumpCall{}
}

func (t *bumpTrace) record(call BumpCall) *bumpTrace {
	return nil
}

func (t *bumpTrace) commit() {}

func (t *bumpTrace) check(cursor int, call BumpCall) {}

func (t *bumpTrace) calls() []BumpCall {
	return nil
}
