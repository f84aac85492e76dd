package reclaim

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/reclaim/memutils"
)

// recycler is a deletion queue. Its entries are released once the queue timeline reaches
// flushTimestamp and no command list still records against it.
type recycler struct {
	entries        []Resource
	flushTimestamp uint64
	refCount       uint32
	// next is the next older recycler
	next *recycler
}

func (r *recycler) flushable(observed uint64) bool {
	return r.refCount == 0 && r.flushTimestamp <= observed
}

// RecyclerStats describes one recycler in the chain
type RecyclerStats struct {
	Entries        int
	FlushTimestamp uint64
	RefCount       uint32
}

func (d *Device) pushRecycler() {
	d.recyclerHead = &recycler{next: d.recyclerHead}

	if memutils.DebugChecks {
		length := 0
		for r := d.recyclerHead; r != nil; r = r.next {
			length++
		}
		if length >= d.options.MaxPendingRecyclers {
			panic(errors.Wrapf(ErrRecyclerChainTooLong, "%d recyclers are pending, GarbageCollect must be called regularly", length))
		}
	}
}

// attachRecycler returns the recycler a new command list records against. Resources already
// destroyed cannot be referenced by the new list, so a non-empty head is closed off first and only
// waits for work already submitted.
func (d *Device) attachRecycler() *recycler {
	head := d.recyclerHead
	if len(head.entries) > 0 {
		head.flushTimestamp = max(head.flushTimestamp, d.queue.nextSubmitTimestamp-1)
		d.pushRecycler()
	}

	d.recyclerHead.refCount++
	return d.recyclerHead
}

// detachRecycler releases a command list's hold after it was submitted with timestamp. Everything
// destroyed since the list began may be referenced by it, so every recycler from the head down to
// the one it holds must wait for timestamp.
func (d *Device) detachRecycler(holds *recycler, timestamp uint64) {
	for r := d.recyclerHead; r != nil; r = r.next {
		r.flushTimestamp = max(r.flushTimestamp, timestamp)
		if r == holds {
			break
		}
	}

	if len(holds.entries) > 0 && holds == d.recyclerHead {
		d.pushRecycler()
	}
	holds.refCount--
}

func (d *Device) releaseHold(cmd *CommandList) {
	if cmd.holds == nil {
		return
	}
	cmd.holds.refCount--
	cmd.holds = nil
}

func (d *Device) enqueue(res Resource) {
	base := res.base()
	if base.ownedBy != nil || base.released {
		panic(errors.Newf("%T was destroyed twice", res))
	}

	if cmd, isCommandList := res.(*CommandList); isCommandList {
		d.releaseHold(cmd)
	}

	d.recyclerHead.entries = append(d.recyclerHead.entries, res)
	base.ownedBy = d.recyclerHead
}

func (d *Device) flush(r *recycler) int {
	released := len(r.entries)
	for _, res := range r.entries {
		res.base().released = true
		res.release()
	}
	r.entries = nil

	return released
}

// GarbageCollect releases the resources of every recycler the GPU is done with and returns the
// number of resources released. It never blocks. The newest recycler is never flushed, it becomes
// eligible once a submission or a new command list closes it off.
func (d *Device) GarbageCollect() int {
	observed := d.queue.CompletedTimestamp()

	var chain []*recycler
	for r := d.recyclerHead.next; r != nil; r = r.next {
		chain = append(chain, r)
	}

	// A command list still recording against an older recycler will raise the flush timestamp of
	// every newer one when it is submitted.
	keep := make([]bool, len(chain))
	blocked := false
	released := 0
	for i := len(chain) - 1; i >= 0; i-- {
		r := chain[i]
		if r.refCount > 0 {
			blocked = true
		}
		if blocked || !r.flushable(observed) {
			keep[i] = true
			continue
		}
		released += d.flush(r)
	}

	prev := d.recyclerHead
	for i, r := range chain {
		if keep[i] {
			prev.next = r
			prev = r
		}
	}
	prev.next = nil

	d.logger.Debug("Device::GarbageCollect", slog.Uint64("observed", observed), slog.Int("released", released))
	return released
}

// DestroyNow releases a resource immediately, bypassing the recycler chain. The caller guarantees
// the GPU is not using it.
func (d *Device) DestroyNow(res Resource) {
	base := res.base()
	if base.ownedBy != nil || base.released {
		panic(errors.Newf("%T was destroyed twice", res))
	}

	if cmd, isCommandList := res.(*CommandList); isCommandList {
		d.releaseHold(cmd)
	}

	base.released = true
	res.release()
}

// RecyclerStats describes the recycler chain, newest first
func (d *Device) RecyclerStats() []RecyclerStats {
	var stats []RecyclerStats
	for r := d.recyclerHead; r != nil; r = r.next {
		stats = append(stats, RecyclerStats{
			Entries:        len(r.entries),
			FlushTimestamp: r.flushTimestamp,
			RefCount:       r.refCount,
		})
	}
	return stats
}

func (d *Device) writeRecyclerStats(json *jwriter.ObjectState) {
	recyclers := json.Name("Recyclers").Array()
	for _, stats := range d.RecyclerStats() {
		obj := recyclers.Object()
		obj.Name("Entries").Int(stats.Entries)
		obj.Name("FlushTimestamp").Int(int(stats.FlushTimestamp))
		obj.Name("RefCount").Int(int(stats.RefCount))
		obj.End()
	}
	recyclers.End()
}
