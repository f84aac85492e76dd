package reclaim

// Resource is a GPU object whose destruction is deferred until the GPU can no longer be using it.
// It is implemented by *Buffer, *Image, *Pipeline, *CommandList and *AccelStructPool.
type Resource interface {
	// Destroy hands the resource to the device's current recycler. The underlying objects are
	// released by a later Device.GarbageCollect, once every submission that could reference them
	// has completed. Destroying a resource twice panics.
	Destroy()

	base() *resourceBase
	release()
}

type resourceBase struct {
	device *Device
	// ownedBy is the recycler holding the resource once it has been destroyed
	ownedBy  *recycler
	released bool
}

func (r *resourceBase) base() *resourceBase {
	return r
}

// Destroyed returns true once Destroy has been called or the resource has been released
func (r *resourceBase) Destroyed() bool {
	return r.ownedBy != nil || r.released
}
