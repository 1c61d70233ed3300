package memory

type observer[E any] struct {
	id int
	fn func(E)
}

// observers is an ordered callback registry. Notifications are delivered
// synchronously in registration order.
type observers[E any] struct {
	next int
	list []observer[E]
}

func (o *observers[E]) add(fn func(E)) func() {
	if fn == nil {
		return func() {}
	}
	o.next++
	id := o.next
	o.list = append(o.list, observer[E]{id: id, fn: fn})
	return func() { o.remove(id) }
}

func (o *observers[E]) remove(id int) {
	for i, obs := range o.list {
		if obs.id == id {
			o.list = append(o.list[:i:i], o.list[i+1:]...)
			return
		}
	}
}

func (o *observers[E]) notify(event E) {
	// copy so a callback may unsubscribe itself
	list := append([]observer[E](nil), o.list...)
	for _, obs := range list {
		obs.fn(event)
	}
}
