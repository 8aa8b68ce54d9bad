package index

import "iter"

// PageSize bounds the length of any single backing array in a Collection.
const PageSize = 1 << 20

// Collection is a read-only, paged list of value pointers. Up to PageSize
// values live in one slice; larger collections are split into pages so that
// tens of millions of nodes never need one oversized allocation.
type Collection[V any] struct {
	pages [][]*V
	n     int
}

func newCollection[V any](hint int) *Collection[V] {
	c := &Collection[V]{}
	if hint > 0 {
		first := hint
		if first > PageSize {
			first = PageSize
		}
		c.pages = append(c.pages, make([]*V, 0, first))
	}
	return c
}

// CollectionOf builds a Collection from a slice (copied).
func CollectionOf[V any](vs []*V) *Collection[V] {
	c := newCollection[V](len(vs))
	for _, v := range vs {
		c.append(v)
	}
	return c
}

func (c *Collection[V]) append(v *V) {
	last := len(c.pages) - 1
	if last < 0 || len(c.pages[last]) == PageSize {
		c.pages = append(c.pages, make([]*V, 0, PageSize))
		last++
	} else if len(c.pages[last]) == cap(c.pages[last]) {
		grown := make([]*V, len(c.pages[last]), min(PageSize, 2*cap(c.pages[last])+1))
		copy(grown, c.pages[last])
		c.pages[last] = grown
	}
	c.pages[last] = append(c.pages[last], v)
	c.n++
}

func (c *Collection[V]) Len() int { return c.n }

// Paged reports whether the collection spans more than one page.
func (c *Collection[V]) Paged() bool { return len(c.pages) > 1 }

func (c *Collection[V]) At(i int) *V {
	return c.pages[i/PageSize][i%PageSize]
}

// Pages exposes the backing pages; callers must not modify them.
func (c *Collection[V]) Pages() [][]*V { return c.pages }

func (c *Collection[V]) All() iter.Seq[*V] {
	return func(yield func(*V) bool) {
		for _, p := range c.pages {
			for _, v := range p {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Batches splits the collection into contiguous runs of at most size values,
// never crossing a page boundary.
func (c *Collection[V]) Batches(size int) [][]*V {
	if size <= 0 {
		size = PageSize
	}
	var out [][]*V
	for _, p := range c.pages {
		for lo := 0; lo < len(p); lo += size {
			hi := min(lo+size, len(p))
			out = append(out, p[lo:hi])
		}
	}
	return out
}
