package occlusion

// topK keeps the best capacity items by fit. Capacities are small, so the
// weakest slot is found by a linear rescan after each replacement.
type topK[T any] struct {
	items    []T
	fits     []float32
	capacity int
	weakest  int
}

func (k *topK[T]) reset(capacity int) {
	k.items = k.items[:0]
	k.fits = k.fits[:0]
	k.capacity = capacity
	k.weakest = 0
}

// offer inserts item if there is room or if it beats the weakest member.
func (k *topK[T]) offer(item T, fit float32) bool {
	if len(k.items) < k.capacity {
		k.items = append(k.items, item)
		k.fits = append(k.fits, fit)
		if n := len(k.fits) - 1; n == 0 || fit < k.fits[k.weakest] {
			k.weakest = n
		}
		return true
	}
	if k.capacity == 0 || fit <= k.fits[k.weakest] {
		return false
	}
	k.items[k.weakest] = item
	k.fits[k.weakest] = fit
	k.rescan()
	return true
}

func (k *topK[T]) rescan() {
	k.weakest = 0
	for i, f := range k.fits {
		if f < k.fits[k.weakest] {
			k.weakest = i
		}
	}
}

func (k *topK[T]) count() int { return len(k.items) }
