package assets

import "sort"

// ResolutionIndex holds rasterizer output: one Store of bitmaps per DPI
// value. Keying by DPI rather than scale identifier lets archive assembly
// look buckets up directly.
type ResolutionIndex struct {
	buckets map[int]*Store
}

// NewResolutionIndex returns an empty index.
func NewResolutionIndex() *ResolutionIndex {
	return &ResolutionIndex{buckets: make(map[int]*Store)}
}

// Bucket returns the store for dpi, creating it if absent.
func (ri *ResolutionIndex) Bucket(dpi int) *Store {
	b, ok := ri.buckets[dpi]
	if !ok {
		b = NewStore()
		ri.buckets[dpi] = b
	}
	return b
}

// Lookup returns the store for dpi without creating one.
func (ri *ResolutionIndex) Lookup(dpi int) (*Store, bool) {
	b, ok := ri.buckets[dpi]
	return b, ok
}

// DPIs returns all bucket keys in ascending order.
func (ri *ResolutionIndex) DPIs() []int {
	dpis := make([]int, 0, len(ri.buckets))
	for dpi := range ri.buckets {
		dpis = append(dpis, dpi)
	}
	sort.Ints(dpis)
	return dpis
}

// Len returns the total number of bitmaps across all buckets.
func (ri *ResolutionIndex) Len() int {
	total := 0
	for _, b := range ri.buckets {
		total += b.Len()
	}
	return total
}
