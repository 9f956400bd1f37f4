// Package batch partitions the country catalog into bounded oracle
// request batches. Pacing between batches is the orchestrator's job.
package batch

// Split cuts items into contiguous batches of at most size entries,
// preserving order and covering the input exactly once. The returned
// batches share the input's backing array. A non-positive size yields a
// single batch holding everything.
func Split(items []string, size int) [][]string {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}

	batches := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
