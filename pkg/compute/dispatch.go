package compute

// GroupCount returns the number of work-groups needed to cover total
// work items at the given group size: max(1, ceil(total/local)).
// Dispatching at least one group keeps zero-sized workloads from
// under-dispatching; local sizes below one are treated as one.
func GroupCount(total, local int) uint32 {
	if local < 1 {
		local = 1
	}
	if total < 1 {
		return 1
	}
	return uint32((total + local - 1) / local)
}
