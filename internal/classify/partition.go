package classify

// Partition splits the labels of left × right into categories without
// looking at their order. keep reports whether a label is still needed after
// the contraction: shared labels that are kept are carried (C), shared labels
// that are not are contracted (K). Labels found on one side only are M or N.
//
// C, M and K follow left order, N follows right order.
func Partition(left, right []string, keep func(string) bool) Dims {
	var d Dims
	for _, l := range left {
		switch {
		case !contains(right, l):
			d.M = append(d.M, l)
		case keep(l):
			d.C = append(d.C, l)
		default:
			d.K = append(d.K, l)
		}
	}
	for _, r := range right {
		if !contains(left, r) {
			d.N = append(d.N, r)
		}
	}
	return d
}
