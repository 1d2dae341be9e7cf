package domain

// CanonicalLockOrder returns the two account IDs in the order their row locks
// must be acquired. The order is a total order independent of transfer
// direction: two concurrent transfers between the same pair of accounts in
// opposite directions acquire locks identically and cannot deadlock.
func CanonicalLockOrder(a, b string) (first, second string) {
	if a <= b {
		return a, b
	}
	return b, a
}
