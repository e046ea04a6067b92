package store

const (
	ErrFailedBatchCommit = "failed to commit batch: %w"
)

// Prefix constants for all store types
const (
	prefixPending byte = iota + 1
	prefixTreeIndex
)

// PrefixToString converts a prefix byte to a string
func PrefixToString(p byte) string {
	switch p {
	case prefixPending:
		return "pending"
	case prefixTreeIndex:
		return "treeIndex"
	default:
		return "unknown"
	}
}

// makeKey creates a key from a prefix and the given parts
func makeKey(prefix byte, parts ...[]byte) []byte {
	n := 1
	for _, p := range parts {
		n += len(p)
	}
	key := make([]byte, 1, n)
	key[0] = prefix
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}
