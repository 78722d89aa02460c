package store

// prefixEnd() returns the smallest key greater than every key starting with prefix; nil means no upper bound
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for len(end) > 0 {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			return end
		}
		end = end[:len(end)-1]
	}
	return nil
}
