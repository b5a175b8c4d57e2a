package scan

// The global id shape rule: a letter first, an alphanumeric last, and
// only letters, digits, '-', '.', '_' in between. Applies to every
// candidate regardless of context.

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIDByte(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '-' || b == '.' || b == '_'
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func validShape(id string) bool {
	if len(id) == 0 {
		return false
	}
	if !isLetter(id[0]) {
		return false
	}
	last := id[len(id)-1]
	if !isLetter(last) && !isDigit(last) {
		return false
	}
	for i := 1; i < len(id)-1; i++ {
		if !isIDByte(id[i]) {
			return false
		}
	}
	return true
}
