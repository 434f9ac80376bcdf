package seating

import (
	"fmt"
	"strconv"
	"strings"
)

// Label renders a zero-based position as row letters plus a one-based column,
// e.g. (0,0) -> "A1", (26,4) -> "AA5".
func Label(row, column int) string {
	return rowLetters(row) + strconv.Itoa(column+1)
}

func rowLetters(row int) string {
	var b []byte
	for n := row + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}

	return string(b)
}

// ParseLabel is the inverse of Label.
func ParseLabel(label string) (row, column int, err error) {
	label = strings.ToUpper(strings.TrimSpace(label))

	i := 0
	for i < len(label) && label[i] >= 'A' && label[i] <= 'Z' {
		i++
	}

	// the column starts with a digit; Atoi would also take "+5"
	if i == 0 || i == len(label) || label[i] < '0' || label[i] > '9' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	n := 0
	for _, c := range label[:i] {
		n = n*26 + int(c-'A'+1)
	}

	col, convErr := strconv.Atoi(label[i:])
	if convErr != nil || col < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	return n - 1, col - 1, nil
}
