package domain

import (
	"strings"
)

type Address string

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

// Short returns the first n characters, the whole address when it is shorter
func (a Address) Short(n int) string {
	if n < 0 || len(a) <= n {
		return string(a)
	}
	return string(a[:n])
}
