package util

import (
	"fmt"
	"strings"
)

// JoinString renders elems with their String method, separated by sep.
func JoinString[A fmt.Stringer](elems []A, sep string) string {
	sb := strings.Builder{}
	for i, elem := range elems {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(elem.String())
	}
	return sb.String()
}
