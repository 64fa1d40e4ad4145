package util

import (
	"golang.org/x/exp/constraints"
)

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Abs[T constraints.Signed | constraints.Float](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

func Mean[T constraints.Integer | constraints.Float](values []T) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := float64(0)
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values)), true
}
