package ledger

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Direction is a sort direction
type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// Desc reports whether the direction is descending
func (d Direction) Desc() bool {
	return d == DirectionDesc
}

// Comparator orders two values, returning a negative, zero or positive number
type Comparator[T any] func(a, b T) int

// OrderBy builds a comparator over an ordered key
func OrderBy[T any, K cmp.Ordered](key func(T) K, dir Direction) Comparator[T] {
	return func(a, b T) int {
		return applyDirection(cmp.Compare(key(a), key(b)), dir)
	}
}

// OrderByDecimal builds a comparator over a decimal key
func OrderByDecimal[T any](key func(T) decimal.Decimal, dir Direction) Comparator[T] {
	return func(a, b T) int {
		return applyDirection(key(a).Cmp(key(b)), dir)
	}
}

// Compose chains comparators, later ones break ties of earlier ones
func Compose[T any](comparators ...Comparator[T]) Comparator[T] {
	return func(a, b T) int {
		for _, c := range comparators {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// SortStable sorts items in place; equal items keep their insertion order
func SortStable[T any](items []T, comparators ...Comparator[T]) {
	if len(comparators) == 0 {
		return
	}
	slices.SortStableFunc(items, Compose(comparators...))
}

func applyDirection(r int, dir Direction) int {
	if dir.Desc() {
		return -r
	}
	return r
}
