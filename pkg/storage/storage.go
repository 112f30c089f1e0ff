package storage

import (
	"context"
	"errors"
	"io"
	"strconv"
	"unicode"
)

// ErrNotExist is returned when a key has no object behind it
var ErrNotExist = errors.New("asset does not exist")

// Entry is one immediate child of a listed prefix
type Entry struct {
	Name string
	Dir  bool
}

// AssetStore is the read/write surface used for the data file and image assets.
// Keys are slash separated and relative to the store root.
type AssetStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Entry, error)
	Write(ctx context.Context, key string, data []byte) error
}

// naturalLess compares strings in a way that treats numbers as numbers rather than characters
// For example: "2.jpg" < "10.jpg" when using naturalLess
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		if unicode.IsDigit(rune(s1[i])) && unicode.IsDigit(rune(s2[j])) {
			si := i
			for i < len(s1) && unicode.IsDigit(rune(s1[i])) {
				i++
			}
			sj := j
			for j < len(s2) && unicode.IsDigit(rune(s2[j])) {
				j++
			}
			n1, _ := strconv.Atoi(s1[si:i])
			n2, _ := strconv.Atoi(s2[sj:j])
			if n1 != n2 {
				return n1 < n2
			}
			continue
		}
		if s1[i] != s2[j] {
			return s1[i] < s2[j]
		}
		i++
		j++
	}
	return len(s1)-i < len(s2)-j
}

var (
	_ AssetStore = (*Dir)(nil)
	_ AssetStore = (*Bucket)(nil)
)
