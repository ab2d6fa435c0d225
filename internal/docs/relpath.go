package docs

import (
	"fmt"
	"strings"
)

// RelativeTo computes the minimal relative path from this item's output
// directory to another item's output directory: one ".." per segment of this
// directory beyond the longest common prefix, then the remaining suffix of
// the other directory. Both directories are the item's module path with the
// leaf name segment dropped. Segments compare by exact string equality.
func (it *CachedItem) RelativeTo(other *CachedItem) []string {
	from := dir(it.Path())
	to := dir(other.Path())

	d := 0
	for d < len(from) && d < len(to) && from[d] == to[d] {
		d++
	}

	segments := make([]string, 0, len(from)-d+len(to)-d)
	for i := d; i < len(from); i++ {
		segments = append(segments, "..")
	}
	segments = append(segments, to[d:]...)
	return segments
}

func dir(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	return path[:len(path)-1]
}

// CrossRef returns the directory-relative link target for the other item's
// rendered file.
func (it *CachedItem) CrossRef(to *CachedItem) string {
	segments := append(it.RelativeTo(to), to.Name()+".md")
	return strings.Join(segments, "/")
}

// CrossRefMarkdown returns a Markdown link to the other item's rendered file.
func (it *CachedItem) CrossRefMarkdown(to *CachedItem) string {
	return fmt.Sprintf("[%s](%s)", to.Name(), it.CrossRef(to))
}
