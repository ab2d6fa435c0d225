package docs

import "errors"

// ErrUnsupported reports a documentation construct outside the supported
// rendering grammar. It aborts the extraction run; nothing is rendered in
// its place.
var ErrUnsupported = errors.New("unsupported documentation construct")

// ErrMissingItem reports an item id absent from the loaded graph. Fatal for
// extraction roots; type references degrade to an empty link instead.
var ErrMissingItem = errors.New("item not found in documentation graph")
