package docs

import "strings"

// Doc-example convention: inside an unlabeled or rust-labeled fenced code
// block, lines starting with `#` are setup boilerplate hidden from rendered
// output. Attribute lines (`#[...]`) stay visible. Blocks in other languages
// pass through verbatim.

// fenceTag reports whether a line opens or closes a fenced code block, and
// the block's language label if it opens one. Attributes after the label
// ("rust should_panic") are ignored.
func fenceTag(line string) (string, bool) {
	if !strings.HasPrefix(line, "```") {
		return "", false
	}
	fields := strings.Fields(line[3:])
	if len(fields) == 0 {
		return "", true
	}
	return fields[0], true
}

// HideCodeBlockLines removes hidden lines from rust code blocks and
// normalizes their opening fence to a bare "```rust". rustdoc treats an
// unlabeled fence as rust.
func HideCodeBlockLines(docs string) string {
	const (
		stateNone = iota
		stateRust
		stateOther
	)

	var filtered []string
	state := stateNone

	for _, line := range strings.Split(docs, "\n") {
		switch state {
		case stateRust:
			if !strings.HasPrefix(line, "#") || strings.HasPrefix(line, "#[") {
				filtered = append(filtered, line)
			}
			if _, isFence := fenceTag(line); isFence {
				state = stateNone
			}

		case stateOther:
			filtered = append(filtered, line)
			if _, isFence := fenceTag(line); isFence {
				state = stateNone
			}

		case stateNone:
			tag, isFence := fenceTag(line)
			if !isFence {
				filtered = append(filtered, line)
				break
			}
			if tag == "" || tag == "rust" {
				filtered = append(filtered, "```rust")
				state = stateRust
			} else {
				filtered = append(filtered, line)
				state = stateOther
			}
		}
	}

	return strings.Join(filtered, "\n")
}

// Caption returns the first non-blank line of a documentation string.
func Caption(docs string) string {
	for _, line := range strings.Split(docs, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
