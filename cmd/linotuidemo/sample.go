package main

import "github.com/mobanhawi/linotype/internal/tag"

// sampleDocument seeds an empty buffer when the program is launched with no
// file argument, giving every tag demo (heading, link, elide) something to
// land on.
const sampleDocument = `Linotype Demo Buffer

Visit https://example.com for more info.
This line hides a (secret) word via an elide tag.
Edit me: type anywhere, move with the arrow keys, press
ctrl+b to bold the word under the cursor, or ctrl+e to hide it.
`

func boolPtr(b bool) *bool { return &b }

func tagAttrsBold() tag.Attrs {
	return tag.Attrs{Bold: boolPtr(true)}
}

func tagAttrsLink() tag.Attrs {
	return tag.Attrs{Foreground: "#1abc9c", Underline: boolPtr(true)}
}

func tagAttrsElide() tag.Attrs {
	return tag.Attrs{Elide: boolPtr(true)}
}
