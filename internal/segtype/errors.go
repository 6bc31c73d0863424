package segtype

import "errors"

var (
	errAdjacentChars  = errors.New("segtype: adjacent char segments were not merged")
	errGravityOrder   = errors.New("segtype: left-gravity zero-size segment precedes a right-gravity one at the same offset")
	errEmptyLine      = errors.New("segtype: line has no segments")
	errMissingNewline = errors.New("segtype: line does not end with a newline char segment")
)
