package joist

import _ "embed"

// Version is the release of the library, as written in the VERSION file.
// It may end with a newline.
//
//go:embed VERSION
var Version string
