package web

import "embed"

//go:embed static
var Static embed.FS

// IndexHTML is the page served at "/", kept byte-for-byte as authored.
//
//go:embed static/index.html
var IndexHTML []byte
