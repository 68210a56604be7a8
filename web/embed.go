package web

import "embed"

// DistFS contains the built dashboard files. dist/ ships with a minimal
// static monitor page; a richer build can replace it without code changes.
//
//go:embed all:dist
var DistFS embed.FS
