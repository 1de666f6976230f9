// Package campuslib provides embedded assets for production builds.
package campuslib

import "embed"

// Embedded templates for production builds.
// In dev mode (IsDev=true), templates are loaded from disk for hot reloading.

//go:embed all:templates
var TemplateFS embed.FS
