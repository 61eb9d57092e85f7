package model

// Centralized icons for terminal output
// Using simple single-width characters for consistent terminal rendering
const (
	IconMatch     = "•" // Bullet for a search hit
	IconEdited    = "✎" // Pencil (tag rewritten)
	IconUnchanged = "=" // Nothing to change
	IconSkipped   = "–" // Not an mp3
	IconFailed    = "✗" // Thin X (read or write failure)
	IconDryRun    = "≈" // Would change
)
