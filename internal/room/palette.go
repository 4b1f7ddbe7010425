package room

// Palette is the finite set of plan colours. Colours carry no meaning in the
// model; they only distinguish rooms on a shared building plan.
var Palette = []string{
	"#3B82F6", // blue
	"#10B981", // green
	"#F59E0B", // amber
	"#8B5CF6", // violet
	"#EF4444", // red
	"#06B6D4", // cyan
}

// ColorFor returns the palette colour for the n-th room added to a project
// (0-indexed), cycling through the palette.
func ColorFor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}
