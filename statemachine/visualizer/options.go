package visualizer

// Options configures the visualization output.
type Options struct {
	// ShowInputs labels each transition with the inputs that trigger it.
	ShowInputs bool

	// Direction controls diagram flow: "TD" (top-down) or "LR" (left-right).
	Direction string

	// HighlightPath highlights a specific state path through the diagram,
	// such as the states a run visited.
	HighlightPath []string
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		ShowInputs: true,
		Direction:  "TD",
	}
}

// WithShowInputs enables/disables transition labels.
func (o Options) WithShowInputs(show bool) Options {
	o.ShowInputs = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlightPath sets states to highlight.
func (o Options) WithHighlightPath(path []string) Options {
	o.HighlightPath = path

	return o
}
