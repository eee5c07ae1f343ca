package entities

// ParseStats counts what happened to every line of one distribution file.
type ParseStats struct {
	Lines        int
	Records      int
	EmptyLines   int
	ShortLines   int
	FormatErrors int
}

// Skipped returns the total number of dropped lines.
func (s ParseStats) Skipped() int {
	return s.EmptyLines + s.ShortLines + s.FormatErrors
}
