package events

import "time"

// BootstrapStart is emitted before a schema model is compiled.
type BootstrapStart struct {
	Types      int
	Operations int
}

// BootstrapFinish is emitted after compilation, successful or not.
type BootstrapFinish struct {
	Types    int
	Fields   int
	Loaders  int
	Warnings int
	Empty    bool
	Err      error
	Duration time.Duration
}

// BatchDispatch is emitted after a batch loader called its batch function.
type BatchDispatch struct {
	Loader     string
	Keys       int
	UniqueKeys int
	Err        error
	Duration   time.Duration
}
