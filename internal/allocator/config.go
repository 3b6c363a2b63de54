package allocator

// Config controls Heap construction. It follows the functional-options
// pattern the teacher uses for its own allocator variants.
type Config struct {
	// Reporter receives BadPointer/CorruptNeighbor/IndexInconsistency
	// diagnostics. Defaults to one that writes to os.Stderr.
	Reporter Reporter

	// FormatVersion stamps every diagnostic dump (see version.go). Useful
	// for recovery tooling deciding whether it understands a region's
	// on-disk/in-shared-memory chunk layout.
	FormatVersion string
}

// Option mutates a Config during NewHeap.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		Reporter:      stderrReporter{},
		FormatVersion: dumpFormatVersion,
	}
}

// WithReporter overrides the diagnostic sink.
func WithReporter(r Reporter) Option {
	return func(c *Config) { c.Reporter = r }
}

// WithFormatVersion overrides the dump format tag stamped on diagnostics.
// Must be a valid semantic version (see version.go); an invalid tag falls
// back to dumpFormatVersion.
func WithFormatVersion(v string) Option {
	return func(c *Config) { c.FormatVersion = v }
}
