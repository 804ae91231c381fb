package datarecording

// NullRecorder discards everything. It stands in for the SQLite writer when
// recording is disabled.
type NullRecorder struct{}

// NewNullRecorder creates a recorder that discards everything.
func NewNullRecorder() NullRecorder {
	return NullRecorder{}
}

// CreateTable does nothing.
func (NullRecorder) CreateTable(_ string, _ any) {}

// InsertData does nothing.
func (NullRecorder) InsertData(_ string, _ any) {}

// ListTables returns no tables.
func (NullRecorder) ListTables() []string { return nil }

// Flush does nothing.
func (NullRecorder) Flush() {}

// Close does nothing.
func (NullRecorder) Close() {}
