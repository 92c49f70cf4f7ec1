package stitch

// Options holds configuration shared by the merge and split entry points.
type Options struct {
	// Workers bounds how many inputs are parsed, parts built or outputs
	// serialized at once. Values below 2 mean sequential.
	Workers int

	// Compress Flate-encodes unfiltered streams when writing.
	Compress bool

	// Bookmarks adds an outline entry per merged input.
	Bookmarks bool

	// Titles names the bookmark of each merged input.
	Titles []string

	// Version overrides the merged document's PDF version.
	Version string

	// FileID is written as the trailer /ID. A random id is used when empty.
	FileID []byte
}

// DefaultOptions returns the options used by Merge, SplitByRanges and
// SplitByFixedSize.
func DefaultOptions() Options {
	return Options{
		Workers:  1,
		Compress: true,
	}
}

// clone creates a deep copy of Options.
func (o Options) clone() Options {
	newOpts := o
	if o.Titles != nil {
		newOpts.Titles = make([]string, len(o.Titles))
		copy(newOpts.Titles, o.Titles)
	}
	if o.FileID != nil {
		newOpts.FileID = make([]byte, len(o.FileID))
		copy(newOpts.FileID, o.FileID)
	}
	return newOpts
}

func (o Options) workers() int {
	return max(o.Workers, 1)
}
