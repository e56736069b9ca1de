package share

// FileEntry is one file picked by the user.
type FileEntry struct {
	// Name is the file's base name.
	Name string
	// Size is the file's size in bytes at selection time.
	Size int64
	// RelativePath is "<folder>/<path inside folder>" with forward slashes.
	// Only set for folder selections.
	RelativePath string
	// Path is the resolved local file.
	Path *Path
}

// Selection is the ordered set of files chosen in one picker interaction.
// It is not modified once captured.
type Selection struct {
	Files    []FileEntry
	IsFolder bool
}

// TotalSize returns the sum of all file sizes in the selection.
func (s *Selection) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}

// Empty reports whether the selection holds no files.
func (s *Selection) Empty() bool {
	return s == nil || len(s.Files) == 0
}
