package share

import (
	"io"
	"math"
)

// Progress is the mutable byte counter for one batch.
type Progress struct {
	// Total is the sum of every file size in the batch.
	Total int64
	// Confirmed is the sum of sizes of files whose upload succeeded.
	Confirmed int64
}

// NewProgress creates a Progress for the given files with nothing confirmed.
func NewProgress(files []FileEntry) *Progress {
	p := &Progress{}
	for _, f := range files {
		p.Total += f.Size
	}
	return p
}

// Percent returns overall progress with inFlight bytes sent for the current
// file: (Confirmed + inFlight) / Total * 100. A batch of empty files reports 0.
func (p *Progress) Percent(inFlight int64) float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Confirmed+inFlight) / float64(p.Total) * 100
}

// Confirm records a fully uploaded file.
func (p *Progress) Confirm(size int64) {
	p.Confirmed += size
}

// RoundPercent rounds a percentage for display.
func RoundPercent(percent float64) int {
	return int(math.Round(percent))
}

// progressReader counts bytes read from the wrapped reader and reports the
// running total after every read.
type progressReader struct {
	r      io.Reader
	sent   int64
	report func(sent int64)
}

func newProgressReader(r io.Reader, report func(sent int64)) *progressReader {
	return &progressReader{r: r, report: report}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.sent += int64(n)
		if pr.report != nil {
			pr.report(pr.sent)
		}
	}
	return n, err
}
