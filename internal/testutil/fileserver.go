package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"share/internal/share"
)

// StubFileServer is an in-memory share.FileServer.
type StubFileServer struct {
	mu        sync.Mutex
	avail     share.Availability
	name      string
	content   []byte
	checkErr  error
	downloads int
	checks    int
}

var _ share.FileServer = (*StubFileServer)(nil)

func NewStubFileServer() *StubFileServer {
	return &StubFileServer{}
}

// Offer makes a file available. name is what the download reports; file is
// the name returned by the availability check.
func (s *StubFileServer) Offer(file, name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avail = share.Availability{FileAvailable: true, File: file}
	s.name = name
	s.content = content
}

// FailCheck makes CheckFile return err.
func (s *StubFileServer) FailCheck(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkErr = err
}

func (s *StubFileServer) CheckFile(ctx context.Context) (*share.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks++
	if s.checkErr != nil {
		return nil, s.checkErr
	}
	a := s.avail
	return &a, nil
}

func (s *StubFileServer) Download(ctx context.Context) (*share.Download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads++
	return &share.Download{
		Name: s.name,
		Size: int64(len(s.content)),
		Body: io.NopCloser(bytes.NewReader(s.content)),
	}, nil
}

// Downloads returns how many times Download was called.
func (s *StubFileServer) Downloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloads
}

// Checks returns how many times CheckFile was called.
func (s *StubFileServer) Checks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checks
}
