package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// ReceivedUpload is one request seen by FakeShareServer's upload endpoint.
type ReceivedUpload struct {
	Name            string
	RelativePath    string
	HasRelativePath bool
	Content         []byte
	Status          int
}

// QueuedFile is a file FakeShareServer offers for download.
type QueuedFile struct {
	Name    string
	Content []byte
}

// FakeShareServer is an in-process share server with the same endpoints
// and response shapes as the real one. Uploads are recorded in arrival
// order; downloads pop from a queue.
type FakeShareServer struct {
	*httptest.Server

	mu           sync.Mutex
	uploads      []ReceivedUpload
	uploadStatus map[string]int
	queue        []QueuedFile
	checkStatus  int
	checkBody    string
}

// NewFakeShareServer starts a server that is closed when the test ends.
func NewFakeShareServer(t *testing.T) *FakeShareServer {
	t.Helper()

	s := &FakeShareServer{uploadStatus: make(map[string]int)}

	r := mux.NewRouter()
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/check-file", s.handleCheckFile).Methods(http.MethodGet)
	r.HandleFunc("/download", s.handleDownload).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// FailUpload makes uploads of the named file answer with status.
func (s *FakeShareServer) FailUpload(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadStatus[name] = status
}

// Enqueue offers a file for download.
func (s *FakeShareServer) Enqueue(name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, QueuedFile{Name: name, Content: content})
}

// BreakCheckFile makes the availability endpoint answer with status and a raw body.
func (s *FakeShareServer) BreakCheckFile(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkStatus = status
	s.checkBody = body
}

// Uploads returns every upload request received so far.
func (s *FakeShareServer) Uploads() []ReceivedUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ReceivedUpload(nil), s.uploads...)
}

// Queued returns how many files are still waiting to be downloaded.
func (s *FakeShareServer) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *FakeShareServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Unable to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Unable to retrieve file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error saving file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	relValues, hasRel := r.MultipartForm.Value["relativePath"]
	upload := ReceivedUpload{
		Name:            header.Filename,
		HasRelativePath: hasRel,
		Content:         content,
		Status:          http.StatusOK,
	}
	if hasRel && len(relValues) > 0 {
		upload.RelativePath = relValues[0]
	}

	s.mu.Lock()
	if status, ok := s.uploadStatus[header.Filename]; ok {
		upload.Status = status
	}
	s.uploads = append(s.uploads, upload)
	s.mu.Unlock()

	if upload.Status != http.StatusOK {
		http.Error(w, "upload rejected", upload.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "File uploaded successfully",
		"filename": header.Filename,
	})
}

func (s *FakeShareServer) handleCheckFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkStatus != 0 {
		w.WriteHeader(s.checkStatus)
		io.WriteString(w, s.checkBody)
		return
	}

	resp := map[string]any{"fileAvailable": len(s.queue) > 0}
	if len(s.queue) > 0 {
		resp["file"] = s.queue[0].Name
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *FakeShareServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		http.Error(w, "No file available for download", http.StatusNotFound)
		return
	}
	next := s.queue[0]
	s.queue = s.queue[1:]

	// Unquoted, as the share server sends it.
	w.Header().Set("Content-Disposition", "attachment; filename="+next.Name)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(next.Content)
}
