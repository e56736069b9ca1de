package share_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"share/internal/encryption"
	"share/internal/share"
)

func TestShareService_CheckAndDownload_Available(t *testing.T) {
	f := newFixture(t, nil)
	f.server.Offer("report.pdf", "report.pdf", []byte("pdf bytes"))

	res, err := f.svc.CheckAndDownload(context.Background(), "/downloads", nil)
	if err != nil {
		t.Fatalf("CheckAndDownload() error = %v", err)
	}
	if res == nil {
		t.Fatal("CheckAndDownload() = nil, want result")
	}
	if res.Path != "/downloads/report.pdf" || res.Size != 9 {
		t.Errorf("result = %+v", *res)
	}
	got, ok := f.fs.Content("/downloads/report.pdf")
	if !ok || string(got) != "pdf bytes" {
		t.Errorf("saved content = %q, %v", got, ok)
	}
	if alerts := f.view.Alerts(); len(alerts) != 0 {
		t.Errorf("alerts = %q, want none", alerts)
	}
}

func TestShareService_CheckAndDownload_NotAvailable(t *testing.T) {
	f := newFixture(t, nil)
	unlocked := false
	unlock := func() (share.DecryptionContext, error) {
		unlocked = true
		return nil, nil
	}

	res, err := f.svc.CheckAndDownload(context.Background(), "/downloads", unlock)
	if err != nil {
		t.Fatalf("CheckAndDownload() error = %v", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", *res)
	}
	if got := f.view.Alerts(); len(got) != 1 || got[0] != share.MsgNoFileAvailable {
		t.Errorf("alerts = %q, want %q", got, share.MsgNoFileAvailable)
	}
	if f.server.Downloads() != 0 {
		t.Errorf("Download called %d times, want 0", f.server.Downloads())
	}
	if unlocked {
		t.Error("passphrase requested although nothing was available")
	}
}

func TestShareService_CheckAndDownload_CheckFails(t *testing.T) {
	f := newFixture(t, nil)
	f.server.FailCheck(errors.New("connection refused"))

	res, err := f.svc.CheckAndDownload(context.Background(), "/downloads", nil)
	if err != nil {
		t.Fatalf("CheckAndDownload() error = %v", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", *res)
	}
	want := "Error checking for file: connection refused"
	if got := f.view.Alerts(); len(got) != 1 || got[0] != want {
		t.Errorf("alerts = %q, want %q", got, want)
	}
	if f.server.Checks() != 1 {
		t.Errorf("CheckFile called %d times, want exactly 1", f.server.Checks())
	}
}

func TestShareService_CheckAndDownload_Names(t *testing.T) {
	tests := []struct {
		name       string
		reported   string
		attachment string
		existing   []string
		wantPath   string
	}{
		{name: "attachment name", reported: "x.bin", attachment: "notes.txt", wantPath: "/downloads/notes.txt"},
		{name: "reported name", reported: "sub/notes.txt", wantPath: "/downloads/notes.txt"},
		{name: "fallback", wantPath: "/downloads/download"},
		{name: "no overwrite", attachment: "notes.txt", existing: []string{"/downloads/notes.txt"}, wantPath: "/downloads/notes (1).txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			for _, p := range tt.existing {
				f.fs.AddFile(p, []byte("old"))
			}
			f.server.Offer(tt.reported, tt.attachment, []byte("new"))

			res, err := f.svc.CheckAndDownload(context.Background(), "/downloads", nil)
			if err != nil {
				t.Fatalf("CheckAndDownload() error = %v", err)
			}
			if res.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", res.Path, tt.wantPath)
			}
			for _, p := range tt.existing {
				if got, _ := f.fs.Content(p); string(got) != "old" {
					t.Errorf("%s was overwritten", p)
				}
			}
		})
	}
}

func TestShareService_CheckAndDownload_Decrypts(t *testing.T) {
	f := newFixture(t, nil)
	enc := encryption.NewTestEncryptor()
	var sealed bytes.Buffer
	if err := enc.Encrypt(bytes.NewReader([]byte("plain")), &sealed); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	f.server.Offer("secret.txt", "secret.txt", sealed.Bytes())

	unlock := func() (share.DecryptionContext, error) { return enc.Unlock("pw") }
	res, err := f.svc.CheckAndDownload(context.Background(), "/downloads", unlock)
	if err != nil {
		t.Fatalf("CheckAndDownload() error = %v", err)
	}
	got, _ := f.fs.Content(res.Path)
	if string(got) != "plain" {
		t.Errorf("saved content = %q, want %q", got, "plain")
	}
	if res.Size != 5 {
		t.Errorf("Size = %d, want plaintext size 5", res.Size)
	}
}

func TestShareService_CheckAndDownload_DecryptFailureRemovesFile(t *testing.T) {
	f := newFixture(t, nil)
	enc := encryption.NewTestEncryptor()
	f.server.Offer("secret.txt", "secret.txt", []byte("not encrypted"))

	unlock := func() (share.DecryptionContext, error) { return enc.Unlock("pw") }
	if _, err := f.svc.CheckAndDownload(context.Background(), "/downloads", unlock); err == nil {
		t.Fatal("CheckAndDownload() expected error")
	}
	if _, ok := f.fs.Content("/downloads/secret.txt"); ok {
		t.Error("partial download was not removed")
	}
}

func TestShareService_CheckAndDownload_UnlockFails(t *testing.T) {
	f := newFixture(t, nil)
	f.server.Offer("secret.txt", "secret.txt", []byte("x"))

	unlock := func() (share.DecryptionContext, error) { return nil, errors.New("wrong passphrase") }
	if _, err := f.svc.CheckAndDownload(context.Background(), "/downloads", unlock); err == nil {
		t.Fatal("CheckAndDownload() expected error")
	}
	if f.server.Downloads() != 0 {
		t.Error("download started despite failed unlock")
	}
}
