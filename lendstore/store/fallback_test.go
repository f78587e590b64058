package store

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestTrySave(t *testing.T) {
	t.Run("primary save succeeds", func(t *testing.T) {
		sf, mockFS, _ := openMock(t)

		report := sf.TrySave(sampleSnapshot())
		if !report.Saved() || report.DumpPath != "" || report.Logged {
			t.Fatalf("unexpected report %+v", report)
		}
		if !mockFS.FileExists("library-db.bin") {
			t.Error("snapshot file not written")
		}
	})

	t.Run("falls back to a dump", func(t *testing.T) {
		sf, mockFS, _ := openMock(t)
		mockFS.RenameError = errors.New("read-only filesystem")

		report := sf.TrySave(sampleSnapshot())
		if report.Saved() {
			t.Fatal("expected primary save to fail")
		}
		if !errors.Is(report.SaveErr, ErrPersistence) {
			t.Errorf("SaveErr = %v, want ErrPersistence", report.SaveErr)
		}
		if !report.Persisted() || report.Logged {
			t.Fatalf("unexpected report %+v", report)
		}

		dumps := mockFS.PathsWithPrefix("/tmp/" + DumpPrefix)
		if len(dumps) != 1 || dumps[0] != report.DumpPath {
			t.Fatalf("dumps = %v, report path %q", dumps, report.DumpPath)
		}
		content, _ := mockFS.GetFileContent(report.DumpPath)
		snap, err := ReadDump(content)
		if err != nil {
			t.Fatalf("dump does not parse: %v", err)
		}
		if len(snap.Books) != 2 || snap.Books[0].Title != "Chess Basics" {
			t.Errorf("dump lost data: %+v", snap.Books)
		}
	})

	t.Run("logs contents when nothing can be written", func(t *testing.T) {
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
		sf, mockFS, _ := openMock(t, WithLogger(logger))
		mockFS.WriteFileError = errors.New("disk full")

		report := sf.TrySave(sampleSnapshot())
		if report.Persisted() {
			t.Fatalf("nothing should have been persisted: %+v", report)
		}
		if report.DumpErr == nil || !report.Logged {
			t.Fatalf("unexpected report %+v", report)
		}
		if !strings.Contains(logs.String(), "Chess Basics") {
			t.Errorf("snapshot contents missing from log:\n%s", logs.String())
		}
	})
}
