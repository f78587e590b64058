package store

import (
	"path/filepath"

	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/google/uuid"
)

// DumpPrefix starts the file name of every fallback dump.
const DumpPrefix = "lendstore-dump-"

// SaveReport records how far TrySave had to go.
type SaveReport struct {
	// SaveErr is nil when the snapshot file was written.
	SaveErr error
	// DumpPath is set when the YAML dump was written.
	DumpPath string
	DumpErr  error
	// Logged means the YAML text went to the error log as a last resort.
	Logged bool
}

// Saved reports whether the primary snapshot file was written.
func (r SaveReport) Saved() bool {
	return r.SaveErr == nil
}

// Persisted reports whether the data reached disk in either form.
func (r SaveReport) Persisted() bool {
	return r.Saved() || r.DumpPath != ""
}

// TrySave never returns an error. It attempts, in order, Save, a YAML dump in the
// temp directory, and finally writing the YAML to the error log, stopping at the
// first stage that succeeds.
func (s *SnapshotFile) TrySave(snap *storage.Snapshot) SaveReport {
	var report SaveReport

	report.SaveErr = s.Save(snap)
	if report.SaveErr == nil {
		s.logger.Info("snapshot saved", "path", s.path)
		return report
	}
	s.logger.Error("snapshot save failed, dumping", "path", s.path, "error", report.SaveErr)

	text, err := DumpYAML(snap)
	if err != nil {
		report.DumpErr = err
		s.logger.Error("snapshot could not be rendered", "error", err)
		return report
	}

	dumpPath := filepath.Join(s.tempDir, DumpPrefix+uuid.NewString()+".yaml")
	if err := s.fs.WriteFile(dumpPath, text, 0o600); err != nil {
		report.DumpErr = err
		s.logger.Error("snapshot dump failed", "path", dumpPath, "error", err)
	} else {
		report.DumpPath = dumpPath
		s.logger.Warn("snapshot dumped", "path", dumpPath)
		return report
	}

	s.logger.Error("snapshot contents", "yaml", string(text))
	report.Logged = true
	return report
}
