package store

import (
	"bytes"
	"fmt"

	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

func encodeSnapshot(snap *storage.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) (*storage.Snapshot, error) {
	var snap storage.Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if snap.Metadata.Version != storage.CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrCorruptSnapshot, snap.Metadata.Version)
	}
	return &snap, nil
}

// DumpYAML renders a snapshot in the human-readable form used by fallback dumps.
func DumpYAML(snap *storage.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadDump parses a fallback dump back into a snapshot so it can be restored.
func ReadDump(data []byte) (*storage.Snapshot, error) {
	var snap storage.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if snap.Metadata.Version != storage.CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrCorruptSnapshot, snap.Metadata.Version)
	}
	return &snap, nil
}
