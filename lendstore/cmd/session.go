package main

import (
	"log/slog"

	"github.com/arthur-debert/lendstore/lendstore"
	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/lendstore/store"
	"github.com/arthur-debert/lendstore/types"
)

// session owns the library for one run of the binary, whether a single command or a shell.
type session struct {
	lib    *lendstore.Library
	file   *store.SnapshotFile
	cfg    config
	logger *slog.Logger
}

// openSession loads the snapshot named by cfg.DB. A missing file starts an empty library;
// a damaged one is an error and the run stops.
func openSession(cfg config, logger *slog.Logger) (*session, error) {
	file := snapshotFile(cfg, logger)
	snap, err := file.Load()
	if err != nil {
		return nil, err
	}
	return newSession(cfg, logger, file, snap)
}

// freshSession starts from an empty library without reading cfg.DB, so a damaged file
// can be replaced.
func freshSession(cfg config, logger *slog.Logger) (*session, error) {
	return newSession(cfg, logger, snapshotFile(cfg, logger), nil)
}

func snapshotFile(cfg config, logger *slog.Logger) *store.SnapshotFile {
	opts := []store.Option{store.WithLogger(logger)}
	if cfg.DumpDir != "" {
		opts = append(opts, store.WithTempDir(cfg.DumpDir))
	}
	return store.Open(cfg.DB, opts...)
}

func newSession(cfg config, logger *slog.Logger, file *store.SnapshotFile, snap *storage.Snapshot) (*session, error) {
	lib, err := lendstore.FromSnapshot(snap, libraryOptions(cfg, logger)...)
	if err != nil {
		return nil, err
	}
	return &session{lib: lib, file: file, cfg: cfg, logger: logger}, nil
}

func libraryOptions(cfg config, logger *slog.Logger) []lendstore.Option {
	return []lendstore.Option{
		lendstore.WithLoanPeriod(cfg.loanPeriod()),
		lendstore.WithAuthorizer(lendstore.NewApproverSet(cfg.Approvers...)),
		lendstore.WithLogger(logger),
	}
}

// actor returns the member for chatID, registering them on first contact.
func (s *session) actor(chatID string) (types.User, error) {
	if chatID == "" {
		return types.User{}, NewConfigError("identify you", "no acting member", CommonSuggestions.CheckAs)
	}
	user, created, err := s.lib.EnsureUser(chatID, "")
	if err != nil {
		return types.User{}, err
	}
	if created {
		s.logger.Info("new member", "chat_id", chatID, "id", user.ID)
	}
	return user, nil
}

func (s *session) isApprover(u types.User) bool {
	return lendstore.NewApproverSet(s.cfg.Approvers...).CanApprove(u)
}

func (s *session) save() error {
	return s.lib.Save(s.file)
}

// shutdown persists the library without failing; see store.SnapshotFile.TrySave.
func (s *session) shutdown() store.SaveReport {
	return s.lib.TrySave(s.file)
}
