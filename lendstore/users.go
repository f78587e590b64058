package lendstore

import (
	"github.com/arthur-debert/lendstore/internal/validation"
	"github.com/arthur-debert/lendstore/lendstore/ids"
	"github.com/arthur-debert/lendstore/lendstore/storage"
	"github.com/arthur-debert/lendstore/types"
)

// EnsureUser returns the user for chatID, creating one on first contact. The boolean
// reports whether a user was created.
func (l *Library) EnsureUser(chatID, displayName string) (types.User, bool, error) {
	var created bool
	user, err := storage.ExecuteWithResult(l.lock, storage.WriteOperation, func() (types.User, error) {
		if id, ok := l.byChatID[chatID]; ok {
			u, _ := l.users.Get(id)
			return u, nil
		}

		if displayName == "" {
			displayName = chatID
		}
		u := types.User{ChatID: chatID, DisplayName: displayName}
		if err := validation.ValidateUser(u); err != nil {
			return types.User{}, invalidInput(chatID, err)
		}
		u.ID = types.UserID(l.mintLocked())

		l.users.Set(u.ID, u)
		l.byChatID[chatID] = u.ID
		created = true
		l.logger.Info("user created", "id", u.ID, "chat_id", chatID)
		return u, nil
	})
	return user, created, err
}

// User returns the user with the given identifier.
func (l *Library) User(id types.UserID) (types.User, bool) {
	var (
		user types.User
		ok   bool
	)
	_ = l.lock.Execute(storage.ReadOperation, func() error {
		user, ok = l.users.Get(id)
		return nil
	})
	return user, ok
}

// UserByChatID returns the user registered under a chat identity.
func (l *Library) UserByChatID(chatID string) (types.User, bool) {
	var (
		user types.User
		ok   bool
	)
	_ = l.lock.Execute(storage.ReadOperation, func() error {
		var id types.UserID
		if id, ok = l.byChatID[chatID]; ok {
			user, ok = l.users.Get(id)
		}
		return nil
	})
	return user, ok
}

// ResolveUser finds a user from an encoded user identifier or a chat id.
func (l *Library) ResolveUser(text string) (types.User, bool) {
	var (
		user types.User
		ok   bool
	)
	_ = l.lock.Execute(storage.ReadOperation, func() error {
		if id, err := ids.Expect(text, l.classifierLocked(), ids.ClassUser); err == nil {
			user, ok = l.users.Get(types.UserID(id))
			return nil
		}
		if id, found := l.byChatID[text]; found {
			user, ok = l.users.Get(id)
		}
		return nil
	})
	return user, ok
}
