package lendstore

import "github.com/arthur-debert/lendstore/types"

// Authorizer decides whether a user may approve handouts and returns.
type Authorizer interface {
	CanApprove(user types.User) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(user types.User) bool

// CanApprove implements Authorizer
func (f AuthorizerFunc) CanApprove(user types.User) bool { return f(user) }

// ApproverSet authorizes users by chat identity.
type ApproverSet map[string]struct{}

// NewApproverSet builds a set from chat ids. Blank entries are ignored.
func NewApproverSet(chatIDs ...string) ApproverSet {
	set := make(ApproverSet, len(chatIDs))
	for _, id := range chatIDs {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// CanApprove implements Authorizer
func (s ApproverSet) CanApprove(user types.User) bool {
	_, ok := s[user.ChatID]
	return ok
}

type denyAll struct{}

func (denyAll) CanApprove(types.User) bool { return false }
