package domain

// OwnerIndex maps a device token to the set of user ids whose records carry
// it. A token duplicated across accounts has more than one owner.
type OwnerIndex map[string]map[string]struct{}

// Owners returns the owner set for token, or nil on an index miss.
func (idx OwnerIndex) Owners(token string) map[string]struct{} {
	return idx[token]
}

// TokenSet is the deduplicated recipient list for one fan-out, paired with the
// owner index used later to prune dead tokens. Built fresh per operation.
type TokenSet struct {
	// Tokens preserves first-seen order; each distinct token appears once.
	Tokens []string
	Owners OwnerIndex
}

// NewTokenSet returns an empty TokenSet.
func NewTokenSet() *TokenSet {
	return &TokenSet{Owners: make(OwnerIndex)}
}

// Add records token as owned by userID. Non-string garbage is filtered by the
// caller; empty tokens are dropped here as a last line of defense.
func (s *TokenSet) Add(token, userID string) {
	if token == "" {
		return
	}
	owners, seen := s.Owners[token]
	if !seen {
		owners = make(map[string]struct{})
		s.Owners[token] = owners
		s.Tokens = append(s.Tokens, token)
	}
	owners[userID] = struct{}{}
}

// Empty reports whether no valid tokens were collected.
func (s *TokenSet) Empty() bool {
	return s == nil || len(s.Tokens) == 0
}
