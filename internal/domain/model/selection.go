package model

// SelectionKind tags which detail panel target a Selection holds.
type SelectionKind string

const (
	SelectionNone       SelectionKind = "none"
	SelectionAccount    SelectionKind = "account"
	SelectionRepository SelectionKind = "repository"
)

// Selection is the single currently-open detail target. It is a tagged
// variant: at most one of Account or Repository is set, matching Kind.
// Constructing through the helpers below keeps the two-slots-filled state
// unrepresentable.
type Selection struct {
	Kind       SelectionKind
	Account    *Account
	Repository *Repository
}

// NoSelection returns the empty selection.
func NoSelection() Selection {
	return Selection{Kind: SelectionNone}
}

// SelectAccount returns a selection holding the given account.
func SelectAccount(a Account) Selection {
	return Selection{Kind: SelectionAccount, Account: &a}
}

// SelectRepository returns a selection holding the given repository.
func SelectRepository(r Repository) Selection {
	return Selection{Kind: SelectionRepository, Repository: &r}
}
