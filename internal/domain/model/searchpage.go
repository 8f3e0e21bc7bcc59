package model

// SearchPage is one page of account search results, carried verbatim from
// the upstream response. A new query replaces the page wholesale.
type SearchPage struct {
	TotalCount        int
	IncompleteResults bool
	Items             []Account
}
