package models

// BookRequest is the JSON body of the book endpoints.
// Pages takes precedence over Scope; UserID takes precedence over User
// when a user store is configured.
type BookRequest struct {
	Scope  string   `json:"scope,omitempty"`
	Pages  []int    `json:"pages,omitempty"`
	User   UserData `json:"user"`
	UserID string   `json:"userId,omitempty"`
}

// ResolveScope returns the scope the request selects
func (r BookRequest) ResolveScope() (Scope, error) {
	if len(r.Pages) > MaxScopePages {
		return Scope{}, tooManyPages()
	}
	if len(r.Pages) > 0 {
		return PageListScope(r.Pages...), nil
	}
	return ParseScope(r.Scope)
}
