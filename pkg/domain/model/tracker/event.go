package tracker

// Event is a normalized Trello card activity
type Event struct {
	ActionID      string
	Discriminator Discriminator

	CardID        string
	CardShortLink string
	// CardName is the card name as displayed after the activity
	CardName string
	// CardDescription is only set for description changes
	CardDescription *string

	// MemberText is the display text of the member who acted
	MemberText string

	// ListBefore and ListAfter are only set for moves between lists
	ListBefore *string
	ListAfter  *string

	// CommentText is only set for comments
	CommentText *string

	// AppCreatorID is set when the activity was performed through an integration
	// rather than by a human
	AppCreatorID string
}

// FromApp reports whether the activity was performed by an integration
func (e *Event) FromApp() bool {
	return e.AppCreatorID != ""
}

// CardURL returns the browser link of a card; both the short link and the full card id resolve
func CardURL(cardRef string) string {
	if cardRef == "" {
		return ""
	}
	return "https://trello.com/c/" + cardRef
}
