package tracker

// Kind is the closed set of card activities the relay understands
type Kind int

const (
	KindUnrecognized Kind = iota
	KindCreated
	KindArchived
	KindRenamed
	KindDescriptionChanged
	KindMoved
	KindCommented
)

var kindByKey = map[string]Kind{
	"action_create_card":                 KindCreated,
	"action_archived_card":               KindArchived,
	"action_renamed_card":                KindRenamed,
	"action_changed_description_of_card": KindDescriptionChanged,
	"action_move_card_from_list_to_list": KindMoved,
	"action_comment_on_card":             KindCommented,
}

func (k Kind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindArchived:
		return "archived"
	case KindRenamed:
		return "renamed"
	case KindDescriptionChanged:
		return "description_changed"
	case KindMoved:
		return "moved"
	case KindCommented:
		return "commented"
	default:
		return "unrecognized"
	}
}

// Discriminator identifies which card activity a tracker event describes.
// Raw always holds the translation key as received, so an unrecognized key
// can still be reported.
type Discriminator struct {
	Kind Kind
	Raw  string
}

// ParseDiscriminator maps a Trello display translation key to a Discriminator.
// Unknown keys are not an error; they yield KindUnrecognized.
func ParseDiscriminator(raw string) Discriminator {
	kind, ok := kindByKey[raw]
	if !ok {
		kind = KindUnrecognized
	}
	return Discriminator{Kind: kind, Raw: raw}
}

// IsRecognized reports whether the discriminator is one of the known activities
func (d Discriminator) IsRecognized() bool {
	return d.Kind != KindUnrecognized
}

func (d Discriminator) String() string {
	return d.Raw
}
