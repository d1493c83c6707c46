package wordset

import (
	"path/filepath"

	"github.com/kivanctezoren/sanalkiwobot/internal/text"
)

// Categories bundles the fixed trigger word sets, loaded once at startup and
// immutable afterwards.
type Categories struct {
	// Greet matches greeting messages.
	Greet text.Set
	// WhatsUp matches "what's up?" style status queries.
	WhatsUp text.Set
	// Group matches words addressing the whole group.
	Group text.Set
	// Bot matches words addressing the bot by name.
	Bot text.Set
	// Corona marks a request for epidemic statistics.
	Corona text.Set
	// Request marks a message that asks the bot to do something.
	Request text.Set
}

// LoadCategories reads every category file from the given directory.
func LoadCategories(dir string) (*Categories, error) {
	load := func(name string, dst *text.Set) error {
		s, err := ReadSet(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		*dst = s
		return nil
	}

	var c Categories
	for _, f := range []struct {
		name string
		dst  *text.Set
	}{
		{"ws_greet.txt", &c.Greet},
		{"ws_whatsup.txt", &c.WhatsUp},
		{"ws_group.txt", &c.Group},
		{"ws_kiwo.txt", &c.Bot},
		{"ws_corona.txt", &c.Corona},
		{"ws_request.txt", &c.Request},
	} {
		if err := load(f.name, f.dst); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
