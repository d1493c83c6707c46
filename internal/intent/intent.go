// Package intent decides whether a message addresses the bot and which
// reply categories it triggers, by intersecting the message's phrase set
// with fixed trigger word sets.
package intent

import (
	"github.com/kivanctezoren/sanalkiwobot/internal/text"
	"github.com/kivanctezoren/sanalkiwobot/internal/wordset"
)

// Context carries the addressing facts of one incoming message.
type Context struct {
	Private    bool
	ReplyToBot bool
}

// Result lists the categories fired by one message. Categories are tested
// independently; several may fire at once.
type Result struct {
	// Addressed is true when the message targets the bot: private chat,
	// reply to the bot, or a bot/group address word.
	Addressed bool
	// Greet fires a greeting reply.
	Greet bool
	// WhatsUp fires a status reply from the fixed pool.
	WhatsUp bool
	// StatsRequest fires a statistics lookup; locations follow separately.
	StatsRequest bool
}

// Classifier matches phrase sets against the loaded categories.
type Classifier struct {
	cats *wordset.Categories

	// Literal triggers for messages not addressed to the bot. Narrower than
	// the full word sets on purpose: a plain group-wide greeting should only
	// be answered when unmistakable.
	groupGreetings text.Set
	groupWhatsUp   text.Set
}

// NewClassifier builds a classifier over the fixed word-set categories.
func NewClassifier(cats *wordset.Categories) *Classifier {
	return &Classifier{
		cats:           cats,
		groupGreetings: text.NewSet("selamlar", "merhabalar"),
		groupWhatsUp:   text.NewSet("nabersiniz"),
	}
}

// Classify evaluates one message. The normalized full text is needed for
// the literal group-greeting check, the phrase set for everything else.
func (c *Classifier) Classify(phrases text.Set, normalized string, mctx Context) Result {
	var r Result

	r.Addressed = mctx.Private || mctx.ReplyToBot ||
		phrases.Intersects(c.cats.Bot) || phrases.Intersects(c.cats.Group)

	if !r.Addressed {
		// Only unmistakable group-wide triggers are answered.
		r.Greet = c.groupGreetings.Contains(normalized)
		r.WhatsUp = phrases.Intersects(c.groupWhatsUp)
		return r
	}

	r.Greet = phrases.Intersects(c.cats.Greet)
	r.WhatsUp = phrases.Intersects(c.cats.WhatsUp)

	if mctx.Private || phrases.Intersects(c.cats.Request) {
		r.StatsRequest = phrases.Intersects(c.cats.Corona)
	}

	return r
}

// ResolutionSeed returns the phrases already explained by trigger sets,
// used to seed the location resolver's exclusion set.
func (c *Classifier) ResolutionSeed() text.Set {
	seed := make(text.Set)
	seed.Union(c.cats.Corona)
	seed.Union(c.cats.Request)
	seed.Union(c.cats.Bot)
	seed.Union(c.cats.Greet)
	seed.Union(c.cats.WhatsUp)
	return seed
}
