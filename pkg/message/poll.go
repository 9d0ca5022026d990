package message

import "github.com/flemzord/tgnotify/pkg/botapi"

// Poll is a native poll sent with sendPoll.
type Poll struct {
	Options
	Question string
	Answers  []string

	// NonAnonymous reveals who voted. Polls are anonymous by default.
	NonAnonymous bool

	// Quiz makes the poll a quiz with a single correct answer.
	Quiz                  bool
	AllowsMultipleAnswers bool

	// CorrectOptionID is the 0-based index of the correct answer in quiz mode.
	CorrectOptionID *int
	Explanation     string

	// OpenPeriod is the number of seconds the poll stays active.
	OpenPeriod int

	// CloseDate is the Unix time at which the poll closes.
	CloseDate int64
	IsClosed  bool
}

// APIMethod implements Message.
func (m *Poll) APIMethod() string { return "sendPoll" }

// Params implements Message.
func (m *Poll) Params() botapi.Params {
	answers := make([]map[string]string, len(m.Answers))
	for i, a := range m.Answers {
		answers[i] = map[string]string{"text": a}
	}
	p := botapi.Params{"options": answers}.
		Add("question", m.Question).
		Add("allows_multiple_answers", m.AllowsMultipleAnswers).
		Add("explanation", m.Explanation).
		Add("open_period", m.OpenPeriod).
		Add("close_date", m.CloseDate).
		Add("is_closed", m.IsClosed)
	if m.NonAnonymous {
		p["is_anonymous"] = false
	}
	if m.Quiz {
		p["type"] = "quiz"
	}
	if m.CorrectOptionID != nil {
		p["correct_option_id"] = *m.CorrectOptionID
	}
	return m.apply(p)
}

// Dice emoji understood by sendDice.
const (
	DiceDie        = "🎲"
	DiceDarts      = "🎯"
	DiceBasketball = "🏀"
	DiceFootball   = "⚽"
	DiceBowling    = "🎳"
	DiceSlots      = "🎰"
)

// Dice is an animated emoji with a random value sent with sendDice.
type Dice struct {
	Options

	// Emoji defaults to DiceDie.
	Emoji string
}

// APIMethod implements Message.
func (m *Dice) APIMethod() string { return "sendDice" }

// Params implements Message.
func (m *Dice) Params() botapi.Params {
	emoji := m.Emoji
	if emoji == "" {
		emoji = DiceDie
	}
	return m.apply(botapi.Params{"emoji": emoji})
}
