package conversation

// Speaker identifies which side of the conversation produced an exchange.
type Speaker string

const (
	SpeakerUser      Speaker = "User"
	SpeakerAssistant Speaker = "Assistant"
)

// Exchange is a single conversation turn. Values are immutable once created.
type Exchange struct {
	Speaker Speaker
	Content string
}
