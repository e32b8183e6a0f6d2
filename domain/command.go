package domain

// PostMessageCommand carries a message sent by From.
// The same shape is used to edit an existing message.
type PostMessageCommand struct {
	From string
	To   string `validate:"required"`
	Text string `validate:"required"`
	Kind Kind   `validate:"required,oneof=message private_message"`
}

type JoinCommand struct {
	Name string `validate:"required"`
}

// GetMessagesCommand asks for the messages visible to Requester.
// Limit <= 0 means no limit.
type GetMessagesCommand struct {
	Requester string
	Limit     int
}
