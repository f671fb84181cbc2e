package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	Role    MessageRole
	Content string
	Images  []ImageAttachment
}

type ImageAttachment struct {
	MIMEType string
	Data     []byte
}
