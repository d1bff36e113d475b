// internal/telegram/models.go
package telegram

// Encoding selects the message body's markup mode.
type Encoding string

const (
	// EncodingRich is MarkdownV2, the default. Free text must be escaped.
	EncodingRich Encoding = "MarkdownV2"
	// EncodingPlain carries no markup at all and needs no escaping.
	EncodingPlain Encoding = ""
)

// Message is one rendered notification, constructed per dispatch attempt
// and discarded afterwards.
type Message struct {
	Text   string
	Target string
	Mode   Encoding
}

// sendRequest is the provider's sendMessage payload.
type sendRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse is the provider's success/error envelope. Description carries
// the machine-readable failure string used for classification.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}
