package domain

// Identity is a verified operator. It is created once per session and never
// changed; Credential must not be logged.
type Identity struct {
	Name       string `json:"name"`
	Credential string `json:"-"`
}

// SelectorKind decides which request field carries a persona instruction.
type SelectorKind string

const (
	// SelectorStyle sends the instruction as the "style" field.
	SelectorStyle SelectorKind = "style"
	// SelectorSystemPrompt sends the instruction as the "system_prompt" field.
	SelectorSystemPrompt SelectorKind = "system_prompt"
)

// Persona pairs a display label with an instruction string that is
// forwarded verbatim to the backend on every chat turn.
type Persona struct {
	Label       string       `json:"label" yaml:"label"`
	Instruction string       `json:"instruction" yaml:"instruction"`
	Kind        SelectorKind `json:"kind" yaml:"kind"`
}

// ChatRequest is a single outbound chat turn.
type ChatRequest struct {
	Text    string
	Persona Persona
}

// ChatReply is the decomposed backend answer to a ChatRequest.
type ChatReply struct {
	Text   string
	Intent string
}
