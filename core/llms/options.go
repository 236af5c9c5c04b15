package llms

type BaseOptions struct {
	Instructions string
	Messages     []Message
}

type GeneralPromptOptions struct {
	BaseOptions
}

type StreamingPromptOptions struct {
	GeneralPromptOptions
}

type GeneralPromptOption interface {
	ApplyToGeneral(*GeneralPromptOptions)
}

type StreamingPromptOption interface {
	ApplyToStreaming(*StreamingPromptOptions)
}

// PromptOption applies to every kind of prompt.
type PromptOption func(*BaseOptions)

func (f PromptOption) ApplyToGeneral(o *GeneralPromptOptions) {
	f(&o.BaseOptions)
}

func (f PromptOption) ApplyToStreaming(o *StreamingPromptOptions) {
	f(&o.BaseOptions)
}

// WithInstructions sets the system instruction for the prompt.
// Repeating this option overwrites the previous instruction.
func WithInstructions(instructions string) PromptOption {
	return func(opts *BaseOptions) {
		opts.Instructions = instructions
	}
}

// WithMessages adds conversation history to the prompt.
// Repeating this option sequentially adds more messages.
func WithMessages(messages ...Message) PromptOption {
	return func(opts *BaseOptions) {
		opts.Messages = append(opts.Messages, messages...)
	}
}
