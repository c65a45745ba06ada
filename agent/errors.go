package agent

import "fmt"

// InvalidToolArgumentsError reports model-supplied tool arguments that failed
// schema validation. It carries enough structure for the model to retry with
// corrected arguments.
type InvalidToolArgumentsError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *InvalidToolArgumentsError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid arguments for tool %s: field %q: %s", e.Tool, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid arguments for tool %s: %s", e.Tool, e.Reason)
}

// AgentUnavailableError is the terminal per-turn failure after model
// completion retries are exhausted. The session and conversation state stay
// valid for the next turn.
type AgentUnavailableError struct {
	Attempts int
	Err      error
}

func (e *AgentUnavailableError) Error() string {
	return fmt.Sprintf("model unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *AgentUnavailableError) Unwrap() error {
	return e.Err
}
