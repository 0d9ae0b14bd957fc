package completion

import (
	"context"
	"encoding/json"
	"sync"
)

// Fake is a scripted Provider for tests. Responses are consumed in order;
// an exhausted script fails with the configured error (ErrEmptyCompletion
// by default).
type Fake struct {
	mu sync.Mutex

	TextResponses []string
	JSONResponses []string
	Err           error

	// Prompts records every request for assertion.
	Prompts []Request
}

func (f *Fake) CompleteText(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, req)

	if f.Err != nil {
		return "", f.Err
	}

	if len(f.TextResponses) == 0 {
		return "", ErrEmptyCompletion
	}

	resp := f.TextResponses[0]
	f.TextResponses = f.TextResponses[1:]

	return resp, nil
}

func (f *Fake) CompleteJSON(_ context.Context, req Request, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, req)

	if f.Err != nil {
		return f.Err
	}

	if len(f.JSONResponses) == 0 {
		return ErrMalformedOutput
	}

	resp := f.JSONResponses[0]
	f.JSONResponses = f.JSONResponses[1:]

	if err := json.Unmarshal([]byte(ExtractJSON(resp)), out); err != nil {
		return ErrMalformedOutput
	}

	return nil
}
