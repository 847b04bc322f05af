package chat

import (
	"context"
	"strings"
)

// StaticAnswerer composes a reply from the retrieved context alone. It
// stands in when no external language model is configured, keeping the
// chatbot endpoint usable offline.
type StaticAnswerer struct{}

var _ Answerer = (*StaticAnswerer)(nil)

func (StaticAnswerer) Answer(_ context.Context, _ string, context []string) (string, error) {
	if len(context) == 0 {
		return "I could not find anything in your records related to that.", nil
	}
	return "Here is what I found in your records:\n- " + strings.Join(context, "\n- "), nil
}
