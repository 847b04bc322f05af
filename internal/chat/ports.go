// Package chat implements the retrieval-augmented finance assistant.
// Embedding and LLM providers are external collaborators behind the
// Retriever and Answerer ports; the package ships a deterministic
// keyword retriever and a context-echo answerer as in-process defaults.
package chat

import "context"

type (
	// Retriever returns zero or more knowledge-base sentences relevant
	// to the query.
	Retriever interface {
		RetrieveContext(ctx context.Context, query string, topK int) ([]string, error)
	}

	// Answerer produces a natural-language answer from the query and
	// retrieved context.
	Answerer interface {
		Answer(ctx context.Context, query string, context []string) (string, error)
	}

	// Indexer is implemented by retrievers that maintain a local index
	// needing a rebuild when the underlying data changes.
	Indexer interface {
		Rebuild(docs []string)
	}
)
