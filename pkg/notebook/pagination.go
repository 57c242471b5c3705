package notebook

import (
	"context"
	"fmt"
	"iter"
)

// PageFunc fetches the page addressed by token. The first page uses "".
type PageFunc[T any] func(ctx context.Context, token string) (Page[T], error)

// Paginate exposes a token-paginated listing as a lazy sequence. Each range
// over the sequence restarts from the first page; a fetch error is yielded
// once and ends the sequence.
func Paginate[T any](ctx context.Context, fetch PageFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		token := ""
		seen := map[string]struct{}{}
		for {
			page, err := fetch(ctx, token)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
			if page.NextToken == "" {
				return
			}
			if _, dup := seen[page.NextToken]; dup {
				yield(zero, fmt.Errorf("notebook: page token %q repeated", page.NextToken))
				return
			}
			seen[page.NextToken] = struct{}{}
			token = page.NextToken
		}
	}
}

// Collect drains seq, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func Templates(ctx context.Context, backend Backend) iter.Seq2[Template, error] {
	return Paginate(ctx, backend.FindEntryTemplates)
}

func Users(ctx context.Context, backend Backend) iter.Seq2[User, error] {
	return Paginate(ctx, backend.FindUsers)
}
