package ports

import "context"

// ListPage is one page of an object listing.
type ListPage struct {
	Keys        []string
	IsTruncated bool
	NextToken   string
}

type ObjectListerPort interface {
	// List returns the page of keys under prefix that starts at
	// continuationToken; an empty token asks for the first page.
	List(ctx context.Context, prefix, continuationToken string) (ListPage, error)
}
