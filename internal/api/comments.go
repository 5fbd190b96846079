package api

import (
	"context"
	"fmt"
	"net/http"
)

// FetchComments returns the page of comments starting at startIndex.
func (c *Client) FetchComments(ctx context.Context, startIndex int) ([]Comment, error) {
	comments, err := fetchPage[Comment](ctx, c, c.comments, startIndex, "")
	if err != nil {
		return nil, fmt.Errorf("fetching comments: %w", err)
	}
	return comments, nil
}

// DeleteComment deletes a comment by id.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, deleteURL(c.comments.DeleteURL, id, ""), nil); err != nil {
		return fmt.Errorf("deleting comment %s: %w", id, err)
	}
	return nil
}
