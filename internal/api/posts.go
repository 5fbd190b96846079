package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// FetchPosts returns the page of posts starting at startIndex. viewerID
// scopes the list when the resource is configured to.
func (c *Client) FetchPosts(ctx context.Context, viewerID string, startIndex int) ([]Post, error) {
	posts, err := fetchPage[Post](ctx, c, c.posts, startIndex, viewerID)
	if err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}
	return posts, nil
}

// DeletePost deletes a post on behalf of the acting user.
func (c *Client) DeletePost(ctx context.Context, id int, viewerID string) error {
	u := deleteURL(c.posts.DeleteURL, strconv.Itoa(id), viewerID)
	if err := c.do(ctx, http.MethodDelete, u, nil); err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	return nil
}
