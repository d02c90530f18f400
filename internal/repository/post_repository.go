package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/academic-tracker/internal/models"
	"github.com/noah-isme/academic-tracker/pkg/apiclient"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

// postPage is the wire shape of GET /posts?page=n. totalPages must be
// present; zero is only valid for an empty feed.
type postPage struct {
	Posts       []models.Post `json:"posts" validate:"required,dive"`
	TotalPages  *int          `json:"totalPages" validate:"required,gte=0"`
	CurrentPage int           `json:"currentPage,omitempty"`
}

// PostRepository talks to the /posts resource.
type PostRepository struct {
	api apiDoer
}

// NewPostRepository creates the repository.
func NewPostRepository(api apiDoer) *PostRepository {
	return &PostRepository{api: api}
}

// Page fetches one 1-based page of the feed.
func (r *PostRepository) Page(ctx context.Context, page int) (models.FeedPage, error) {
	call := apiRequest("posts.list", http.MethodGet, "/posts")
	call.Query = url.Values{"page": {strconv.Itoa(page)}}

	var body postPage
	if err := r.api.Do(ctx, call, &body); err != nil {
		return models.FeedPage{}, err
	}
	total := *body.TotalPages
	if total == 0 && len(body.Posts) > 0 {
		return models.FeedPage{}, appErrors.Clone(appErrors.ErrParse, "page has posts but reports no pages")
	}
	number := body.CurrentPage
	if number <= 0 {
		number = page
	}
	return models.FeedPage{Number: number, Items: body.Posts, TotalPages: total}, nil
}

// Get returns a single post.
func (r *PostRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.api.Do(ctx, apiRequest("posts.get", http.MethodGet, postPath(id)), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Create publishes a post.
func (r *PostRepository) Create(ctx context.Context, req models.CreatePostRequest) error {
	call := apiRequest("posts.create", http.MethodPost, "/posts")
	call.Body = req
	return r.api.Do(ctx, call, nil)
}

// Update replaces the text of a post.
func (r *PostRepository) Update(ctx context.Context, id string, req models.UpdatePostRequest) error {
	call := apiRequest("posts.update", http.MethodPut, postPath(id))
	call.Body = req
	return r.api.Do(ctx, call, nil)
}

// Delete removes a post.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.api.Do(ctx, apiRequest("posts.delete", http.MethodDelete, postPath(id)), nil)
}

func postPath(id string) string {
	return "/posts/" + url.PathEscape(id)
}

func apiRequest(operation, method, path string) apiclient.Request {
	return apiclient.Request{Operation: operation, Method: method, Path: path}
}
