package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-tracker/internal/media"
	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
	"github.com/noah-isme/academic-tracker/pkg/pagination"
)

type postRepository interface {
	Page(ctx context.Context, page int) (models.FeedPage, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, req models.CreatePostRequest) error
	Update(ctx context.Context, id string, req models.UpdatePostRequest) error
	Delete(ctx context.Context, id string) error
}

// FeedService exposes the paged announcement feed and the admin post commands.
type FeedService struct {
	posts     postRepository
	session   *models.Session
	validator *validator.Validate
	logger    *zap.Logger
	feed      *pagination.Controller[models.Post]
}

// NewFeedService constructs a FeedService with an empty feed.
func NewFeedService(posts postRepository, session *models.Session, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	opts := []pagination.Option[models.Post]{pagination.WithLogger[models.Post](logger.Named("feed"))}
	if metrics != nil {
		opts = append(opts, pagination.WithObserver[models.Post](metrics))
	}
	return &FeedService{
		posts:     posts,
		session:   session,
		validator: validate,
		logger:    logger,
		feed:      pagination.NewController[models.Post](posts.Page, models.PostKey, opts...),
	}
}

// Load fetches the first page.
func (s *FeedService) Load(ctx context.Context) error {
	return s.feed.Load(ctx)
}

// Refresh replaces the feed with a fresh first page.
func (s *FeedService) Refresh(ctx context.Context) error {
	return s.feed.Refresh(ctx)
}

// LoadMore appends the next page when one is available and no fetch is running.
func (s *FeedService) LoadMore(ctx context.Context) (bool, error) {
	return s.feed.LoadMore(ctx)
}

// Snapshot returns the feed state for presentation.
func (s *FeedService) Snapshot() pagination.State[models.Post] {
	return s.feed.Snapshot()
}

// Close releases the feed; late results are dropped.
func (s *FeedService) Close() {
	s.feed.Close()
}

// Capabilities reports what the signed-in user may do with posts.
func (s *FeedService) Capabilities() Capabilities {
	return CapabilitiesFor(s.session.User())
}

// CreatePost picks an image from source and publishes a post. The feed is
// refreshed afterwards so the new post shows up in server order.
func (s *FeedService) CreatePost(ctx context.Context, title, description string, source media.ImageSource) error {
	if !s.Capabilities().CanCreatePost {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can publish posts")
	}
	image, err := media.PickDataURI(ctx, source)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "a valid image is required")
	}
	req := models.CreatePostRequest{Title: title, Description: description, Image: image}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title, description and image are required")
	}
	if err := s.posts.Create(ctx, req); err != nil {
		s.logger.Warn("failed to create post", zap.Error(err))
		return err
	}
	s.logger.Info("post created", zap.String("title", title))

	if err := s.feed.Refresh(ctx); err != nil {
		s.logger.Warn("feed stale after create", zap.Error(err))
	}
	return nil
}

// GetPost loads a single post, typically for the edit screen.
func (s *FeedService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.Get(ctx, id)
}

// UpdatePost edits the text of a post and patches the feed entry once the API
// accepted the change.
func (s *FeedService) UpdatePost(ctx context.Context, id string, req models.UpdatePostRequest) error {
	if !s.Capabilities().CanEditPost {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can edit posts")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title and description are required")
	}
	if err := s.posts.Update(ctx, id, req); err != nil {
		s.logger.Warn("failed to update post", zap.String("post_id", id), zap.Error(err))
		return err
	}

	for _, post := range s.feed.Snapshot().Items {
		if post.ID == id {
			post.Title = req.Title
			post.Description = req.Description
			s.feed.ReplaceLocally(post)
			break
		}
	}
	return nil
}

// RequestPostDeletion prepares the deletion of a post. The feed entry is
// removed only after the API confirmed the delete.
func (s *FeedService) RequestPostDeletion(id string) (*Confirmation, error) {
	if !s.Capabilities().CanDeletePost {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can delete posts")
	}
	return newConfirmation(id, func(ctx context.Context) error {
		if err := s.posts.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete post", zap.String("post_id", id), zap.Error(err))
			return err
		}
		s.feed.RemoveLocally(id)
		s.logger.Info("post deleted", zap.String("post_id", id))
		return nil
	}), nil
}
