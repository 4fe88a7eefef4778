package server

import (
	"bridgefeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost stores a post.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		AuthorID uint   `json:"author_id"`
		Content  string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.svc.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: req.AuthorID,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListPosts returns posts ordered by diversity score.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.svc.ListPosts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreateComment stores a comment on a post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		PostID   uint   `json:"post_id"`
		AuthorID uint   `json:"author_id"`
		Content  string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.svc.CreateComment(c.UserContext(), service.CreateCommentInput{
		PostID:   req.PostID,
		AuthorID: req.AuthorID,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments returns a post's comments ordered by diversity score. An
// unknown post has no comments.
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.svc.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}
