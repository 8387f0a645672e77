package itmarket

import "errors"

// Sentinel errors for preview assembly.
var (
	ErrEmptyDocument      = errors.New("article source cannot be empty")
	ErrInvalidFrontmatter = errors.New("invalid article header")
	ErrTemplateLoad       = errors.New("failed to load preview template")
	ErrPageRender         = errors.New("preview page rendering failed")
	ErrInternal           = errors.New("internal error")
)
