package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrCategoryNotFound indicates that category was not found
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCategoryAlreadyExists indicates that category with this name already exists
	ErrCategoryAlreadyExists = errors.New("category already exists")

	// ErrCategoryInUse indicates that category still has posts
	ErrCategoryInUse = errors.New("category has posts")

	// ErrTagNotFound indicates that tag was not found
	ErrTagNotFound = errors.New("tag not found")

	// ErrTagAlreadyExists indicates that tag with this name already exists
	ErrTagAlreadyExists = errors.New("tag already exists")

	// ErrTagInUse indicates that tag is still attached to posts
	ErrTagInUse = errors.New("tag has posts")

	// ErrPostNotFound indicates that post was not found
	ErrPostNotFound = errors.New("post not found")
)
