package domain

import "errors"

var (
	ErrNotFound         = errors.New("project not found")
	ErrForbidden        = errors.New("not allowed on this project")
	ErrUserNotFound     = errors.New("no user with this email")
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrMemberNotFound   = errors.New("member not found")
	ErrCreatorProtected = errors.New("the project creator cannot be removed or re-assigned")
)
