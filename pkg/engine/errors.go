package engine

import "errors"

// Intent rejections. Every intent that is ignored returns one of these,
// wrapped with context; test with errors.Is.
var (
	ErrWrongScene         = errors.New("intent not valid in the current scene")
	ErrNodeLocked         = errors.New("map node is locked")
	ErrNotMapNode         = errors.New("scene is not a map node")
	ErrUnknownScene       = errors.New("unknown scene")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadyOwned       = errors.New("item already owned")
	ErrNotOwned           = errors.New("item not owned")
	ErrUnknownItem        = errors.New("unknown item")
	ErrUnknownCharacter   = errors.New("unknown character")
	ErrModalLocked        = errors.New("modal only opens from the script")
	ErrUnknownModal       = errors.New("unknown modal")
	ErrModalClosed        = errors.New("modal is not open")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidOption      = errors.New("invalid option")
	ErrGated              = errors.New("line waits for an interaction")
	ErrEndOfScript        = errors.New("script has no continuation")
	ErrDexLocked          = errors.New("encyclopedia is locked")
	ErrClosed             = errors.New("engine closed")
)

// ErrBadIntent marks an Intent that names no operation or lacks a required
// argument.
var ErrBadIntent = errors.New("malformed intent")
