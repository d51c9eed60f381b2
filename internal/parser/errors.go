package parser

import (
	"errors"
	"fmt"

	"github.com/cn-address-parser/internal/gazetteer"
)

// ErrUnresolved được wrap bởi ResolutionError
var ErrUnresolved = errors.New("administrative name not resolved")

// ErrNilDataset khi build parser với dataset nil
var ErrNilDataset = errors.New("parser: nil dataset")

// ResolutionError: Normalize không resolve được tên ở một cấp (policy strict)
type ResolutionError struct {
	Level gazetteer.Level
	Input string
	// Parent tên đầy đủ của cấp cha dùng làm scope, rỗng nếu không scope
	Parent string
}

func (e *ResolutionError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("parser: %s %q not found under %q", e.Level, e.Input, e.Parent)
	}
	return fmt.Sprintf("parser: %s %q not found", e.Level, e.Input)
}

func (e *ResolutionError) Unwrap() error { return ErrUnresolved }
