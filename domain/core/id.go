package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// PanelID identifies a registered panel
type PanelID ID

func (id PanelID) String() string { return ID(id).String() }

// ParsePanelID parses a string into PanelID
func ParsePanelID(s string) (PanelID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("panel ID cannot be empty")
	}
	return PanelID(strings.ToLower(s)), nil
}
