package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const guidLength = 8

// GenerateGUID creates a short GUID with the provided prefix.
func GenerateGUID(prefix string) (string, error) {
	normalized := strings.TrimSuffix(prefix, "-")
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate guid: %w", err)
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return fmt.Sprintf("%s-%s", normalized, hex[:guidLength]), nil
}
