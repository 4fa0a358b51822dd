package experience

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// LoadPool loads an experience pool from a JSON file and normalizes it.
// The returned pool is ready to treat as immutable for the process lifetime.
func LoadPool(path string) (*types.ExperiencePool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}

	var pool types.ExperiencePool
	if err := json.Unmarshal(content, &pool); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal JSON",
			Cause:   err,
		}
	}

	if err := NormalizePool(&pool); err != nil {
		return nil, err
	}

	return &pool, nil
}
