package builder

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/joulebench/joulebench/internal/models"
)

// ContentHash returns a deterministic key over the spec fields that
// affect build output: language, code, dependencies, and options.
// Fields are length-prefixed so adjacent values cannot collide.
func ContentHash(spec models.WorkloadSpec) string {
	h := sha256.New()

	field := func(s string) {
		fmt.Fprintf(h, "%d:%s", len(s), s)
	}

	field(strings.ToLower(strings.TrimSpace(spec.Language)))
	field(spec.Code)

	fmt.Fprintf(h, "deps=%d:", len(spec.Dependencies))
	for _, dep := range spec.Dependencies {
		field(dep)
	}

	fmt.Fprintf(h, "opts=%d:", len(spec.Options))
	for _, opt := range spec.Options {
		field(opt)
	}

	return hex.EncodeToString(h.Sum(nil))
}
