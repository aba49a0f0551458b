package environment

import (
	"strings"

	"github.com/joulebench/joulebench/internal/models"
)

// languages is the static table of supported environments. Selection is
// by the spec's language field only.
var languages = []Environment{
	C{},
	Cpp{},
	Python{},
	Rust{},
	Shell{},
}

// Lookup resolves a spec language string (any registered alias,
// case-insensitive) to its environment.
func Lookup(language string) (Environment, error) {
	key := strings.ToLower(strings.TrimSpace(language))
	for _, env := range languages {
		for _, alias := range env.Aliases() {
			if alias == key {
				return env, nil
			}
		}
	}
	return nil, models.NewHarnessError(models.ErrSpecParse, models.SpecKey{Language: language},
		"unsupported language: %s", language)
}

// Supported returns the canonical names of all registered environments.
func Supported() []string {
	names := make([]string, 0, len(languages))
	for _, env := range languages {
		names = append(names, env.Language())
	}
	return names
}
