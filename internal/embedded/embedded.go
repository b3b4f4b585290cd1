// Package embedded provides build-time embedded assets: the builtin schema
// registry and the locale wordlists used for textual field synthesis.
package embedded

import (
	"embed"
)

// FS embeds the builtin schema registry yaml and the per-locale wordlists.
//
//go:embed registry/*.yaml wordlists/*.txt
var FS embed.FS

// RegistryPath is the location of the builtin schema registry inside FS.
const RegistryPath = "registry/builtin.yaml"

// WordlistPath returns the location of the wordlist for a base language code.
func WordlistPath(lang string) string {
	return "wordlists/" + lang + ".txt"
}
