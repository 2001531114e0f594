// Package buriparty provides embedded assets for the buriparty tool.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The init command copies it into a game project as
// buriparty.toml, comments and all.
package buriparty

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time. Regenerate the file with go generate ./internal/config after
// changing defaults or docs.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
