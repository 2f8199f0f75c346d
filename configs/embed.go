// Package configs provides the embedded project configuration template for
// memoryforge.
//
// Templates are embedded at build time via Go's //go:embed directive, so
// they're present in every distribution (source build or binary release)
// without a separate install step.
//
// Used by:
//   - cmd/memoryforge/cmd/init.go, which writes ConfigTemplate to
//     <project root>/.memory-forge/config.yaml (internal/config.ConfigRelPath)
//     the first time a project is initialized.
//
// See internal/config/config.go's Load() for the full defaults → project
// YAML → MEMORY_FORGE_* environment variable precedence this template
// participates in. To change the generated template, edit config.example.yaml
// in this directory and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the commented project configuration template written by
// `memoryforge init` to .memory-forge/config.yaml.
//
//go:embed config.example.yaml
var ConfigTemplate string
