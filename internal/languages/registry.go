package languages

import (
	"fmt"
	"strings"

	"gitlab.com/codearena-2026.net/internal/domain"
)

// catalog is the static language table. Remote IDs follow the remote judging
// service's numbering. Compile/run commands use {src} and {bin} placeholders,
// resolved by the sandbox against the working directory.
var catalog = []domain.SupportedLanguage{
	{
		Name:          "c",
		Extension:     ".c",
		RemoteID:      50,
		SourceFile:    "main.c",
		CompileCmd:    "gcc -O2 -o {bin} {src}",
		RunCmd:        "./{bin}",
		Image:         "gcc:13",
		TimeLimitSec:  2,
		MemoryLimitMB: 128,
	},
	{
		Name:          "cpp",
		Extension:     ".cpp",
		RemoteID:      54,
		SourceFile:    "main.cpp",
		CompileCmd:    "g++ -O2 -std=c++17 -o {bin} {src}",
		RunCmd:        "./{bin}",
		Image:         "gcc:13",
		TimeLimitSec:  2,
		MemoryLimitMB: 128,
	},
	{
		Name:          "java",
		Extension:     ".java",
		RemoteID:      62,
		SourceFile:    "Main.java",
		CompileCmd:    "javac {src}",
		RunCmd:        "java Main",
		Image:         "eclipse-temurin:21",
		TimeLimitSec:  4,
		MemoryLimitMB: 256,
	},
	{
		Name:          "python",
		Extension:     ".py",
		RemoteID:      71,
		SourceFile:    "main.py",
		RunCmd:        "python3 {src}",
		Image:         "python:3.12-alpine",
		TimeLimitSec:  5,
		MemoryLimitMB: 128,
	},
	{
		Name:          "javascript",
		Extension:     ".js",
		RemoteID:      63,
		SourceFile:    "main.js",
		RunCmd:        "node {src}",
		Image:         "node:22-alpine",
		TimeLimitSec:  5,
		MemoryLimitMB: 128,
	},
	{
		Name:          "go",
		Extension:     ".go",
		RemoteID:      60,
		SourceFile:    "main.go",
		CompileCmd:    "go build -o {bin} {src}",
		RunCmd:        "./{bin}",
		Image:         "golang:1.23-alpine",
		TimeLimitSec:  3,
		MemoryLimitMB: 256,
	},
}

var (
	byName      = make(map[string]*domain.SupportedLanguage, len(catalog))
	byExtension = make(map[string]*domain.SupportedLanguage, len(catalog))
)

func init() {
	for i := range catalog {
		lang := &catalog[i]
		byName[lang.Name] = lang
		byExtension[lang.Extension] = lang
	}
}

// Get looks a language up by name (case-insensitive)
func Get(name string) (*domain.SupportedLanguage, error) {
	lang, ok := byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("language '%s' is not supported", name)
	}
	return lang, nil
}

// GetByExtension looks a language up by source file extension, dot included
func GetByExtension(ext string) (*domain.SupportedLanguage, error) {
	lang, ok := byExtension[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("no language registered for extension '%s'", ext)
	}
	return lang, nil
}

// IsSupported reports whether a language name resolves to a catalog entry
func IsSupported(name string) bool {
	_, ok := byName[strings.ToLower(name)]
	return ok
}

// Names returns the names of all supported languages
func Names() []string {
	names := make([]string, 0, len(catalog))
	for i := range catalog {
		names = append(names, catalog[i].Name)
	}
	return names
}
