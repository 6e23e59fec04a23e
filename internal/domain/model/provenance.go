package model

import (
	"encoding/json"
	"fmt"
)

// ImportMeta is the provenance attached to items created by an external
// importer. It is a closed union: the coordination layer switches over the
// concrete variants instead of probing string keys in an open map.
type ImportMeta interface {
	// Provider returns the stable provider tag used on the wire.
	Provider() string

	isImport()
}

// GitHubImport carries repository stats from a GitHub import.
type GitHubImport struct {
	Repo     string `json:"repo"`
	URL      string `json:"url,omitempty"`
	Language string `json:"language,omitempty"`
	Stars    int    `json:"stars"`
	Forks    int    `json:"forks"`
	Commits  int    `json:"commits,omitempty"`
}

// Provider implements ImportMeta.
func (GitHubImport) Provider() string { return "github" }
func (GitHubImport) isImport()        {}

// TryHackMeImport carries profile rank data from a TryHackMe import.
type TryHackMeImport struct {
	Username       string   `json:"username"`
	Rank           int      `json:"rank"`
	RoomsCompleted int      `json:"rooms_completed"`
	Badges         []string `json:"badges,omitempty"`
}

// Provider implements ImportMeta.
func (TryHackMeImport) Provider() string { return "tryhackme" }
func (TryHackMeImport) isImport()        {}

// GenericImport covers providers without a dedicated variant.
type GenericImport struct {
	Source      string `json:"source"`
	Ref         string `json:"ref,omitempty"`
	Description string `json:"description,omitempty"`
}

// Provider implements ImportMeta.
func (GenericImport) Provider() string { return "external" }
func (GenericImport) isImport()        {}

// importEnvelope is the persisted form of an ImportMeta value.
type importEnvelope struct {
	Provider string          `json:"provider"`
	Data     json.RawMessage `json:"data"`
}

// EncodeImportMeta serializes an ImportMeta for storage. A nil meta encodes
// to an empty string.
func EncodeImportMeta(m ImportMeta) (string, error) {
	if m == nil {
		return "", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode import meta: %w", err)
	}
	env, err := json.Marshal(importEnvelope{Provider: m.Provider(), Data: data})
	if err != nil {
		return "", fmt.Errorf("encode import envelope: %w", err)
	}
	return string(env), nil
}

// DecodeImportMeta reverses EncodeImportMeta. An empty string decodes to nil.
func DecodeImportMeta(s string) (ImportMeta, error) {
	if s == "" {
		return nil, nil
	}
	var env importEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, fmt.Errorf("decode import envelope: %w", err)
	}
	switch env.Provider {
	case "github":
		var m GitHubImport
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode github import: %w", err)
		}
		return m, nil
	case "tryhackme":
		var m TryHackMeImport
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode tryhackme import: %w", err)
		}
		return m, nil
	case "external":
		var m GenericImport
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode generic import: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("decode import envelope: unknown provider %q", env.Provider)
	}
}
