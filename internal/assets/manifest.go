package assets

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed manifest.schema.json
var manifestSchemaJSON string

// ManifestEntry binds one token to a clip file, with an optional probed
// media duration.
type ManifestEntry struct {
	Token        string  `json:"token"`
	File         string  `json:"file"`
	MediaSeconds float64 `json:"media_seconds,omitempty"`
}

// Validate enforces entry invariants beyond what the schema expresses.
func (e ManifestEntry) Validate() error {
	if strings.TrimSpace(e.Token) == "" {
		return fmt.Errorf("manifest entry token is required")
	}
	if strings.TrimSpace(e.File) == "" {
		return fmt.Errorf("manifest entry file is required")
	}
	if filepath.IsAbs(e.File) || strings.Contains(e.File, "..") {
		return fmt.Errorf("manifest entry file %q must be relative to the asset directory", e.File)
	}
	if e.MediaSeconds < 0 {
		return fmt.Errorf("manifest entry media_seconds must be >=0")
	}
	return nil
}

// Manifest is an explicit token-to-clip index layered over the scanned
// directory.
type Manifest struct {
	Version string          `json:"version,omitempty"`
	Clips   []ManifestEntry `json:"clips"`
}

// Validate checks every entry and rejects duplicate tokens.
func (m Manifest) Validate() error {
	seen := map[string]struct{}{}
	for i, entry := range m.Clips {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("clip %d: %w", i, err)
		}
		key := strings.ToLower(entry.Token)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("clip %d: duplicate token %q", i, entry.Token)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ValidateManifestBytes runs both the JSON-schema check and the typed
// validators over raw manifest content.
func ValidateManifestBytes(raw []byte) (Manifest, error) {
	schema, err := compileManifestSchema()
	if err != nil {
		return Manifest{}, err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return Manifest{}, fmt.Errorf("manifest schema: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return ValidateManifestBytes(raw)
}

// ApplyManifest layers manifest entries over the scanned index. Manifest
// entries win over directory-derived ones.
func (l *Library) ApplyManifest(m Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}
	for _, entry := range m.Clips {
		clip := Clip{
			Path:         filepath.Join(l.dir, filepath.FromSlash(entry.File)),
			MediaSeconds: entry.MediaSeconds,
		}
		if r, ok := singleLetter(entry.Token); ok {
			l.letters[unicode.ToUpper(r)] = clip
			continue
		}
		l.words[strings.ToLower(entry.Token)] = clip
	}
	return nil
}

func compileManifestSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("manifest.schema.json", strings.NewReader(manifestSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add manifest schema: %w", err)
	}
	schema, err := compiler.Compile("manifest.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	return schema, nil
}
