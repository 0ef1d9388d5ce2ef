package declare

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// Load parses the newline-delimited KEY=VALUE declaration at path and
// returns a validated ProvisioningConfig with derived paths applied.
// Carriage-return artifacts are stripped from every key and value before
// binding, so declarations edited on Windows load byte-identically.
func Load(path string) (*ProvisioningConfig, error) {
	raw, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("declare: read %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		values[sanitize(k)] = sanitize(v)
	}

	cfg := &ProvisioningConfig{
		ServiceName: values[KeyServiceName],
		RunAsUser:   values[KeyUser],
		Credential:  values[KeyPassword],
		Extra:       make(map[string]string),
	}
	for k, v := range values {
		switch k {
		case KeyServiceName, KeyUser, KeyPassword:
		default:
			cfg.Extra[k] = v
		}
	}

	if cerr := validate(cfg); cerr != nil {
		return nil, cerr
	}

	cfg.ApplyRoot(DefaultInstallRoot)
	return cfg, nil
}

// sanitize removes carriage returns and surrounding whitespace left by
// cross-platform line endings.
func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
}
