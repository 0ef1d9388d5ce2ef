package declare

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDeclaration(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.conf")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write declaration: %v", err)
	}
	return path
}

func TestLoad_BindsRequiredKeysAndDerivesPaths(t *testing.T) {
	path := writeDeclaration(t, "SERVICE_NAME=eos\nUSER=eosrun\nPASSWORD=x\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.ServiceName != "eos" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "eos")
	}
	if cfg.RunAsUser != "eosrun" {
		t.Errorf("RunAsUser = %q, want %q", cfg.RunAsUser, "eosrun")
	}
	if cfg.Credential != "x" {
		t.Errorf("Credential = %q, want %q", cfg.Credential, "x")
	}
	if cfg.InstallRoot != "/opt/EOS_server" {
		t.Errorf("InstallRoot = %q, want /opt/EOS_server", cfg.InstallRoot)
	}
	if cfg.AppDir != "/opt/EOS_server/app" {
		t.Errorf("AppDir = %q, want /opt/EOS_server/app", cfg.AppDir)
	}
	if cfg.LogDir != "/var/log/eos" {
		t.Errorf("LogDir = %q, want /var/log/eos", cfg.LogDir)
	}
}

func TestLoad_StripsCarriageReturns(t *testing.T) {
	path := writeDeclaration(t, "SERVICE_NAME=eos\r\nUSER=eosrun\r\nPASSWORD=secret\r\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.ServiceName != "eos" {
		t.Errorf("ServiceName = %q, want CR-free %q", cfg.ServiceName, "eos")
	}
	if cfg.Credential != "secret" {
		t.Errorf("Credential = %q, want CR-free %q", cfg.Credential, "secret")
	}
}

func TestLoad_ReportsEveryMissingKey(t *testing.T) {
	path := writeDeclaration(t, "SERVICE_NAME=eos\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() = nil, want ConfigError")
	}

	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Load() error type = %T, want *ConfigError", err)
	}
	if len(cerr.Missing) != 2 {
		t.Fatalf("Missing = %v, want both USER and PASSWORD", cerr.Missing)
	}
	want := map[string]bool{KeyUser: true, KeyPassword: true}
	for _, k := range cerr.Missing {
		if !want[k] {
			t.Errorf("unexpected missing key %q", k)
		}
	}
}

func TestLoad_MissingPasswordNamedInError(t *testing.T) {
	path := writeDeclaration(t, "SERVICE_NAME=eos\nUSER=eosrun\n")

	_, err := Load(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Load() error = %v, want *ConfigError", err)
	}
	if len(cerr.Missing) != 1 || cerr.Missing[0] != KeyPassword {
		t.Errorf("Missing = %v, want [PASSWORD]", cerr.Missing)
	}
}

func TestLoad_EmptyValueCountsAsMissing(t *testing.T) {
	path := writeDeclaration(t, "SERVICE_NAME=eos\nUSER=\nPASSWORD=x\n")

	_, err := Load(path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Load() error = %v, want *ConfigError", err)
	}
	if len(cerr.Missing) != 1 || cerr.Missing[0] != KeyUser {
		t.Errorf("Missing = %v, want [USER]", cerr.Missing)
	}
}

func TestLoad_RejectsMalformedNames(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad service name", "SERVICE_NAME=eos service\nUSER=eosrun\nPASSWORD=x\n"},
		{"bad account name", "SERVICE_NAME=eos\nUSER=Eos Run\nPASSWORD=x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDeclaration(t, tt.content)
			_, err := Load(path)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Load() error = %v, want *ConfigError", err)
			}
			if len(cerr.Invalid) != 1 {
				t.Errorf("Invalid = %v, want one entry", cerr.Invalid)
			}
		})
	}
}

func TestLoad_RetainsUnknownKeys(t *testing.T) {
	path := writeDeclaration(t, "SERVICE_NAME=eos\nUSER=eosrun\nPASSWORD=x\nDB_HOST=10.0.0.5\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Extra["DB_HOST"] != "10.0.0.5" {
		t.Errorf("Extra[DB_HOST] = %q, want %q", cfg.Extra["DB_HOST"], "10.0.0.5")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.conf"))
	if err == nil {
		t.Fatal("Load() = nil, want error for missing file")
	}
}

func TestApplyRoot_RecomputesDerivedPaths(t *testing.T) {
	cfg := &ProvisioningConfig{ServiceName: "eos"}
	cfg.ApplyRoot("/srv/eos")

	if cfg.AppDir != "/srv/eos/app" {
		t.Errorf("AppDir = %q, want /srv/eos/app", cfg.AppDir)
	}
	if cfg.LogDir != "/var/log/eos" {
		t.Errorf("LogDir = %q, want /var/log/eos", cfg.LogDir)
	}
}
