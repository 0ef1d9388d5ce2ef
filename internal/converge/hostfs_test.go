package converge

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"
)

// currentUsername returns a name lookupOwner can resolve without
// privileges.
func currentUsername(t *testing.T) string {
	t.Helper()
	u, err := user.Current()
	if err != nil {
		t.Skipf("user.Current() unavailable: %v", err)
	}
	return u.Username
}

func TestReplacePayload_WholesaleReplace(t *testing.T) {
	tmp := t.TempDir()
	bundle := filepath.Join(tmp, "bundle")
	appDir := filepath.Join(tmp, "app")

	for _, f := range []struct{ dir, name, content string }{
		{bundle, "app.py", "new entry"},
		{bundle, "config.json", "new config"},
		{appDir, "stale.py", "left over from a hand edit"},
		{appDir, "app.py", "old entry"},
	} {
		if err := os.MkdirAll(f.dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(f.dir, f.name), []byte(f.content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fs := NewHostFS()
	if err := fs.ReplacePayload(appDir, bundle, currentUsername(t), 0o755); err != nil {
		t.Fatalf("ReplacePayload() = %v", err)
	}

	entries, err := os.ReadDir(appDir)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	if len(names) != 2 || !names["app.py"] || !names["config.json"] {
		t.Errorf("app dir contains %v, want exactly the bundle files", names)
	}

	got, _ := os.ReadFile(filepath.Join(appDir, "app.py"))
	if string(got) != "new entry" {
		t.Errorf("app.py = %q, want bundle content", got)
	}
}

func TestReplacePayload_CreatesMissingAppDir(t *testing.T) {
	tmp := t.TempDir()
	bundle := filepath.Join(tmp, "bundle")
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bundle, "app.py"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	appDir := filepath.Join(tmp, "opt", "app")
	fs := NewHostFS()
	if err := fs.ReplacePayload(appDir, bundle, currentUsername(t), 0o755); err != nil {
		t.Fatalf("ReplacePayload() = %v", err)
	}
	if _, err := os.Stat(filepath.Join(appDir, "app.py")); err != nil {
		t.Errorf("payload not staged: %v", err)
	}
}

func TestEnsureTree_CreatesRootWithMode(t *testing.T) {
	root := filepath.Join(t.TempDir(), "opt", "EOS_server")

	fs := NewHostFS()
	if err := fs.EnsureTree(root, currentUsername(t), 0o755); err != nil {
		t.Fatalf("EnsureTree() = %v", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %04o, want 0755", info.Mode().Perm())
	}

	// Second call is a clean no-op.
	if err := fs.EnsureTree(root, currentUsername(t), 0o755); err != nil {
		t.Errorf("EnsureTree() second run = %v", err)
	}
}

func TestEnsureTree_UnknownOwner(t *testing.T) {
	fs := NewHostFS()
	err := fs.EnsureTree(t.TempDir(), "no-such-user-eosctl-test", 0o755)
	if err == nil {
		t.Fatal("EnsureTree() = nil, want error for unknown owner")
	}
}

func TestResetLogDir_RecreatesEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "eos.log"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewHostFS()
	if err := fs.ResetLogDir(dir, currentUsername(t)); err != nil {
		t.Fatalf("ResetLogDir() = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("log dir has %d entries, want 0", len(entries))
	}
}

func TestRemove_MissingPathIsNotError(t *testing.T) {
	fs := NewHostFS()
	if err := fs.Remove(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Errorf("Remove() = %v, want nil for missing path", err)
	}
}
