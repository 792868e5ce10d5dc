package languages

import "testing"

func TestGet(t *testing.T) {
	lang, err := Get("python")
	if err != nil {
		t.Fatalf("Get(python) returned error: %v", err)
	}
	if lang.RemoteID != 71 {
		t.Errorf("python remote id = %d, want 71", lang.RemoteID)
	}
	if lang.CompileCmd != "" {
		t.Errorf("python should have no compile step, got %q", lang.CompileCmd)
	}

	if _, err := Get("brainfuck"); err == nil {
		t.Fatal("Get(brainfuck) should fail")
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	lang, err := Get("Python")
	if err != nil {
		t.Fatalf("Get(Python) returned error: %v", err)
	}
	if lang.Name != "python" {
		t.Errorf("resolved name = %q, want python", lang.Name)
	}
}

func TestGetByExtension(t *testing.T) {
	lang, err := GetByExtension(".cpp")
	if err != nil {
		t.Fatalf("GetByExtension(.cpp) returned error: %v", err)
	}
	if lang.Name != "cpp" {
		t.Errorf("resolved name = %q, want cpp", lang.Name)
	}

	if _, err := GetByExtension(".exe"); err == nil {
		t.Fatal("GetByExtension(.exe) should fail")
	}
}

func TestIsSupported(t *testing.T) {
	for _, name := range Names() {
		if !IsSupported(name) {
			t.Errorf("IsSupported(%q) = false for catalog entry", name)
		}
	}
	if IsSupported("cobol") {
		t.Error("IsSupported(cobol) = true")
	}
}

func TestDefaultsArePositive(t *testing.T) {
	for _, name := range Names() {
		lang, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if lang.TimeLimitSec <= 0 || lang.MemoryLimitMB <= 0 {
			t.Errorf("%s has non-positive default limits: %d s / %d MB", name, lang.TimeLimitSec, lang.MemoryLimitMB)
		}
		if lang.RunCmd == "" {
			t.Errorf("%s has no run command", name)
		}
	}
}
