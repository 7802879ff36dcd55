package templates

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/flowprep/internal/domain/config"
)

func TestRenderConfig(t *testing.T) {
	out, err := RenderConfig(ConfigData{
		Profile:     "quantum-lab",
		InstallPath: "~/.flowprep",
	})
	if err != nil {
		t.Fatalf("RenderConfig() error = %v", err)
	}

	if !strings.Contains(out, "profile: quantum-lab") {
		t.Errorf("rendered config missing profile:\n%s", out)
	}
	if !strings.Contains(out, "install_path: ~/.flowprep") {
		t.Errorf("rendered config missing install_path:\n%s", out)
	}
}

// The starter config must parse and validate after defaulting, so a
// fresh 'flowprep init' output is immediately usable.
func TestRenderConfig_ParsesAndValidates(t *testing.T) {
	out, err := RenderConfig(ConfigData{
		Profile:     "quantum-lab",
		InstallPath: "/srv/flowprep",
	})
	if err != nil {
		t.Fatalf("RenderConfig() error = %v", err)
	}

	cfg, err := config.Parse([]byte(out))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if cfg.Database.Name != "quantum-lab" {
		t.Errorf("Database.Name = %q, want profile default", cfg.Database.Name)
	}
}
