package standards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smukkama/aquasure-server/internal/hmpi"
)

func TestDefault(t *testing.T) {
	r := Default()

	names := r.Names()
	if len(names) != 2 || names[0] != BBI || names[1] != WHO {
		t.Fatalf("Expected [BBI WHO], got %v", names)
	}

	who, _ := r.Table(WHO)
	bbi, _ := r.Table(BBI)
	if who[hmpi.Mercury] == bbi[hmpi.Mercury] {
		t.Error("Expected WHO and BBI mercury limits to differ")
	}
}

func TestTable_Exceeds(t *testing.T) {
	who, _ := Default().Table(WHO)

	if who.Exceeds(hmpi.Lead, 0.01) {
		t.Error("Concentration equal to limit should not exceed")
	}
	if !who.Exceeds(hmpi.Lead, 0.011) {
		t.Error("Concentration above limit should exceed")
	}
	if who.Exceeds("Zinc", 100) {
		t.Error("Metal without a limit should never exceed")
	}
}

func TestRegistry_TableIsCopy(t *testing.T) {
	r := Default()
	who, _ := r.Table(WHO)
	who[hmpi.Lead] = 42

	again, _ := r.Table(WHO)
	if again[hmpi.Lead] != 0.01 {
		t.Errorf("Expected registry unchanged, got lead limit %v", again[hmpi.Lead])
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standards.yaml")
	content := `
standards:
  WHO:
    Lead: 0.005
  EPA:
    Arsenic: 0.01
    Lead: 0.015
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	who, _ := r.Table(WHO)
	if len(who) != 1 || who[hmpi.Lead] != 0.005 {
		t.Errorf("Expected WHO replaced by file table, got %v", who)
	}
	if _, ok := r.Table(BBI); !ok {
		t.Error("Expected BBI to remain from built-ins")
	}
	epa, ok := r.Table("EPA")
	if !ok || epa[hmpi.Lead] != 0.015 {
		t.Errorf("Expected EPA table from file, got %v", epa)
	}
}

func TestLoad_RejectsNonPositiveLimit(t *testing.T) {
	if _, err := Default().merge([]byte("standards:\n  WHO:\n    Lead: 0\n")); err == nil {
		t.Error("Expected error for zero limit")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(r.Names()) != 2 {
		t.Errorf("Expected built-in standards, got %v", r.Names())
	}
}
