package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/scan-registration/internal/fsutil"
)

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetScanPeriodSeconds() != 0.1 {
		t.Errorf("GetScanPeriodSeconds() = %f, want 0.1", cfg.GetScanPeriodSeconds())
	}
	if cfg.GetSystemDelaySweeps() != 20 {
		t.Errorf("GetSystemDelaySweeps() = %d, want 20", cfg.GetSystemDelaySweeps())
	}
	if cfg.GetNumScans() != 16 {
		t.Errorf("GetNumScans() = %d, want 16", cfg.GetNumScans())
	}
	if cfg.GetMaxPointsPerSweep() != 40000 {
		t.Errorf("GetMaxPointsPerSweep() = %d, want 40000", cfg.GetMaxPointsPerSweep())
	}
	if cfg.GetIMURingCapacity() != 200 {
		t.Errorf("GetIMURingCapacity() = %d, want 200", cfg.GetIMURingCapacity())
	}
	if cfg.GetCurvatureThreshold() != 0.1 {
		t.Errorf("GetCurvatureThreshold() = %f, want 0.1", cfg.GetCurvatureThreshold())
	}
	if cfg.GetSectorsPerScan() != 6 {
		t.Errorf("GetSectorsPerScan() = %d, want 6", cfg.GetSectorsPerScan())
	}
	if cfg.GetSharpPerSector() != 2 || cfg.GetLessSharpPerSector() != 20 || cfg.GetFlatPerSector() != 4 {
		t.Errorf("unexpected per-sector caps: sharp=%d lessSharp=%d flat=%d",
			cfg.GetSharpPerSector(), cfg.GetLessSharpPerSector(), cfg.GetFlatPerSector())
	}
	if cfg.GetVoxelLeafSize() != 0.2 {
		t.Errorf("GetVoxelLeafSize() = %f, want 0.2", cfg.GetVoxelLeafSize())
	}
}

func TestLoadTuningConfigPartialOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "curvature_threshold": 0.2,
  "sectors_per_scan": 8
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("LoadTuningConfig failed: %v", err)
	}

	if cfg.GetCurvatureThreshold() != 0.2 {
		t.Errorf("GetCurvatureThreshold() = %f, want 0.2", cfg.GetCurvatureThreshold())
	}
	if cfg.GetSectorsPerScan() != 8 {
		t.Errorf("GetSectorsPerScan() = %d, want 8", cfg.GetSectorsPerScan())
	}
	// Fields not present in JSON retain defaults.
	if cfg.GetScanPeriodSeconds() != 0.1 {
		t.Errorf("GetScanPeriodSeconds() = %f, want default 0.1", cfg.GetScanPeriodSeconds())
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.txt")
	if err := os.WriteFile(configPath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadTuningConfig(configPath); err == nil {
		t.Fatal("expected error for non-.json config path")
	}
}

func TestLoadTuningConfigFSReadsFromMemoryFileSystem(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	if err := fs.WriteFile("mem_config.json", []byte(`{"sectors_per_scan": 10}`), 0o644); err != nil {
		t.Fatalf("failed to write to memory filesystem: %v", err)
	}

	cfg, err := LoadTuningConfigFS(fs, "mem_config.json")
	if err != nil {
		t.Fatalf("LoadTuningConfigFS failed: %v", err)
	}
	if cfg.GetSectorsPerScan() != 10 {
		t.Errorf("GetSectorsPerScan() = %d, want 10", cfg.GetSectorsPerScan())
	}
}

func TestLoadTuningConfigFSRejectsOversizedFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	oversized := make([]byte, 2*1024*1024)
	if err := fs.WriteFile("big_config.json", oversized, 0o644); err != nil {
		t.Fatalf("failed to write to memory filesystem: %v", err)
	}

	if _, err := LoadTuningConfigFS(fs, "big_config.json"); err == nil {
		t.Fatal("expected error for oversized config file")
	}
}

func TestValidateRejectsNegativeCurvatureThreshold(t *testing.T) {
	cfg := EmptyTuningConfig()
	cfg.CurvatureThreshold = ptrFloat64(-1)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative curvature_threshold")
	}
}

func TestValidateRejectsNonPositiveSectorsPerScan(t *testing.T) {
	cfg := EmptyTuningConfig()
	cfg.SectorsPerScan = ptrInt(0)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for non-positive sectors_per_scan")
	}
}
