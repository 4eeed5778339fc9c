package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/scan-registration/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// It mirrors the default values that the Get* accessors below hardcode.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the runtime-tunable constants of the registration
// pipeline. Fields are pointers so a partial JSON document can override
// only the values it mentions; the Get* accessors fill in the rest.
//
// system_delay_sweeps, max_points_per_sweep and imu_ring_capacity are
// parsed and validated but not read by the pipeline, which uses the
// ingest.SystemDelaySweeps, ingest.MaxPointsPerSweep and imu.Capacity
// constants instead. scan_period_seconds sets motion-compensation timing
// only; point intensity encoding uses point.ScanPeriod.
type TuningConfig struct {
	// Sweep framing
	ScanPeriodSeconds *float64 `json:"scan_period_seconds,omitempty"`
	SystemDelaySweeps *int     `json:"system_delay_sweeps,omitempty"`
	NumScans          *int     `json:"num_scans,omitempty"`
	MaxPointsPerSweep *int     `json:"max_points_per_sweep,omitempty"`

	// IMU ring
	IMURingCapacity *int `json:"imu_ring_capacity,omitempty"`

	// Feature extraction thresholds
	CurvatureThreshold      *float64 `json:"curvature_threshold,omitempty"`
	OcclusionDepthRatio     *float64 `json:"occlusion_depth_ratio,omitempty"`
	ParallelOutlierRatio    *float64 `json:"parallel_outlier_ratio,omitempty"`
	NeighborSpreadThreshold *float64 `json:"neighbor_spread_threshold,omitempty"`
	SectorsPerScan          *int     `json:"sectors_per_scan,omitempty"`
	SharpPerSector          *int     `json:"sharp_per_sector,omitempty"`
	LessSharpPerSector      *int     `json:"less_sharp_per_sector,omitempty"`
	FlatPerSector           *int     `json:"flat_per_sector,omitempty"`

	// Downsampling
	VoxelLeafSize *float64 `json:"voxel_leaf_size,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file on disk.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	return LoadTuningConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadTuningConfigFS is LoadTuningConfig with the filesystem injected, so
// tests can load a config from an fsutil.MemoryFileSystem without touching
// disk.
func LoadTuningConfigFS(fs fsutil.FileSystem, path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fs.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fs.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are within sane bounds.
func (c *TuningConfig) Validate() error {
	if c.ScanPeriodSeconds != nil && *c.ScanPeriodSeconds <= 0 {
		return fmt.Errorf("scan_period_seconds must be positive, got %f", *c.ScanPeriodSeconds)
	}
	if c.NumScans != nil && *c.NumScans <= 0 {
		return fmt.Errorf("num_scans must be positive, got %d", *c.NumScans)
	}
	if c.IMURingCapacity != nil && *c.IMURingCapacity <= 0 {
		return fmt.Errorf("imu_ring_capacity must be positive, got %d", *c.IMURingCapacity)
	}
	if c.CurvatureThreshold != nil && *c.CurvatureThreshold < 0 {
		return fmt.Errorf("curvature_threshold must be non-negative, got %f", *c.CurvatureThreshold)
	}
	if c.SectorsPerScan != nil && *c.SectorsPerScan <= 0 {
		return fmt.Errorf("sectors_per_scan must be positive, got %d", *c.SectorsPerScan)
	}
	return nil
}

// GetScanPeriodSeconds returns the scan_period_seconds value or the default.
func (c *TuningConfig) GetScanPeriodSeconds() float64 {
	if c.ScanPeriodSeconds == nil {
		return 0.1
	}
	return *c.ScanPeriodSeconds
}

// GetSystemDelaySweeps returns the system_delay_sweeps value or the default.
func (c *TuningConfig) GetSystemDelaySweeps() int {
	if c.SystemDelaySweeps == nil {
		return 20
	}
	return *c.SystemDelaySweeps
}

// GetNumScans returns the num_scans value or the default (VLP-16).
func (c *TuningConfig) GetNumScans() int {
	if c.NumScans == nil {
		return 16
	}
	return *c.NumScans
}

// GetMaxPointsPerSweep returns the max_points_per_sweep value or the default.
func (c *TuningConfig) GetMaxPointsPerSweep() int {
	if c.MaxPointsPerSweep == nil {
		return 40000
	}
	return *c.MaxPointsPerSweep
}

// GetIMURingCapacity returns the imu_ring_capacity value or the default.
func (c *TuningConfig) GetIMURingCapacity() int {
	if c.IMURingCapacity == nil {
		return 200
	}
	return *c.IMURingCapacity
}

// GetCurvatureThreshold returns the curvature_threshold value or the default.
func (c *TuningConfig) GetCurvatureThreshold() float64 {
	if c.CurvatureThreshold == nil {
		return 0.1
	}
	return *c.CurvatureThreshold
}

// GetOcclusionDepthRatio returns the occlusion_depth_ratio value or the default.
func (c *TuningConfig) GetOcclusionDepthRatio() float64 {
	if c.OcclusionDepthRatio == nil {
		return 0.1
	}
	return *c.OcclusionDepthRatio
}

// GetParallelOutlierRatio returns the parallel_outlier_ratio value or the default.
func (c *TuningConfig) GetParallelOutlierRatio() float64 {
	if c.ParallelOutlierRatio == nil {
		return 2e-4
	}
	return *c.ParallelOutlierRatio
}

// GetNeighborSpreadThreshold returns the neighbor_spread_threshold value or the default.
func (c *TuningConfig) GetNeighborSpreadThreshold() float64 {
	if c.NeighborSpreadThreshold == nil {
		return 0.05
	}
	return *c.NeighborSpreadThreshold
}

// GetSectorsPerScan returns the sectors_per_scan value or the default.
func (c *TuningConfig) GetSectorsPerScan() int {
	if c.SectorsPerScan == nil {
		return 6
	}
	return *c.SectorsPerScan
}

// GetSharpPerSector returns the sharp_per_sector value or the default.
func (c *TuningConfig) GetSharpPerSector() int {
	if c.SharpPerSector == nil {
		return 2
	}
	return *c.SharpPerSector
}

// GetLessSharpPerSector returns the less_sharp_per_sector value or the default.
func (c *TuningConfig) GetLessSharpPerSector() int {
	if c.LessSharpPerSector == nil {
		return 20
	}
	return *c.LessSharpPerSector
}

// GetFlatPerSector returns the flat_per_sector value or the default.
func (c *TuningConfig) GetFlatPerSector() int {
	if c.FlatPerSector == nil {
		return 4
	}
	return *c.FlatPerSector
}

// GetVoxelLeafSize returns the voxel_leaf_size value or the default.
func (c *TuningConfig) GetVoxelLeafSize() float64 {
	if c.VoxelLeafSize == nil {
		return 0.2
	}
	return *c.VoxelLeafSize
}
