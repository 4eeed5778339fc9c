// Package emit is the pipeline's only exit point: it depends on feature
// and point, never on ingest, imu, or motioncomp directly, and knows
// nothing about how a sweep was produced.
package emit
