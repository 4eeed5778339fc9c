// Package imu maintains the rolling buffer of IMU samples that the motion
// compensator consults to de-skew a sweep. It owns gravity removal and
// uniform-acceleration integration; it has no knowledge of points, sweeps,
// or features.
package imu
