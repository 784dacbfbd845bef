// Package analysis provides spectral analysis of recorded joint telemetry.
//
// The package includes:
//
//   - [FFT]: radix-2 Cooley-Tukey transform over real samples
//   - [PowerSpectrum]: single-sided spectral magnitudes
//   - [DominantFrequency]: strongest non-DC frequency of a series
//
// Series recorded at a fixed dt rarely have power-of-two length, so
// [PadToPowerOfTwo] zero-pads them before transforming:
//
//	ps := analysis.PowerSpectrum(recorder.Positions().Series(0, physics.JointYaw))
package analysis
