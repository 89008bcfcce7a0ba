// Package art turns a recovery snapshot into a text prompt and the prompt into an image.
//
// [BuildPrompt] is pure: colour, density and form descriptors are chosen from fixed thresholds
// on the recovery score, and clauses for sleep quality, strain and HRV are appended only when
// those metrics are present. [Bridge] wires a [services.MetricsService] and a
// [services.ImageGenerator] together and optionally records results in the gallery.
package art
