// Package ui holds the terminal styles used by the healthart CLI.
//
// [Styles] colors headers, status lines and hints; [Palette.Band] colors a recovery score
// green, amber or red using the same thresholds as the art prompt.
package ui
