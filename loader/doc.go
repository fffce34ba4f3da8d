// Package loader prepares a CPU for a run from textual inputs.
//
// Memory images are given as hex strings (for example "8014 8024 00EE")
// and registers are seeded with "vX=value" assignments. An Image collects
// both and writes them into the system and program regions of a CPU.
package loader
