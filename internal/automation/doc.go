// Package automation holds the pure content and board logic: idea generation,
// title scoring, script outlines, release scheduling and workflow card
// transitions. Nothing here performs I/O or keeps state between calls.
package automation
