// Package blob finds 8-connected foreground components in binarized images.
//
// Label scans a buffer once in raster order and resolves merges through a
// collapsing equivalence table, then renumbers the surviving labels densely.
// Collect turns a LabelMap into per-blob statistics, Filter drops blobs by
// size or predicate, and Counter bundles the three steps together with edge
// and image extraction. Filtering is an in-place filter that erases the
// pixels of rejected blobs.
//
// A pixel is foreground when its sample (or any of its R, G, B samples)
// is greater than the configured background threshold, which defaults to
// zero.
package blob
