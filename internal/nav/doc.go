// Package nav builds the per-map navigation grid and answers path queries
// against it: terrain classification (water, cliffs, pinch buffers), entity
// footprint rasterization, bridge segments with toggleable passability, and
// weighted A* with corner-cut prevention, turn penalties, and line-of-sight
// smoothing. Everything is deterministic: the same inputs applied in the
// same order produce the same grid and the same paths.
package nav
