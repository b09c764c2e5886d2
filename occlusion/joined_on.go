//go:build occlusion_joinedges

package occlusion

// joinEdges lets the polygon query combine two polygons across a shared edge.
const joinEdges = true
