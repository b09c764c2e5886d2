//go:build !occlusion_joinedges

package occlusion

const joinEdges = false
