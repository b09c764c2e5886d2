package occluder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"occlusion-engine/math"
)

// OBJGroup is the polygon set read from one "o" or "g" block.
type OBJGroup struct {
	Name  string
	Polys []Poly
}

// LoadOBJ reads a Wavefront .obj file. Every face becomes one polygon
// occluder, so faces are expected to be convex. Faces that are degenerate or
// exceed MaxPolyVerts are skipped with a warning.
func LoadOBJ(path string) ([]OBJGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	groups, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}
	return groups, nil
}

// ReadOBJ parses OBJ data from r. See LoadOBJ.
func ReadOBJ(r io.Reader) ([]OBJGroup, error) {
	var (
		positions []math.Vec3
		groups    []OBJGroup
		current   = OBJGroup{Name: "default"}
		lineNo    int
	)
	log := Logger()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "v":
			if len(parts) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 components", lineNo)
			}
			var xyz [3]float32
			for i := range xyz {
				v, err := strconv.ParseFloat(parts[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				xyz[i] = float32(v)
			}
			positions = append(positions, math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})

		case "f":
			verts := make([]math.Vec3, 0, len(parts)-1)
			for _, tok := range parts[1:] {
				idx, err := parseFaceIndex(tok, len(positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				verts = append(verts, positions[idx])
			}
			poly, err := NewPoly(verts)
			if err != nil {
				log.Warn("obj: skipping face", "line", lineNo, "group", current.Name, "err", err)
				continue
			}
			current.Polys = append(current.Polys, poly)

		case "o", "g":
			if len(current.Polys) > 0 {
				groups = append(groups, current)
			}
			name := "unnamed"
			if len(parts) > 1 {
				name = parts[1]
			}
			current = OBJGroup{Name: name}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(current.Polys) > 0 {
		groups = append(groups, current)
	}
	return groups, nil
}

// parseFaceIndex resolves the position part of "v", "v/vt" or "v/vt/vn",
// including negative (relative) indices.
func parseFaceIndex(tok string, count int) (int, error) {
	vs, _, _ := strings.Cut(tok, "/")
	i, err := strconv.Atoi(vs)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q: %w", tok, err)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("bad face index %q", tok)
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("face index %q out of range", tok)
	}
	return i, nil
}
