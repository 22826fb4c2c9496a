package mesh

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"portal-renderer/internal/mathutil"
)

// OBJ is a parsed Wavefront object. Material libraries are returned by
// name and resolved by the caller.
type OBJ struct {
	Name     string
	MtlLibs  []string
	Material string // last usemtl, "" if none
	Mesh     *Mesh
}

type faceCorner struct {
	v, vt, vn int // 0-based, -1 when absent
}

// ParseOBJ reads v, vt, vn and f records. Polygons are fan-triangulated,
// negative indices count back from the last element read, and faces
// without normals or UVs get a flat normal and a planar XZ mapping.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	var (
		out       OBJ
		positions []mathutil.Vec3
		uvs       []mathutil.Vec2
		normals   []mathutil.Vec3
		faces     [][3]faceCorner
	)

	sc := bufio.NewScanner(r)
	lno := 0
	for sc.Scan() {
		lno++
		args := fields(sc.Text())
		if len(args) == 0 {
			continue
		}
		cmd, args := args[0], args[1:]
		switch cmd {
		case "v":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", lno, err)
			}
			positions = append(positions, v)
		case "vt":
			if len(args) < 2 {
				return nil, fmt.Errorf("obj: line %d: vt needs 2 components", lno)
			}
			u, err1 := strconv.ParseFloat(args[0], 64)
			v, err2 := strconv.ParseFloat(args[1], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("obj: line %d: bad vt %q", lno, strings.Join(args, " "))
			}
			uvs = append(uvs, mathutil.Vec2{u, v})
		case "vn":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", lno, err)
			}
			normals = append(normals, v.Normalize())
		case "f":
			if len(args) < 3 {
				return nil, fmt.Errorf("obj: line %d: face needs at least 3 vertices", lno)
			}
			poly := make([]faceCorner, len(args))
			for i, a := range args {
				c, err := parseCorner(a, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", lno, err)
				}
				poly[i] = c
			}
			for k := 1; k+1 < len(poly); k++ {
				faces = append(faces, [3]faceCorner{poly[0], poly[k], poly[k+1]})
			}
		case "mtllib":
			if len(args) == 0 {
				return nil, fmt.Errorf("obj: line %d: mtllib without file", lno)
			}
			out.MtlLibs = append(out.MtlLibs, args...)
		case "usemtl":
			if len(args) != 1 {
				return nil, fmt.Errorf("obj: line %d: usemtl takes one name", lno)
			}
			out.Material = args[0]
		case "o":
			if len(args) > 0 {
				out.Name = args[0]
			}
		case "g", "s":
			// Groups and smoothing have no effect on a single mesh.
		default:
			return nil, fmt.Errorf("obj: line %d: unrecognized command %q", lno, cmd)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obj: read: %w", err)
	}

	out.Mesh = assemble(positions, uvs, normals, faces)
	out.Mesh.Name = out.Name
	return &out, nil
}

// assemble turns OBJ corners into one vertex per distinct (v, vt, vn)
// triple. Generated attributes are never shared.
func assemble(positions []mathutil.Vec3, uvs []mathutil.Vec2, normals []mathutil.Vec3, faces [][3]faceCorner) *Mesh {
	m := &Mesh{Material: DefaultMaterial()}
	if len(faces) == 0 {
		return m
	}

	lo, hi := (&Mesh{Positions: positions}).Bounds()
	planar := func(p mathutil.Vec3) mathutil.Vec2 {
		return mathutil.Vec2{ratio(p[0], lo[0], hi[0]), ratio(p[2], lo[2], hi[2])}
	}

	seen := make(map[faceCorner]uint32)
	for _, f := range faces {
		var flat mathutil.Vec3
		if f[0].vn < 0 || f[1].vn < 0 || f[2].vn < 0 {
			p0, p1, p2 := positions[f[0].v], positions[f[1].v], positions[f[2].v]
			flat = p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		}
		for _, c := range f {
			if c.vt >= 0 && c.vn >= 0 {
				if idx, ok := seen[c]; ok {
					m.Indices = append(m.Indices, idx)
					continue
				}
			}
			p := positions[c.v]
			n := flat
			if c.vn >= 0 {
				n = normals[c.vn]
			}
			uv := planar(p)
			if c.vt >= 0 {
				uv = uvs[c.vt]
			}
			idx := uint32(len(m.Positions))
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, n)
			m.UVs = append(m.UVs, uv)
			m.Indices = append(m.Indices, idx)
			if c.vt >= 0 && c.vn >= 0 {
				seen[c] = idx
			}
		}
	}
	return m
}

func ratio(x, lo, hi float64) float64 {
	if hi-lo < 1e-12 {
		return 0
	}
	return (x - lo) / (hi - lo)
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn".
func parseCorner(s string, nv, nvt, nvn int) (faceCorner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return faceCorner{}, fmt.Errorf("bad face vertex %q", s)
	}
	c := faceCorner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = resolveIndex(parts[0], nv); err != nil {
		return c, fmt.Errorf("face vertex %q: %w", s, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], nvt); err != nil {
			return c, fmt.Errorf("face uv %q: %w", s, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], nvn); err != nil {
			return c, fmt.Errorf("face normal %q: %w", s, err)
		}
	}
	return c, nil
}

// resolveIndex maps a 1-based or negative OBJ index onto [0, n).
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += n
	default:
		return 0, fmt.Errorf("index 0")
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index out of range (have %d)", n)
	}
	return i, nil
}

// ParseMTL reads newmtl blocks. Texture options before a map path are
// skipped; the last token is taken as the texture ID.
func ParseMTL(r io.Reader) (map[string]Material, error) {
	mats := make(map[string]Material)
	var (
		name string
		cur  Material
	)
	flush := func() {
		if name != "" {
			mats[name] = cur
		}
	}

	sc := bufio.NewScanner(r)
	lno := 0
	for sc.Scan() {
		lno++
		args := fields(sc.Text())
		if len(args) == 0 {
			continue
		}
		cmd, args := args[0], args[1:]

		if cmd != "newmtl" && name == "" {
			return nil, fmt.Errorf("mtl: line %d: %s before newmtl", lno, cmd)
		}
		var err error
		switch cmd {
		case "newmtl":
			if len(args) != 1 {
				return nil, fmt.Errorf("mtl: line %d: newmtl takes one name", lno)
			}
			flush()
			name, cur = args[0], DefaultMaterial()
		case "Ka":
			cur.Ambient, err = parseVec3(args)
		case "Kd":
			cur.Diffuse, err = parseVec3(args)
		case "Ks":
			cur.Specular, err = parseVec3(args)
		case "Ke":
			cur.Emissive, err = parseVec3(args)
		case "Ns":
			cur.Shininess, err = parseScalar(args)
		case "d":
			cur.Dissolve, err = parseScalar(args)
		case "Tr":
			var tr float64
			tr, err = parseScalar(args)
			cur.Dissolve = 1 - tr
		case "map_Kd":
			if len(args) == 0 {
				return nil, fmt.Errorf("mtl: line %d: map_Kd without texture", lno)
			}
			cur.DiffuseMap = args[len(args)-1]
		case "Ni", "illum", "Tf", "map_Ka", "map_Ks", "map_Ns", "map_d", "bump", "map_Bump", "disp":
		default:
			return nil, fmt.Errorf("mtl: line %d: unrecognized command %q", lno, cmd)
		}
		if err != nil {
			return nil, fmt.Errorf("mtl: line %d: %s: %w", lno, cmd, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mtl: read: %w", err)
	}
	flush()
	return mats, nil
}

// fields splits a line after stripping any # comment.
func fields(line string) []string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.Fields(line)
}

func parseVec3(args []string) (mathutil.Vec3, error) {
	var v mathutil.Vec3
	if len(args) < 3 {
		return v, fmt.Errorf("need 3 components, got %d", len(args))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

func parseScalar(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("need 1 value, got %d", len(args))
	}
	f, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("NaN")
	}
	return f, nil
}
