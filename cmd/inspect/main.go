package main

import (
	"flag"
	"fmt"
	"os"

	"portal-renderer/internal/config"
	"portal-renderer/internal/mesh"
	"portal-renderer/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	sceneFile := flag.String("scene", "", "Scene file to summarize")
	resDir := flag.String("res", "", "Resource directory (default: auto-detect)")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{ResourceDir: *resDir, SceneFile: *sceneFile})

	fmt.Println("Config:")
	fmt.Printf("  Resources: %s\n", orNone(cfg.ResourceDir))
	fmt.Printf("  Meshes:    %s\n", cfg.MeshDir)
	fmt.Printf("  Textures:  %s\n", cfg.TextureDir)
	fmt.Printf("  Scene:     %s\n", orNone(cfg.SceneFile))
	fmt.Printf("  Output:    %s\n", cfg.OutputDir)
	fmt.Printf("  Frame:     %dx%d (x%d supersample), fov %.0f°\n", cfg.Width, cfg.Height, cfg.Supersample, cfg.FovDeg)
	fmt.Printf("  Workers:   %d\n", cfg.Workers)

	failed := false
	if cfg.SceneFile != "" {
		sc, err := config.LoadScene(cfg.SceneFile)
		if err != nil {
			fmt.Printf("\nScene: %v\n", err)
			failed = true
		} else {
			printScene(sc)
		}
	}

	bank := mesh.NewBank(cfg.MeshDir, nil)
	ids, err := bank.List()
	if err != nil {
		fmt.Printf("\nMeshes: %v\n", err)
		failed = true
	}
	fmt.Printf("\nMeshes (%d):\n", len(ids))
	for _, id := range ids {
		m, err := bank.Load(id)
		if err != nil {
			fmt.Printf("  %-24s error: %v\n", id, err)
			failed = true
			continue
		}
		lo, hi := m.Bounds()
		fmt.Printf("  %-24s verts=%d tris=%d texture=%q\n", id, len(m.Positions), m.TriangleCount(), m.Material.DiffuseMap)
		fmt.Printf("  %-24s BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", "",
			lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
	}

	idx := texture.BuildIndex(cfg.TextureDir)
	fmt.Printf("\nTextures (%d):\n", idx.Len())
	for _, p := range idx.Paths() {
		img, err := texture.LoadTexture(p)
		if err != nil {
			fmt.Printf("  %s: %v\n", p, err)
			failed = true
			continue
		}
		b := img.Bounds()
		fmt.Printf("  %s: %dx%d\n", p, b.Dx(), b.Dy())
	}

	if failed {
		os.Exit(1)
	}
}

func printScene(sc config.Scene) {
	fmt.Println("\nScene:")
	c := sc.Camera
	fmt.Printf("  Camera: pos=%v yaw=%.1f° pitch=%.1f°\n", c.Pos, c.Yaw, c.Pitch)

	counts := map[string]int{}
	for _, e := range sc.Entities {
		kind := e.Kind
		if kind == "" {
			kind = config.KindStatic
		}
		counts[kind]++
	}
	fmt.Printf("  Entities: %d (static %d, rotating %d, random %d)\n", len(sc.Entities),
		counts[config.KindStatic], counts[config.KindRotating], counts[config.KindRandomRotating])

	if p := sc.Portals; p != nil {
		fmt.Printf("  Portal A: pos=%v yaw=%.1f° pitch=%.1f° size=%v\n", p.A.Pos, p.A.Yaw, p.A.Pitch, p.A.Size)
		fmt.Printf("  Portal B: pos=%v yaw=%.1f° pitch=%.1f° size=%v\n", p.B.Pos, p.B.Yaw, p.B.Pitch, p.B.Size)
	} else {
		fmt.Println("  Portals: none")
	}
	for _, s := range sc.Shots {
		fmt.Printf("  Shot %-12s pos=%v yaw=%.1f° pitch=%.1f°\n", s.Name, s.Pos, s.Yaw, s.Pitch)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
