// kilntool inspects engine assets without opening a window.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/kiln/internal/config"
	"github.com/Faultbox/kiln/internal/engine/mesh"
	"github.com/Faultbox/kiln/internal/engine/skybox"
	"github.com/Faultbox/kiln/internal/engine/texture"
	"github.com/Faultbox/kiln/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "mesh":
		cmdMesh(args)
	case "skybox":
		cmdSkybox(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`kilntool - kiln asset utility

Usage:
  kilntool <command> [options]

Commands:
  mesh [-tangents] [-flipv=false] <file>  Import a .obj/.gltf/.glb and show what the engine builds
  skybox <dir>                            Check the six cubemap faces in a directory
  config [output]                         Write the default config (stdout when no output)

Examples:
  kilntool mesh assets/models/crate.obj
  kilntool skybox assets/skybox
  kilntool config kiln.yaml`)
}

func cmdMesh(args []string) {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	tangents := fs.Bool("tangents", false, "Generate tangents")
	flipV := fs.Bool("flipv", true, "Flip V texture coordinates (OBJ only)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kilntool mesh [-tangents] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	opts := formats.DefaultImportOptions()
	opts.FlipV = *flipV
	geom, err := formats.Load(path, &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Built without a device; the mesh is never uploaded.
	m := mesh.FromGeometry(nil, filepath.Base(path), geom, *tangents)

	b := geom.Bounds
	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Positions: %d\n", len(geom.Positions))
	fmt.Printf("Faces:     %d\n", len(geom.Faces))
	fmt.Printf("Vertices:  %d (after corner dedup)\n", m.VertexCount())
	fmt.Printf("Indices:   %d\n", m.IndexCount())
	fmt.Printf("Bounds:    (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Println()
	fmt.Printf("Submeshes: %d\n", m.SubmeshCount())
	for i := 0; i < m.SubmeshCount(); i++ {
		sm := m.Submesh(i)
		name := ""
		if i < len(geom.Groups) {
			name = geom.Groups[i].Name
		}
		fmt.Printf("  %-3d %-20s offset %-8d count %d\n", i, name, sm.Offset, sm.Count)
	}
}

func cmdSkybox(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kilntool skybox <dir>")
		os.Exit(1)
	}
	dir := args[0]

	failed := false
	size := -1
	for _, name := range skybox.FaceFiles {
		img, err := texture.Decode(filepath.Join(dir, name))
		if err != nil {
			fmt.Printf("  %-10s FAIL %v\n", name, err)
			failed = true
			continue
		}
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		status := "ok"
		switch {
		case w != h:
			status = "FAIL not square"
			failed = true
		case size >= 0 && w != size:
			status = fmt.Sprintf("FAIL size differs from %d", size)
			failed = true
		}
		if size < 0 {
			size = w
		}
		fmt.Printf("  %-10s %4dx%-4d %s\n", name, w, h, status)
	}
	if failed {
		os.Exit(1)
	}
}

func cmdConfig(args []string) {
	cfg := config.Default()
	if len(args) == 0 {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", args[0])
}
