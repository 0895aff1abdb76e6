// poseinfo inspects avatar pose files. It loads a VRoid pose export
// (local path or URL), converts it to rig convention, and prints the
// resulting bone rotations. With -model it applies the pose to a model
// and writes a WebP still.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mirrorstage/go-avatar/internal/log"
	"github.com/mirrorstage/go-avatar/pkg/pose"
	"github.com/mirrorstage/go-avatar/pkg/preview"
	"github.com/mirrorstage/go-avatar/pkg/rig"
	"github.com/mirrorstage/go-avatar/pkg/scene"
	"github.com/mirrorstage/go-avatar/pkg/vrm"
)

const loadTimeout = 30 * time.Second

func main() {
	model := flag.String("model", "", "render the pose on this model file")
	out := flag.String("out", "pose.webp", "output image path (with -model)")
	verbose := flag.Bool("v", false, "print every bone rotation")
	flag.Parse()

	log.Init("warn", "")

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: poseinfo [-model file.vrm] [-out pose.webp] [-v] <pose-file-or-url>")
		os.Exit(2)
	}
	source := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	snap, err := pose.Load(ctx, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("🎭 %s\n", snap.Name)
	fmt.Printf("Source: %s\n", snap.Source)
	fmt.Printf("Bones:  %d\n", snap.Len())

	if *verbose {
		for _, bone := range snap.Bones() {
			q, _ := snap.Get(bone)
			e := rig.QuatToEuler(q)
			fmt.Printf("  %-24s x=%+.3f y=%+.3f z=%+.3f\n", bone, e.X(), e.Y(), e.Z())
		}
	}

	if *model == "" {
		return
	}
	if err := render(snap, *model, *out); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func render(snap *pose.Snapshot, model, out string) error {
	asset := vrm.Load(model)
	fmt.Printf("Model:  %s (%s)\n", asset.Name, asset.Kind)

	if asset.Rig != nil {
		applied := 0
		for _, bone := range snap.Bones() {
			j, ok := asset.Rig.Joint(bone)
			if !ok {
				continue
			}
			q, _ := snap.Get(bone)
			j.Euler = rig.QuatToEuler(q)
			applied++
		}
		fmt.Printf("Applied: %d/%d bones\n", applied, snap.Len())
	}

	lights := scene.NewLighting(0.95, 0.55, 0.25)
	img := preview.NewRenderer(lights).Render(asset, 0)
	data, err := preview.EncodeWebP(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("🖼️  Wrote %s (%d bytes)\n", out, len(data))
	return nil
}
