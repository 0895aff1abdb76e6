// avatard is the avatar brain daemon. It loads a model and pose,
// drives the motion loop, and streams joint frames to bodies over
// websocket and WebRTC.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mirrorstage/go-avatar/internal/config"
	"github.com/mirrorstage/go-avatar/internal/log"
	"github.com/mirrorstage/go-avatar/pkg/avatar"
	"github.com/mirrorstage/go-avatar/pkg/hub"
	"github.com/mirrorstage/go-avatar/pkg/motion"
	"github.com/mirrorstage/go-avatar/pkg/pose"
	"github.com/mirrorstage/go-avatar/pkg/preview"
	"github.com/mirrorstage/go-avatar/pkg/rtc"
	"github.com/mirrorstage/go-avatar/pkg/scene"
	"github.com/mirrorstage/go-avatar/pkg/speech"
	"github.com/mirrorstage/go-avatar/pkg/vrm"
	"github.com/mirrorstage/go-avatar/pkg/web"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	modelPath := flag.String("model", "", "Model file (overrides config)")
	posePath := flag.String("pose", "", "Initial pose file or URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Config error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *modelPath != "" {
		cfg.Avatar.ModelPath = *modelPath
	}
	if *posePath != "" {
		cfg.Avatar.PosePath = *posePath
	}

	log.Init(cfg.Log.Level, cfg.Log.Format)

	fmt.Println("🧠 go-avatar brain")
	fmt.Printf("   Listen: %s\n", cfg.Server.Addr)
	fmt.Printf("   Frame rate: %d Hz\n", cfg.Avatar.FrameRate)
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Model loading never fails hard; the asset falls back down the
	// rigged -> mesh -> placeholder chain.
	asset := vrm.Load(cfg.Avatar.ModelPath)
	fmt.Printf("📦 Model: %s (%s)\n", asset.Name, asset.Kind)

	params := motion.Params{
		BreathingIntensity: cfg.Motion.BreathingIntensity,
		BreathingSpeed:     cfg.Motion.BreathingSpeed,
		SwayIntensity:      cfg.Motion.SwayIntensity,
		SwaySpeed:          cfg.Motion.SwaySpeed,
	}
	av := avatar.New(asset, params)
	av.Inputs().SetMotionScale(cfg.Motion.Scale)

	lights := scene.NewLighting(cfg.Lighting.Directional, cfg.Lighting.Ambient, cfg.Lighting.Rim)
	lights.SetScale(cfg.Lighting.Scale)
	view := scene.NewViewport()
	view.Resize(cfg.Viewport.Width, cfg.Viewport.Height)

	registry := pose.NewRegistry()
	if cfg.Avatar.PoseDir != "" {
		if n, err := registry.LoadDirectory(ctx, cfg.Avatar.PoseDir); err == nil && n > 0 {
			fmt.Printf("🎭 Poses: %d from %s\n", n, cfg.Avatar.PoseDir)
		}
	}
	if cfg.Avatar.PosePath != "" {
		snap, err := pose.Load(ctx, cfg.Avatar.PosePath)
		if err != nil {
			log.Warn("initial pose unavailable", "source", cfg.Avatar.PosePath, "error", err)
		} else {
			registry.Register(snap)
			av.Inputs().QueuePose(snap)
			fmt.Printf("🎭 Initial pose: %s (%d bones)\n", snap.Name, snap.Len())
		}
	}

	frames := hub.New("frames")
	previews := hub.New("previews")
	go frames.Run(ctx)
	go previews.Run(ctx)

	var publisher *rtc.Publisher
	if cfg.RTC.Enabled {
		publisher = rtc.NewPublisher(cfg.RTC.STUNServers)
		defer publisher.Close()
	}

	var wobbler *speech.Wobbler
	var decoder *speech.Decoder
	if cfg.Speech.Enabled {
		wobbler = speech.NewWobbler()
		av.SetSecondary(wobbler.Offset)
		if dec, err := speech.NewDecoder(cfg.Speech.SampleRate, cfg.Speech.Channels); err != nil {
			log.Warn("opus decoder unavailable, pcm only", "error", err)
		} else {
			decoder = dec
		}
		fmt.Println("🎤 Speech wobble enabled")
	}

	// Voice over a WebRTC track feeds the same wobbler. Opus on the
	// wire is always 48kHz stereo regardless of the encoded source.
	if publisher != nil && wobbler != nil {
		if dec, err := speech.NewDecoder(48000, 2); err != nil {
			log.Warn("rtc audio decoder unavailable", "error", err)
		} else {
			publisher.SetAudioSink(func(packet []byte) {
				pcm, err := dec.Decode(packet)
				if err != nil {
					return
				}
				wobbler.Feed(pcm, dec.SampleRate())
			})
		}
	}

	var renderer *preview.Renderer
	previewEvery := 0
	if cfg.Avatar.PreviewRate > 0 {
		renderer = preview.NewRenderer(lights)
		previewEvery = cfg.Avatar.FrameRate / cfg.Avatar.PreviewRate
		if previewEvery < 1 {
			previewEvery = 1
		}
	}

	loop := avatar.NewLoop(av, frames, avatar.LoopOptions{
		FrameRate:    cfg.Avatar.FrameRate,
		PreviewEvery: previewEvery,
		Previews:     previews,
		Publisher:    publisher,
		Renderer:     renderer,
		Lights:       lights,
		Viewport:     view,
	})
	go loop.Run(ctx)

	if cfg.Avatar.WatchPose && cfg.Avatar.PosePath != "" && !pose.IsURL(cfg.Avatar.PosePath) {
		watchPose(ctx, cfg.Avatar.PosePath, registry, av)
	}

	server := web.NewServer(cfg.Server.Addr, web.Deps{
		Loop:      loop,
		Registry:  registry,
		Lights:    lights,
		Viewport:  view,
		Frames:    frames,
		Previews:  previews,
		Publisher: publisher,
		Wobbler:   wobbler,
		Decoder:   decoder,
		StaticDir: cfg.Server.StaticDir,
	})
	go func() {
		<-ctx.Done()
		fmt.Println("\n👋 Shutting down...")
		server.Shutdown()
	}()

	fmt.Println("✨ Streaming frames, Ctrl+C to stop")
	if err := server.Start(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// watchPose hot-reloads the active pose file and queues each new
// version for the next frame.
func watchPose(ctx context.Context, path string, registry *pose.Registry, av *avatar.Avatar) {
	watcher, err := pose.WatchFile(path)
	if err != nil {
		log.Warn("pose watch unavailable", "path", path, "error", err)
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case changed, ok := <-watcher.Events:
				if !ok {
					return
				}
				snap, err := pose.Load(ctx, changed)
				if err != nil {
					log.Warn("pose reload failed", "path", changed, "error", err)
					continue
				}
				registry.Register(snap)
				av.Inputs().QueuePose(snap)
				log.Info("pose reloaded", "pose", snap.Name, "bones", snap.Len())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("pose watcher error", "error", err)
			}
		}
	}()
	fmt.Printf("👀 Watching pose: %s\n", path)
}
