package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"navlink/internal/config"
	"navlink/internal/logging"
	"navlink/internal/newtonm2"
	"navlink/internal/pps"
	"navlink/internal/receiver"
	"navlink/internal/recorder"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./navlink.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	parser := newtonm2.New(newtonm2.Config{
		ImuType:      newtonm2.ParseImuType(cfg.Receiver.ImuType),
		FrameMapping: cfg.Receiver.FrameMapping,
	}, log)

	sink := newSink(log)

	log.Info("navlinkd starting")

	if cfg.Replay.Enable {
		runReplay(ctx, cfg, parser, sink, log)
		sink.logTotals()
		return
	}

	svc := receiver.New(receiver.Config{
		Device: cfg.Receiver.Device,
		Baud:   cfg.Receiver.Baud,
	}, parser, sink.handle, log)

	if cfg.Record.Enable {
		w, err := recorder.Create(cfg.Record.Path)
		if err != nil {
			log.Fatal("recorder init failed", zap.Error(err))
		}
		defer w.Close()
		svc.SetChunkFunc(func(at time.Time, data []byte) {
			if err := w.WriteChunk(at, data); err != nil {
				log.Warn("record write failed", zap.Error(err))
			}
		})
		log.Info("recording receiver stream", zap.String("path", cfg.Record.Path))
	}

	if err := svc.Start(ctx); err != nil {
		log.Fatal("receiver start failed", zap.Error(err))
	}
	defer svc.Close()

	if cfg.PPS.Enable {
		watcher := pps.New(cfg.PPS.GPIOPin, log)
		if err := watcher.Start(); err != nil {
			log.Warn("pps watcher unavailable", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	<-ctx.Done()
	log.Info("navlinkd stopping")
	sink.logTotals()
}

func runReplay(ctx context.Context, cfg config.Config, parser *newtonm2.Parser, sink *sink, log *zap.Logger) {
	entries, err := recorder.ReadFile(cfg.Replay.Path)
	if err != nil {
		log.Fatal("capture read failed", zap.Error(err))
	}
	log.Info("replaying capture",
		zap.String("path", cfg.Replay.Path),
		zap.Int("entries", len(entries)),
		zap.Float64("speed", cfg.Replay.Speed))

	err = recorder.Play(entries, cfg.Replay.Speed, cfg.Replay.Loop, nil, func(data []byte) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		parser.SetBytes(data)
		for {
			msg := parser.Next()
			if msg.Kind == newtonm2.KindNone {
				return nil
			}
			sink.handle(msg)
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Error("replay stopped", zap.Error(err))
	}
}
