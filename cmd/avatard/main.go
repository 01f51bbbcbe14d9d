// Command avatard runs the avatar conversation runtime: it loads the avatar
// catalog, connects the chat and speech backends, drives the frame loop, and
// serves the HTTP/WebSocket API renderers talk to.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Amandubey211/AVA.AI/internal/anim"
	"github.com/Amandubey211/AVA.AI/internal/avatar"
	"github.com/Amandubey211/AVA.AI/internal/bus"
	"github.com/Amandubey211/AVA.AI/internal/chat"
	"github.com/Amandubey211/AVA.AI/internal/config"
	"github.com/Amandubey211/AVA.AI/internal/listen"
	"github.com/Amandubey211/AVA.AI/internal/logging"
	"github.com/Amandubey211/AVA.AI/internal/server"
	"github.com/Amandubey211/AVA.AI/internal/speech"
	"github.com/Amandubey211/AVA.AI/internal/state"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "avatard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File:    cfg.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := avatar.LoadCatalog(cfg.Avatar.CatalogPath, logger)
	if err != nil {
		return fmt.Errorf("load avatar catalog: %w", err)
	}
	defer catalog.Close()
	if err := catalog.Watch(); err != nil {
		logger.Warn().Err(err).Msg("Catalog hot reload unavailable")
	}

	profile := catalog.Default()
	if cfg.Avatar.DefaultID != "" {
		if p, ok := catalog.Get(cfg.Avatar.DefaultID); ok {
			profile = p
		} else {
			logger.Warn().Str("avatar", cfg.Avatar.DefaultID).Msg("Configured avatar not in catalog, using first entry")
		}
	}
	if profile == nil {
		return fmt.Errorf("avatar catalog %s is empty", cfg.Avatar.CatalogPath)
	}
	logger.Info().Str("avatar", profile.ID).Str("name", profile.Name).Msg("Active avatar")

	rig := avatar.PermissiveRig()
	if cfg.Avatar.RigPath != "" {
		rig, err = avatar.LoadRig(cfg.Avatar.RigPath)
		if err != nil {
			return fmt.Errorf("load avatar rig: %w", err)
		}
		logger.Info().Str("path", cfg.Avatar.RigPath).Int("channels", len(rig.Channels())).Msg("Avatar rig loaded")
	}

	events := bus.New()
	store := state.New(events)
	logLifecycle(events, logger)

	var synth speech.Synthesizer
	switch cfg.TTS.Provider {
	case "text":
		synth = speech.NewTextSynthesizer()
	default:
		synth = speech.NewElevenLabsSynthesizer(logger, &speech.ElevenLabsConfig{
			APIKey:       cfg.TTS.ElevenLabsKey,
			DefaultVoice: cfg.TTS.DefaultVoiceID,
			ModelID:      cfg.TTS.ModelID,
			Stability:    cfg.TTS.Stability,
			Similarity:   cfg.TTS.Similarity,
			Timeout:      cfg.TTS.Timeout,
		})
	}
	if !synth.IsAvailable() {
		logger.Warn().Str("provider", synth.Name()).Msg("TTS provider has no credentials, falling back to silent text synthesis")
		synth = speech.NewTextSynthesizer()
	}

	queue := speech.NewQueue(store, events, synth, speech.NewClockedPlayer(), logger, speech.QueueOptions{
		SynthTimeout: cfg.TTS.Timeout,
	})
	defer queue.Close()

	model, err := chat.NewGeminiClient(ctx, cfg.Chat.GeminiAPIKey, logger)
	if err != nil {
		return fmt.Errorf("init chat model: %w", err)
	}

	session := chat.NewSession(store, events, queue, model, profile, logger, chat.SessionOptions{
		ReplyTimeout: cfg.Chat.ReplyTimeout,
	})

	recognizer := listen.NewPushRecognizer()
	listener := listen.NewController(store, events, recognizer, func(text string) {
		go func() {
			if _, err := session.SendMessage(context.Background(), text); err != nil {
				logger.Warn().Err(err).Msg("Transcript message dropped")
			}
		}()
	}, logger)
	defer listener.Close()

	animator := anim.New(store, profile, rig, logger, anim.Options{})
	loop := anim.NewLoop(animator, cfg.Avatar.FrameRate, logger)
	go loop.Run(ctx)

	srv := server.New(cfg.Server, server.Deps{
		Store:      store,
		Events:     events,
		Catalog:    catalog,
		Session:    session,
		Synth:      synth,
		Listener:   listener,
		Recognizer: recognizer,
		Frames:     loop,
	}, logger)

	return srv.Run(ctx)
}

// logLifecycle mirrors runtime events into the log. Errors surface at warn,
// the rest at debug; blink edges are too chatty to log at all.
func logLifecycle(events *bus.Bus, logger zerolog.Logger) {
	l := logger.With().Str("component", "events").Logger()

	events.SubscribeMultiple([]bus.EventType{bus.EventChatError, bus.EventSpeechError}, func(e bus.Event) {
		l.Warn().Str("event", string(e.Type)).Fields(e.Data).Msg("Runtime error event")
	})
	events.SubscribeMultiple([]bus.EventType{
		bus.EventChatStatusChanged,
		bus.EventSpeakingStarted,
		bus.EventSpeakingStopped,
		bus.EventRecordingStarted,
		bus.EventRecordingStopped,
		bus.EventMuteChanged,
		bus.EventTranscript,
		bus.EventEmotionChanged,
	}, func(e bus.Event) {
		l.Debug().Str("event", string(e.Type)).Fields(e.Data).Msg("Runtime event")
	})
}
