// Copyright (c) 2026 Meridia Health. All rights reserved.

// Command companion is a small end-to-end client for the preference sync
// stack: it runs the identity session and preference store against
// file-backed local state and mirrors changes to a running sync server.
//
// It scripts a realistic session — resume, sign in, edit preferences,
// sign out — and is mainly useful for exercising a local deployment of
// cmd/api.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/meridia-health/meridia/internal/localstore"
	"github.com/meridia-health/meridia/internal/platform/config"
	"github.com/meridia-health/meridia/internal/platform/constants"
	"github.com/meridia-health/meridia/internal/platform/sec"
	"github.com/meridia-health/meridia/internal/prefs"
	"github.com/meridia-health/meridia/internal/session"
	"github.com/meridia-health/meridia/pkg/pointer"
)

// roundTripDelay approximates the latency of a real directory call.
const roundTripDelay = 300 * time.Millisecond

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", "meridia-companion"))
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadCompanion()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "meridia-companion"))
		slog.SetDefault(log)
	}

	// ── 3. Local State ─────────────────────────────────────────────────────
	local, err := localstore.NewFile(cfg.StateDir)
	must(log, err, "open state directory")

	// ── 4. Identity Session ────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	directory := session.NewSimulatedDirectory(tokens, roundTripDelay)
	sessions := session.NewService(session.NewStoredCredentials(local), directory, log)

	// ── 5. Preference Store + Sync ─────────────────────────────────────────
	syncer := prefs.NewSyncer(prefs.NewHTTPMirror(cfg.SyncBaseURL, nil), log)
	syncer.Start()
	defer syncer.Close()

	store := prefs.NewStore(local, syncer, sessions, log)

	// The store follows the session: whenever the current identity changes
	// (including sign-out), it reloads the matching document.
	sessions.Subscribe(func(identity *session.Identity) {
		if identity == nil {
			store.Load("")
			return
		}
		store.Load(identity.ID)
	})

	// ── 6. Scripted Session ────────────────────────────────────────────────
	ctx := context.Background()

	sessions.Initialize(ctx)
	log.Info("session_resumed", slog.String("state", sessions.State().String()))

	if sessions.Current() == nil {
		hint, err := sessions.Login(ctx, session.DemoEmail, "demo-secret")
		must(log, err, "sign in")
		log.Info("signed_in",
			slog.String("next_route", hint),
			slog.String("identity_id", sessions.Current().ID),
		)
	}

	_, err = store.UpdatePreferences(prefs.PreferencesPatch{
		Tone:     pointer.To(prefs.ToneCalm),
		TTSSpeed: pointer.To(1.25),
	})
	must(log, err, "update preferences")

	_, err = store.UpdateReminderSettings(prefs.ReminderTogglesPatch{
		Bedtime: pointer.To(true),
	})
	must(log, err, "update reminder settings")

	_, err = store.ToggleSharingCategory(prefs.AudiencePartner, "support needs")
	must(log, err, "toggle sharing category")

	_, err = store.AddCustomReminder(prefs.CustomReminder{
		ID:      "evening-walk",
		Title:   "Evening walk",
		Time:    "19:00",
		Days:    []string{"mon", "wed", "fri"},
		Enabled: true,
	})
	must(log, err, "add custom reminder")

	document := store.Current()
	log.Info("preferences_committed",
		slog.String("tone", document.Tone),
		slog.Bool("bedtime_reminder", document.Reminders.Bedtime),
		slog.Int("custom_reminders", len(document.Reminders.Custom)),
	)

	// Drain the outbound queue before the process exits so the last edit
	// reaches the mirror.
	syncer.Close()

	log.Info("companion_done")
}

func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("companion failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
