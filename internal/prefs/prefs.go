// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package prefs owns the preference document for the currently loaded
identity and keeps it complete and durable.

The document covers voice/tone, accessibility, locale, nested privacy
settings, and nested reminder settings. Multiple surfaces (onboarding,
settings, reminders, therapist sharing) mutate it through typed partial
patches; the store guarantees every mutation lands on disk before the
caller returns, and mirrors the full document to the remote service on a
best-effort basis afterwards.

Modules:

  - Document: The full preference document plus hard-coded defaults.
  - Store: Patch application, local persistence, change notification.
  - Syncer: Ordered best-effort remote mirroring.
*/
package prefs

import (
	"github.com/meridia-health/meridia/pkg/strset"
)

// # Enumerations

// Tone values accepted by the assistant voice.
const (
	ToneNurturing = "nurturing"
	ToneCalm      = "calm"
	TonePragmatic = "pragmatic"
)

// Font size values accepted by the accessibility settings.
const (
	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

// Text-to-speech rate bounds.
const (
	TTSSpeedMin = 0.5
	TTSSpeedMax = 2.0
)

// SharingAudience selects which sharing-category list an operation edits.
type SharingAudience string

const (
	AudienceTherapist SharingAudience = "therapist"
	AudiencePartner   SharingAudience = "partner"
)

// # Document

// Document is the full preference document for one identity. Field names
// follow the wire format shared with the web client.
//
// Documents are always complete: patches merge onto the last known good
// value, never replace it wholesale, so a field absent from a patch keeps
// its prior value.
type Document struct {
	VoiceEnabled     bool             `json:"voiceEnabled"`
	Tone             string           `json:"tone"`
	TTSSpeed         float64          `json:"ttsSpeed"`
	FontSize         string           `json:"fontSize"`
	HighContrast     bool             `json:"highContrast"`
	ReduceMotion     bool             `json:"reduceMotion"`
	Language         string           `json:"language"`
	Region           string           `json:"region"`
	CulturalDefaults []string         `json:"culturalDefaults"`
	PrivacySettings  PrivacySettings  `json:"privacySettings"`
	Reminders        ReminderSettings `json:"reminders"`
}

// PrivacySettings controls what the product masks and what it shares with
// a linked therapist or partner.
type PrivacySettings struct {
	SexualHealthMasked  bool     `json:"sexualHealthMasked"`
	TherapistSharing    bool     `json:"therapistSharing"`
	PartnerSharing      bool     `json:"partnerSharing"`
	TherapistCategories []string `json:"therapistCategories"`
	PartnerCategories   []string `json:"partnerCategories"`
}

// ReminderSettings holds the three named toggles plus the ordered list of
// user-defined reminders.
type ReminderSettings struct {
	SoftLog   bool             `json:"softLog"`
	Bedtime   bool             `json:"bedtime"`
	Hydration bool             `json:"hydration"`
	Custom    []CustomReminder `json:"custom"`
}

// CustomReminder is a user-defined reminder. The caller supplies the id;
// the store does not generate or deduplicate ids.
type CustomReminder struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Time    string   `json:"time"`
	Days    []string `json:"days"`
	Enabled bool     `json:"enabled"`
}

/*
DefaultDocument returns the hard-coded default preference document.

Every call returns a fresh value; the nested slices are never shared
between callers.

Returns:
  - Document: The default document
*/
func DefaultDocument() Document {
	return Document{
		VoiceEnabled:     true,
		Tone:             ToneNurturing,
		TTSSpeed:         1.0,
		FontSize:         FontMedium,
		HighContrast:     false,
		ReduceMotion:     false,
		Language:         "en",
		Region:           "US",
		CulturalDefaults: []string{},
		PrivacySettings: PrivacySettings{
			SexualHealthMasked:  true,
			TherapistSharing:    false,
			PartnerSharing:      false,
			TherapistCategories: []string{"mood", "symptoms", "remedies"},
			PartnerCategories:   []string{"mood", "energy"},
		},
		Reminders: ReminderSettings{
			SoftLog:   true,
			Bedtime:   false,
			Hydration: false,
			Custom:    []CustomReminder{},
		},
	}
}

// clone deep-copies the document so snapshots handed to callers never
// alias the store's owned value.
func (d Document) clone() Document {
	out := d
	out.CulturalDefaults = copyStrings(d.CulturalDefaults)
	out.PrivacySettings.TherapistCategories = copyStrings(d.PrivacySettings.TherapistCategories)
	out.PrivacySettings.PartnerCategories = copyStrings(d.PrivacySettings.PartnerCategories)
	out.Reminders.Custom = make([]CustomReminder, len(d.Reminders.Custom))
	for i, reminder := range d.Reminders.Custom {
		copied := reminder
		copied.Days = copyStrings(reminder.Days)
		out.Reminders.Custom[i] = copied
	}
	return out
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// # Patches

// PreferencesPatch is a sparse update of the top-level scalar fields.
// Nil fields keep their prior value. Privacy and reminder sub-objects have
// dedicated patch types and are never reachable from here.
type PreferencesPatch struct {
	VoiceEnabled     *bool
	Tone             *string
	TTSSpeed         *float64
	FontSize         *string
	HighContrast     *bool
	ReduceMotion     *bool
	Language         *string
	Region           *string
	CulturalDefaults []string
}

// PrivacyPatch is a sparse update of the nested privacy object.
type PrivacyPatch struct {
	SexualHealthMasked  *bool
	TherapistSharing    *bool
	PartnerSharing      *bool
	TherapistCategories []string
	PartnerCategories   []string
}

// ReminderTogglesPatch is a sparse update of the three reminder toggles.
// The custom-reminder list is managed through AddCustomReminder and
// RemoveCustomReminder, never through this patch.
type ReminderTogglesPatch struct {
	SoftLog   *bool
	Bedtime   *bool
	Hydration *bool
}

// apply merges the patch onto the document, overwriting exactly the fields
// the patch carries. Category lists are deduplicated preserving first-seen
// order.
func (p PreferencesPatch) apply(doc *Document) {
	if p.VoiceEnabled != nil {
		doc.VoiceEnabled = *p.VoiceEnabled
	}
	if p.Tone != nil {
		doc.Tone = *p.Tone
	}
	if p.TTSSpeed != nil {
		doc.TTSSpeed = *p.TTSSpeed
	}
	if p.FontSize != nil {
		doc.FontSize = *p.FontSize
	}
	if p.HighContrast != nil {
		doc.HighContrast = *p.HighContrast
	}
	if p.ReduceMotion != nil {
		doc.ReduceMotion = *p.ReduceMotion
	}
	if p.Language != nil {
		doc.Language = *p.Language
	}
	if p.Region != nil {
		doc.Region = *p.Region
	}
	if p.CulturalDefaults != nil {
		doc.CulturalDefaults = strset.Dedupe(p.CulturalDefaults)
	}
}

func (p PrivacyPatch) apply(privacy *PrivacySettings) {
	if p.SexualHealthMasked != nil {
		privacy.SexualHealthMasked = *p.SexualHealthMasked
	}
	if p.TherapistSharing != nil {
		privacy.TherapistSharing = *p.TherapistSharing
	}
	if p.PartnerSharing != nil {
		privacy.PartnerSharing = *p.PartnerSharing
	}
	if p.TherapistCategories != nil {
		privacy.TherapistCategories = strset.Dedupe(p.TherapistCategories)
	}
	if p.PartnerCategories != nil {
		privacy.PartnerCategories = strset.Dedupe(p.PartnerCategories)
	}
}

// toggleCategory flips membership: a present category is removed, an
// absent one is appended at the end.
func toggleCategory(list []string, category string) []string {
	if strset.Contains(list, category) {
		return strset.Remove(list, category)
	}
	return append(list, category)
}

func (p ReminderTogglesPatch) apply(reminders *ReminderSettings) {
	if p.SoftLog != nil {
		reminders.SoftLog = *p.SoftLog
	}
	if p.Bedtime != nil {
		reminders.Bedtime = *p.Bedtime
	}
	if p.Hydration != nil {
		reminders.Hydration = *p.Hydration
	}
}
