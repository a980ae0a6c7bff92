package usecase_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sebdah/goldie/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	"github.com/secmon-lab/relayboard/pkg/domain/types"
	"github.com/secmon-lab/relayboard/pkg/usecase"
	"pgregory.net/rapid"
)

func renderAction(action *model.Action) []byte {
	return []byte(fmt.Sprintf("kind: %s\nsource: %s\ntext:\n%s\n", action.Kind, action.Source.URL, action.Update.Text))
}

func TestTranslateTrackerEvent_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	fixtures := []string{
		"card-created",
		"card-archived",
		"card-title-changed",
		"card-description-edited",
		"card-moved",
		"card-comment-added",
		"card-comment-added-from-api",
		"card-copied",
	}

	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			ev := loadTrackerEvent(t, name)
			action, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{})
			gt.NoError(t, err).Required()
			gt.NoError(t, action.Validate())
			g.Assert(t, name, renderAction(action))
		})
	}
}

func TestTranslateTrackerEvent_MissingFields(t *testing.T) {
	for _, name := range []string{
		"card-moved-missing-lists",
		"card-description-missing",
		"card-comment-missing-text",
	} {
		t.Run(name, func(t *testing.T) {
			ev := loadTrackerEvent(t, name)
			action, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{})
			gt.Value(t, action).Nil()
			gt.Error(t, err).Is(usecase.ErrValidation)
		})
	}
}

func TestTranslateTrackerEvent(t *testing.T) {
	renamed := func() *tracker.Event {
		return &tracker.Event{
			Discriminator: tracker.ParseDiscriminator("action_renamed_card"),
			CardID:        "C1",
			CardShortLink: "sh0rt",
			CardName:      "Ship v2",
			MemberText:    "Alice",
		}
	}

	t.Run("renamed card without link opens a new thread", func(t *testing.T) {
		action, err := usecase.TranslateTrackerEvent(renamed(), usecase.TrackerCorrelation{})
		gt.NoError(t, err).Required()
		gt.Value(t, action.Kind).Equal(types.ActionNewThread)
		gt.Value(t, action.Target.ID).Equal("")
		gt.Value(t, action.Target.Service).Equal(types.ServiceChat)
		gt.Value(t, action.Source.ID).Equal("C1")
		gt.Value(t, action.Source.Service).Equal(types.ServiceTracker)
		gt.Value(t, action.Source.URL).Equal("https://trello.com/c/sh0rt")
		gt.Value(t, action.Update.Text).Equal("This card has been renamed to Ship v2 by Alice")
	})

	t.Run("correlated card continues its thread", func(t *testing.T) {
		action, err := usecase.TranslateTrackerEvent(renamed(), usecase.TrackerCorrelation{
			Link: &model.Link{ChatThreadID: "1715287188.123456", TrackerCardID: "C1"},
			ThreadURL: func(threadID string) string {
				return "https://example.slack.com/archives/C0123/p" + strings.ReplaceAll(threadID, ".", "")
			},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, action.Kind).Equal(types.ActionUpdateThread)
		gt.Value(t, action.Target.ID).Equal("1715287188.123456")
		gt.Value(t, action.Target.URL).Equal("https://example.slack.com/archives/C0123/p1715287188123456")
	})

	t.Run("lookup failure is an error, not a new thread", func(t *testing.T) {
		action, err := usecase.TranslateTrackerEvent(renamed(), usecase.TrackerCorrelation{LookupErr: errBoom})
		gt.Value(t, action).Nil()
		gt.Error(t, err).Is(usecase.ErrLookup)
		gt.Error(t, err).Is(errBoom)
	})

	t.Run("unknown key is an auditable no-op", func(t *testing.T) {
		ev := renamed()
		ev.Discriminator = tracker.ParseDiscriminator("action_copy_card")
		action, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{})
		gt.NoError(t, err).Required()
		gt.Value(t, action.Kind).Equal(types.ActionNone)
		gt.String(t, action.Update.Text).Contains("Unknown key")
		gt.String(t, action.Update.Text).Contains("action_copy_card")
	})

	t.Run("activity from an integration is suppressed after rendering", func(t *testing.T) {
		ev := renamed()
		ev.AppCreatorID = "5e0000000000000000000abc"
		action, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{
			Link: &model.Link{ChatThreadID: "T1", TrackerCardID: "C1"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, action.Kind).Equal(types.ActionNone)
		gt.Value(t, action.Update.Text).Equal("This card has been renamed to Ship v2 by Alice")
	})

	t.Run("missing card ID is a validation error", func(t *testing.T) {
		ev := renamed()
		ev.CardID = ""
		_, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("missing member is a validation error", func(t *testing.T) {
		ev := renamed()
		ev.MemberText = ""
		_, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("empty description is rendered", func(t *testing.T) {
		ev := &tracker.Event{
			Discriminator:   tracker.ParseDiscriminator("action_changed_description_of_card"),
			CardID:          "C1",
			MemberText:      "Alice",
			CardDescription: strPtr(""),
		}
		action, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{})
		gt.NoError(t, err).Required()
		gt.Value(t, action.Update.Text).Equal("This card description has been updated to  by Alice")
	})
}

func TestTranslateTrackerEvent_Properties(t *testing.T) {
	keys := []string{
		"action_create_card",
		"action_archived_card",
		"action_renamed_card",
		"action_changed_description_of_card",
		"action_move_card_from_list_to_list",
		"action_comment_on_card",
	}

	genEvent := func(rt *rapid.T, key string) *tracker.Event {
		return &tracker.Event{
			Discriminator:   tracker.ParseDiscriminator(key),
			CardID:          rapid.StringMatching(`[a-z0-9]{8,24}`).Draw(rt, "card"),
			CardShortLink:   rapid.StringMatching(`[A-Za-z0-9]{8}`).Draw(rt, "short"),
			CardName:        rapid.StringMatching(`[A-Za-z0-9 ]{1,20}`).Draw(rt, "name"),
			MemberText:      rapid.StringMatching(`[A-Za-z]{1,12}`).Draw(rt, "member"),
			CardDescription: strPtr(rapid.String().Draw(rt, "desc")),
			ListBefore:      strPtr(rapid.String().Draw(rt, "before")),
			ListAfter:       strPtr(rapid.String().Draw(rt, "after")),
			CommentText:     strPtr(rapid.String().Draw(rt, "comment")),
		}
	}

	t.Run("link presence decides between new and update", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			ev := genEvent(rt, rapid.SampledFrom(keys).Draw(rt, "key"))
			var corr usecase.TrackerCorrelation
			linked := rapid.Bool().Draw(rt, "linked")
			if linked {
				corr.Link = &model.Link{ChatThreadID: "T1", TrackerCardID: ev.CardID}
			}

			action, err := usecase.TranslateTrackerEvent(ev, corr)
			if err != nil {
				rt.Fatalf("unexpected error: %v", err)
			}
			if linked && (action.Kind != types.ActionUpdateThread || action.Target.ID != "T1") {
				rt.Fatalf("linked card produced %s to %q", action.Kind, action.Target.ID)
			}
			if !linked && (action.Kind != types.ActionNewThread || action.Target.ID != "") {
				rt.Fatalf("unlinked card produced %s to %q", action.Kind, action.Target.ID)
			}
			if !strings.Contains(action.Update.Text, ev.MemberText) {
				rt.Fatalf("text %q does not name %q", action.Update.Text, ev.MemberText)
			}
			if err := action.Validate(); err != nil {
				rt.Fatalf("invalid action: %v", err)
			}
		})
	})

	t.Run("unrecognized keys never dispatch", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			key := rapid.StringMatching(`action_[a-z_]{1,30}`).Filter(func(s string) bool {
				return !tracker.ParseDiscriminator(s).IsRecognized()
			}).Draw(rt, "key")
			ev := genEvent(rt, key)

			action, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{})
			if err != nil {
				rt.Fatalf("unexpected error: %v", err)
			}
			if !action.IsNone() {
				rt.Fatalf("unknown key %q produced %s", key, action.Kind)
			}
			if action.Update.Text != "Unknown key "+key {
				rt.Fatalf("unexpected text %q", action.Update.Text)
			}
		})
	})

	t.Run("integration activity never dispatches", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			ev := genEvent(rt, rapid.SampledFrom(keys).Draw(rt, "key"))
			ev.AppCreatorID = rapid.StringMatching(`[a-f0-9]{24}`).Draw(rt, "app")

			action, err := usecase.TranslateTrackerEvent(ev, usecase.TrackerCorrelation{})
			if err != nil {
				rt.Fatalf("unexpected error: %v", err)
			}
			if !action.IsNone() {
				rt.Fatalf("integration activity produced %s", action.Kind)
			}
		})
	})
}
