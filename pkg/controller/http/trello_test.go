package http_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/relayboard/pkg/service/trello"
	"github.com/secmon-lab/relayboard/pkg/usecase"
)

func trelloRequest(srv http.Handler, path string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(trello.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestTrelloProbe(t *testing.T) {
	srv := newTestServer(&fakeRelay{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/hooks/trello/team-a", nil))
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/hooks/trello/nobody", nil))
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

func TestTrelloWebhook(t *testing.T) {
	body := readTestdata(t, "card-created.json")
	signature := trello.Sign(testTrelloSecret, testCallbackURL, body)

	t.Run("signed delivery is relayed", func(t *testing.T) {
		relay := &fakeRelay{}
		rec := trelloRequest(newTestServer(relay), "/hooks/trello/team-a", body, signature)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		events := relay.TrackerEvents()
		gt.Array(t, events).Length(1)
		gt.Value(t, events[0].tenantID).Equal("team-a")
		gt.Value(t, events[0].event.CardID).Equal("abc64ds5ad45s6161d")
	})

	t.Run("bad signature is 401", func(t *testing.T) {
		relay := &fakeRelay{}
		rec := trelloRequest(newTestServer(relay), "/hooks/trello/team-a", body, trello.Sign("other", testCallbackURL, body))
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Array(t, relay.TrackerEvents()).Length(0)
	})

	t.Run("missing signature is 401", func(t *testing.T) {
		relay := &fakeRelay{}
		rec := trelloRequest(newTestServer(relay), "/hooks/trello/team-a", body, "")
		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("account without secret is not verified", func(t *testing.T) {
		relay := &fakeRelay{}
		rec := trelloRequest(newTestServer(relay), "/hooks/trello/unsigned", body, "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, relay.TrackerEvents()).Length(1)
	})

	t.Run("unknown account is 404", func(t *testing.T) {
		relay := &fakeRelay{}
		rec := trelloRequest(newTestServer(relay), "/hooks/trello/nobody", body, signature)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("schema violation is 400", func(t *testing.T) {
		relay := &fakeRelay{}
		bad := []byte(`{"action":{}}`)
		rec := trelloRequest(newTestServer(relay), "/hooks/trello/team-a", bad, trello.Sign(testTrelloSecret, testCallbackURL, bad))
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Array(t, relay.TrackerEvents()).Length(0)
	})

	t.Run("lookup failure is 503", func(t *testing.T) {
		relay := &fakeRelay{err: goerr.Wrap(usecase.ErrLookup, "db down")}
		rec := trelloRequest(newTestServer(relay), "/hooks/trello/team-a", body, signature)
		gt.Number(t, rec.Code).Equal(http.StatusServiceUnavailable)
	})

	t.Run("validation failure is 400", func(t *testing.T) {
		relay := &fakeRelay{err: goerr.Wrap(usecase.ErrValidation, "missing lists")}
		missing := readTestdata(t, "card-moved-missing-lists.json")
		rec := trelloRequest(newTestServer(relay), "/hooks/trello/team-a", missing, trello.Sign(testTrelloSecret, testCallbackURL, missing))
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})
}
