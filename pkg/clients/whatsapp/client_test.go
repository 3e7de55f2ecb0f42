package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mamadbah2/erp-avicola/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.WhatsAppConfig{
		BaseURL:       server.URL,
		APIVersion:    "v20.0",
		AccessToken:   "token",
		PhoneNumberID: "555",
	})
}

func TestSendTextMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v20.0/555/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var msg textMessage
		json.NewDecoder(r.Body).Decode(&msg)
		if msg.To != "5215550000000" || msg.Text.Body != "hola" || msg.MessagingProduct != "whatsapp" {
			t.Errorf("unexpected payload %+v", msg)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "5215550000000", Body: "hola"})
	if err != nil {
		t.Fatalf("SendTextMessage: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].ID != "wamid.1" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSendTextMessageTruncatesOnRuneBoundary(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var msg textMessage
		json.NewDecoder(r.Body).Decode(&msg)
		got = msg.Text.Body
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.2"}]}`))
	})

	// "ñ" is two bytes, so a byte cut at the limit would land mid-rune.
	long := "a" + strings.Repeat("ñ", maxBodyLength)
	if _, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: long}); err != nil {
		t.Fatalf("SendTextMessage: %v", err)
	}
	if !utf8.ValidString(got) {
		t.Fatal("expected valid UTF-8 body")
	}
	if n := utf8.RuneCountInString(got); n != maxBodyLength {
		t.Errorf("expected %d characters, got %d", maxBodyLength, n)
	}
	if !strings.HasSuffix(got, "ñ") {
		t.Errorf("expected body to end on a whole rune, got %q", got[len(got)-4:])
	}

	short := "Resumen del día 🐔"
	if truncateRunes(short, maxBodyLength) != short {
		t.Error("expected short body unchanged")
	}
}

func TestSendTextMessageAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "1", Body: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Detail.Code != 190 {
		t.Errorf("unexpected error %+v", apiErr)
	}
}
