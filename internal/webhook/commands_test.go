package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/flemzord/tgnotify/pkg/botapi"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text, name, args string
		ok               bool
	}{
		{"/start", "start", "", true},
		{"/ChatID@my_bot", "chatid", "", true},
		{"/echo  hello world ", "echo", "hello world", true},
		{"hello", "", "", false},
		{"/", "", "", false},
		{"/@bot", "", "", false},
	}
	for _, tt := range tests {
		name, args, ok := ParseCommand(tt.text)
		if name != tt.name || args != tt.args || ok != tt.ok {
			t.Errorf("ParseCommand(%q) = %q, %q, %v; want %q, %q, %v", tt.text, name, args, ok, tt.name, tt.args, tt.ok)
		}
	}
}

func TestCommandMux(t *testing.T) {
	t.Parallel()

	mux := NewCommandMux()
	var gotArgs string
	var gotChat int64
	mux.Handle("/echo", func(_ context.Context, msg *botapi.Message, args string) error {
		gotArgs = args
		gotChat = msg.Chat.ID
		return nil
	})
	fallback := &recordingHandler{}
	mux.Fallback(fallback)

	cmd := botapi.Update{Message: &botapi.Message{Text: "/echo@bot hi", Chat: botapi.Chat{ID: 7}}}
	if err := mux.HandleUpdate(context.Background(), cmd); err != nil {
		t.Fatal(err)
	}
	if gotArgs != "hi" || gotChat != 7 {
		t.Errorf("args = %q chat = %d", gotArgs, gotChat)
	}

	for _, u := range []botapi.Update{
		{Message: &botapi.Message{Text: "plain"}},
		{Message: &botapi.Message{Text: "/unknown"}},
		{CallbackQuery: &botapi.CallbackQuery{}},
	} {
		if err := mux.HandleUpdate(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}
	if len(fallback.updates) != 3 {
		t.Errorf("fallback got %d updates, want 3", len(fallback.updates))
	}
}

func TestCommandMux_ChannelPostAndErrors(t *testing.T) {
	t.Parallel()

	mux := NewCommandMux()
	boom := errors.New("boom")
	mux.Handle("fail", func(context.Context, *botapi.Message, string) error { return boom })

	err := mux.HandleUpdate(context.Background(), botapi.Update{ChannelPost: &botapi.Message{Text: "/fail"}})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if err := mux.HandleUpdate(context.Background(), botapi.Update{}); err != nil {
		t.Errorf("empty update error = %v", err)
	}
}
