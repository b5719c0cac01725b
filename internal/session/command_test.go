package session

import "testing"

func TestParseCommandTeleport(t *testing.T) {
	action := parseCommand("/tp Alice")
	if action.outcome != commandTeleport {
		t.Fatalf("outcome = %v, want commandTeleport", action.outcome)
	}
	if action.target != "Alice" {
		t.Errorf("target = %q, want %q", action.target, "Alice")
	}
}

func TestParseCommandErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"no args", "/tp", "&c`tp` has not enough arguments"},
		{"too many args", "/tp Alice Bob", "&c`tp` has too many arguments"},
		{"unknown command", "/fly", "&c`fly` is not known"},
		{"empty command", "/", "&c`` is not a command"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			action := parseCommand(c.text)
			if action.outcome != commandError {
				t.Fatalf("outcome = %v, want commandError", action.outcome)
			}
			if action.reply != c.want {
				t.Errorf("reply = %q, want %q", action.reply, c.want)
			}
		})
	}
}

func TestMissingPlayerReply(t *testing.T) {
	got := missingPlayerReply("Bob")
	want := "&cCould not find player `Bob`"
	if got != want {
		t.Errorf("missingPlayerReply = %q, want %q", got, want)
	}
}

func TestFormatChat(t *testing.T) {
	got := formatChat("Alice", "hello")
	want := "&7Alice:&f hello"
	if got != want {
		t.Errorf("formatChat = %q, want %q", got, want)
	}
}

func TestFormatChatTruncatesTo64Bytes(t *testing.T) {
	long := "this message is deliberately long enough to blow past the sixty four byte wire limit for sure"
	got := formatChat("Alice", long)
	if len(got) > 64 {
		t.Errorf("len(formatChat(...)) = %d, want <= 64", len(got))
	}
}
