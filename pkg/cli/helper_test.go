package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
)

const testAccounts = `
[[account]]
id = "team-a"
name = "Team A"

[account.slack]
channel_id = "C0123456"
bot_token = "xoxb-test"
signing_secret = "slack-secret"

[account.trello]
api_key = "trello-key"
api_token = "trello-token"
callback_url = "https://relay.example.com/hooks/trello/team-a"
board_id = "board-a"

[[account]]
id = "team-b"

[account.slack]
channel_id = "C0999999"
bot_token = "xoxb-test-b"

[account.trello]
api_key = "trello-key-b"
api_token = "trello-token-b"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}
