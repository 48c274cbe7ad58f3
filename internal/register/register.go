// Package register implements the case register: the authoritative mapping
// from case stems to handler codes and case metadata. It backs reference
// recognition for bare stems and is maintained through CRUD endpoints and
// bulk CSV import.
package register

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// stemFormat is the canonical case stem shape: 1-5 digits, slash, 2-digit year.
var stemFormat = regexp.MustCompile(`^\d{1,5}/\d{2}$`)

// partySeparator splits a short title into client and opponent. The "./."
// convention is standard German legal shorthand for "versus".
const partySeparator = "./."

// Entry is one register row. Stem is unique; Handler is the canonical handler
// code. Client and Opponent are derived from ShortTitle when not set explicitly.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Stem       string    `json:"stem"`
	Handler    string    `json:"handler"`
	CaseType   string    `json:"case_type,omitempty"`
	ShortTitle string    `json:"short_title,omitempty"`
	Client     string    `json:"client,omitempty"`
	Opponent   string    `json:"opponent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpsertCommand carries the data for creating or replacing a register entry.
// Empty Client/Opponent are derived from ShortTitle.
type UpsertCommand struct {
	Stem       string `json:"stem"`
	Handler    string `json:"handler"`
	CaseType   string `json:"case_type"`
	ShortTitle string `json:"short_title"`
	Client     string `json:"client"`
	Opponent   string `json:"opponent"`
}

func (cmd *UpsertCommand) normalize(normalizeCode func(string) string) error {
	cmd.Stem = strings.TrimSpace(cmd.Stem)
	if !stemFormat.MatchString(cmd.Stem) {
		return ErrInvalidStem
	}

	cmd.Handler = normalizeCode(strings.TrimSpace(cmd.Handler))
	if cmd.Handler == "" {
		return ErrMissingHandler
	}

	cmd.CaseType = strings.TrimSpace(cmd.CaseType)
	cmd.ShortTitle = strings.TrimSpace(cmd.ShortTitle)

	if cmd.Client == "" && cmd.Opponent == "" {
		cmd.Client, cmd.Opponent = SplitParties(cmd.ShortTitle)
	}
	return nil
}

// SplitParties derives client and opponent from a short title following the
// "Client ./. Opponent" convention. A title without the separator is returned
// as the client with an empty opponent.
func SplitParties(shortTitle string) (client, opponent string) {
	before, after, found := strings.Cut(shortTitle, partySeparator)
	client = strings.TrimSpace(before)
	if found {
		opponent = strings.TrimSpace(after)
	}
	return client, opponent
}
