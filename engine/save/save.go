// Package save implements the save-file envelope around a serialized game
// state, and the stores that hold save slots.
package save

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nathoo/questvars/engine/state"
	"github.com/nathoo/questvars/types"
)

// FormatVersion is written into every save. Decode rejects newer formats.
const FormatVersion = 1

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Format  int                `json:"format"`
	Version string             `json:"version"`
	Game    string             `json:"game"`
	SavedAt time.Time          `json:"saved_at"`
	State   json.RawMessage    `json:"state"`
	Legacy  *state.LegacyStore `json:"legacy"`
}

// Encode serializes the game state, tree and legacy store together, tagged
// with the game it belongs to.
func Encode(s *state.GameState, game types.GameDef) ([]byte, error) {
	tree, err := s.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	data := SaveData{
		Format:  FormatVersion,
		Version: game.Version,
		Game:    game.Title,
		SavedAt: time.Now().UTC(),
		State:   tree,
		Legacy:  s.Legacy,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Decode deserializes JSON bytes into SaveData.
func Decode(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	if sd.Format > FormatVersion {
		return nil, fmt.Errorf("save format %d is newer than supported %d", sd.Format, FormatVersion)
	}
	// Older saves may carry no tree or no legacy section.
	if len(sd.State) == 0 {
		sd.State = json.RawMessage(`{}`)
	}
	if sd.Legacy == nil {
		sd.Legacy = &state.LegacyStore{}
	}
	return &sd, nil
}

// Apply replaces the contents of s with the save. Listeners are notified
// once. On error s is left unchanged.
func Apply(s *state.GameState, sd *SaveData) error {
	var err error
	s.Batch(func() {
		if err = s.FromJSON(sd.State); err != nil {
			return
		}
		s.Legacy.Restore(sd.Legacy)
	})
	return err
}
