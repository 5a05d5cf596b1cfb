package export

import (
	"fmt"
	"io"
	"time"

	"github.com/username/year-dots/internal/daystate"
)

// JSON writes state in the store's canonical file layout
func JSON(w io.Writer, state *daystate.DayState, savedAt time.Time) error {
	data, err := daystate.EncodeJSON(state, savedAt)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write json export: %w", err)
	}
	return nil
}
