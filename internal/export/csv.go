package export

import (
	"encoding/csv"
	"io"

	"github.com/d3ntaltech/calendrier/internal/model"
)

var csvHeader = []string{"date", "heure", "type", "titre", "collaborateurs", "priorite", "notes", "auteur"}

func WriteCSV(w io.Writer, events []model.Event) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, event := range events {
		if err := writer.Write([]string{
			event.Date,
			event.DisplayTime(),
			event.Category,
			event.Title,
			event.CollaboratorList(),
			event.Priority,
			event.Notes,
			event.Owner,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
