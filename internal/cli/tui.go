package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careboard/internal/app"
)

// runTUI starts the interactive board. Log output goes to the configured
// log file while the program owns the terminal.
func runTUI() error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if path := e.cfg.Log.File; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := tea.LogToFile(path, "careboard")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	m := app.New(app.Deps{
		Session:           e.session,
		Notifications:     e.queue,
		Activity:          e.activityStore(),
		LoadFailurePolicy: e.policy(),
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
