package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/nhle/careboard/internal/api"
	"github.com/nhle/careboard/internal/board"
	"github.com/nhle/careboard/internal/credential"
	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/notify"
	"github.com/nhle/careboard/internal/session"
	"github.com/nhle/careboard/internal/store"
)

// IsTTY reports whether stdout is an interactive terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// env is everything a command needs, built from the config file.
type env struct {
	cfg      *model.AppConfig
	queue    *notify.Queue
	activity *store.SQLiteStore
	session  *session.Manager
}

// fanout forwards each notification to several recorders.
type fanout []notify.Recorder

func (f fanout) Record(n model.Notification) {
	for _, r := range f {
		r.Record(n)
	}
}

// printer writes notifications as they happen, for non-interactive use.
type printer struct{ w io.Writer }

func (p printer) Record(n model.Notification) {
	mark := "•"
	switch n.Type {
	case model.NotificationSuccess:
		mark = "✓"
	case model.NotificationError:
		mark = "✗"
	}
	fmt.Fprintf(p.w, "%s %s\n", mark, n.Message)
}

// setup loads configuration and wires the session store, notification
// queue and activity log. When out is non-nil every notification is also
// printed to it.
func setup(out io.Writer) (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var recorders fanout
	e := &env{cfg: cfg}

	if cfg.Activity.DBPath != "" {
		s, err := store.NewSQLiteStore(cfg.Activity.DBPath)
		if err != nil {
			log.Printf("activity log disabled: %v", err)
		} else {
			e.activity = s
			recorders = append(recorders, store.Recorder{Store: s})
		}
	}
	if out != nil {
		recorders = append(recorders, printer{w: out})
	}

	var opts []notify.Option
	if len(recorders) > 0 {
		opts = append(opts, notify.WithRecorder(recorders))
	}
	e.queue = notify.New(cfg.NotificationTTL(), opts...)

	creds, err := credential.Open(filepath.Dir(configPath))
	if err != nil {
		e.Close()
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, api.WithTimeout(cfg.Timeout()))
	e.session = session.NewManager(client, creds, e.queue)
	return e, nil
}

// activityStore returns the activity log as a store.Store, or nil when it
// is disabled.
func (e *env) activityStore() store.Store {
	if e.activity == nil {
		return nil
	}
	return e.activity
}

// policy returns the configured board load failure policy.
func (e *env) policy() board.LoadFailurePolicy {
	return board.LoadFailurePolicy(e.cfg.Board.LoadFailurePolicy)
}

// Close stops pending notification timers and closes the activity log.
func (e *env) Close() {
	if e.queue != nil {
		e.queue.Close()
	}
	if e.activity != nil {
		if err := e.activity.Close(); err != nil {
			log.Printf("closing activity log: %v", err)
		}
	}
}
