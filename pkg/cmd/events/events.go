package events

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	presetevents "github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/state"
)

func NewCmdEvents(s *state.State) *cobra.Command {
	var (
		kinds  []string
		watch  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream preset events until interrupted",
		Long: heredoc.Doc(`
			Prints preset events as they happen. With --watch (the default for the
			file backend) the store is reloaded whenever another process changes it,
			so edits made from a second terminal show up as reloaded events.

			Examples:
			  an-presets events
			  an-presets events --kind reloaded,error --json
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := parseKinds(kinds)
			if err != nil {
				return err
			}

			w := &lockedWriter{w: cmd.OutOrStdout()}
			unsubscribe := subscribe(w, s.Notifier, selected, asJSON)
			defer unsubscribe()

			ctx := cmd.Context()
			if watch {
				if err := s.Watch(ctx); err != nil {
					if cmd.Flags().Changed("watch") {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Not watching the store: %v\n", err)
				}
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Listening for preset events, press Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "Only print these event kinds")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload the store when it changes on disk (file backend only)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per event")
	return cmd
}

func parseKinds(raw []string) ([]presetevents.Kind, error) {
	var out []presetevents.Kind
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for _, k := range presetevents.Kinds {
			if strings.EqualFold(string(k), name) {
				out = append(out, k)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown event kind %q", name)
		}
	}
	return out, nil
}

// subscribe prints events of the given kinds, or all of them, to w. The
// returned function removes the subscriptions.
func subscribe(w io.Writer, n *presetevents.Notifier, kinds []presetevents.Kind, asJSON bool) func() {
	emit := func(ev presetevents.Event) error {
		if asJSON {
			return json.NewEncoder(w).Encode(toRecord(ev))
		}
		_, err := fmt.Fprintf(w, "%s %s\n", ev.Time.Format(time.TimeOnly), colourFor(ev.Kind).Sprint(ev.String()))
		return err
	}

	if len(kinds) == 0 {
		sub := n.SubscribeAll(emit)
		return sub.Close
	}

	subs := make([]*presetevents.Subscription, 0, len(kinds))
	for _, k := range kinds {
		subs = append(subs, n.Subscribe(k, emit))
	}
	return func() {
		for _, sub := range subs {
			sub.Close()
		}
	}
}

type record struct {
	Kind     presetevents.Kind `json:"kind"`
	PresetID string            `json:"presetId,omitempty"`
	OldID    string            `json:"oldId,omitempty"`
	Key      string            `json:"key,omitempty"`
	IDs      []string          `json:"ids,omitempty"`
	Error    string            `json:"error,omitempty"`
	Time     time.Time         `json:"time"`
}

func toRecord(ev presetevents.Event) record {
	r := record{
		Kind:     ev.Kind,
		PresetID: ev.PresetID,
		OldID:    ev.OldID,
		Key:      ev.Key,
		IDs:      ev.IDs,
		Time:     ev.Time,
	}
	if ev.Err != nil {
		r.Error = ev.Err.Error()
	}
	return r
}

func colourFor(k presetevents.Kind) *color.Color {
	switch k {
	case presetevents.Error:
		return color.New(color.FgRed)
	case presetevents.Deleted, presetevents.FolderMappingRemoved, presetevents.TagMappingRemoved, presetevents.GlobalDefaultCleared:
		return color.New(color.FgYellow)
	case presetevents.Created, presetevents.ImportedBatch:
		return color.New(color.FgGreen)
	case presetevents.Reloaded:
		return color.New(color.FgCyan)
	}
	return color.New(color.Reset)
}

// lockedWriter serialises writes from handlers running on the watcher
// goroutine and the command goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
