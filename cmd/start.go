package cmd

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/state"
)

var startForce bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin a new recording session",
	Long: `Begin a new recording session with a fresh session id.

Touched files and baselines from the previous session are discarded. The
entry counter keeps counting so entry directories never collide.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := ws.state.Load()
		if err != nil {
			return err
		}
		if len(st.TouchedFiles) > 0 && !startForce {
			return fmt.Errorf("session already in progress (%s, %d touched files); use --force to start over",
				st.SessionID, len(st.TouchedFiles))
		}

		removed, err := ws.snaps.Clear()
		if err != nil {
			return err
		}

		st.SessionID = uuid.NewString()
		st.TouchedFiles = []string{}
		st.LastUserMessageID = ""
		st.LastRecordedMessageID = ""
		st.LastDiffHash = ""
		if err := ws.state.Save(st); err != nil {
			return err
		}

		log.Info().Str("session", st.SessionID).Int("baselines_removed", removed).Msg("session started")
		cmd.Printf("Session %s started.\n", st.SessionID)
		return nil
	},
}

// requireSession loads the state and fails when no session was started.
// Any other read failure is returned as is.
func requireSession() (*state.State, error) {
	st, err := ws.state.Read()
	if errors.Is(err, state.ErrNoState) {
		return nil, fmt.Errorf("no active session; run 'timeline start': %w", err)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func init() {
	startCmd.Flags().BoolVarP(&startForce, "force", "f", false, "discard the current session")
	rootCmd.AddCommand(startCmd)
}
