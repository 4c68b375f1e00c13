// Command ttasolo-core is the external CLI surface sketched in
// spec.md §6: a thin cobra front end whose status, look, fork, use and
// talk commands become router.TurnInput calls against one local
// session; history, save, inventory, quests, abilities, reputation and
// setting do nothing. It owns no game
// rules itself — everything routes through router.Router.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xldeveloper/theinterneti-tta-solo/config"
	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/effects"
	"github.com/xldeveloper/theinterneti-tta-solo/logging"
	"github.com/xldeveloper/theinterneti-tta-solo/moveexec"
	"github.com/xldeveloper/theinterneti-tta-solo/multiverse"
	"github.com/xldeveloper/theinterneti-tta-solo/repo/memory"
	"github.com/xldeveloper/theinterneti-tta-solo/router"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/session"
)

// Exit codes per spec.md §6.
const (
	exitSuccess      = 0
	exitUserError    = 1
	exitInternalError = 2
)

var (
	envFile    string
	sessionID  string
	universeID string
	actorID    string

	manager *session.Manager
)

func main() {
	root := &cobra.Command{
		Use:   "ttasolo",
		Short: "TTA-Solo — a neuro-symbolic text-adventure rules engine CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			truth := memory.NewTruthStore()
			graph := memory.NewGraphStore()
			abilities := memory.NewAbilityStore()
			quests := memory.NewQuestStore()
			roller := dice.CryptoRoller{}
			tracker := effects.NewTracker()
			pipeline := effects.NewPipeline(tracker, roller)
			moves := moveexec.NewExecutor(nil, graph, graph)
			mv := multiverse.NewService(truth, graph)
			r := router.New(truth, graph, roller, pipeline, moves, mv, abilities, quests)

			manager = session.NewManager(cfg.MaxSessions)
			if _, err := manager.Create(sessionID, universeID, r); err != nil {
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file")
	root.PersistentFlags().StringVar(&sessionID, "session", "local", "session id")
	root.PersistentFlags().StringVar(&universeID, "universe", "prime", "universe id")
	root.PersistentFlags().StringVar(&actorID, "actor", "player", "acting entity id")

	root.AddCommand(
		helpCmd(root),
		statusCmd(),
		lookCmd(),
		historyCmd(),
		saveCmd(),
		forkCmd(),
		clearCmd(),
		inventoryCmd(),
		questsCmd(),
		abilitiesCmd(),
		useCmd(),
		talkCmd(),
		reputationCmd(),
		settingCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	// Repo/internal failures (§7 RepoError) are the only kind that
	// exits 2; everything else — bad input, unclear intent, cobra's own
	// flag-parsing errors — is a user-facing failure.
	if rpgerr.IsRepo(err) {
		return exitInternalError
	}
	return exitUserError
}

func dispatch(intent router.Intent, in router.TurnInput) (*router.TurnResult, error) {
	sess, err := manager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	in.Intent = intent
	if in.ActorID == "" {
		in.ActorID = actorID
	}
	return sess.Dispatch(context.Background(), in)
}

func helpCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "help-commands",
		Short: "/help — list available slash commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range root.Commands() {
				fmt.Printf("/%s — %s\n", c.Name(), c.Short)
			}
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "/status — run a look turn and print its skill result",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := dispatch(router.IntentLook, router.TurnInput{})
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", result.Skill)
			return nil
		},
	}
}

func lookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "look",
		Short: "/look — run a look turn (the result is not printed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := dispatch(router.IntentLook, router.TurnInput{})
			return err
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "/history — reserved; does nothing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
}

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "/save — reserved; does nothing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
}

func forkCmd() *cobra.Command {
	var child, branch, reason string
	cmd := &cobra.Command{
		Use:   "fork",
		Short: "/fork — branch the current universe",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := dispatch(router.IntentFork, router.TurnInput{ForkChildID: child, ForkBranch: branch, ForkReason: reason})
			return err
		},
	}
	cmd.Flags().StringVar(&child, "child", "", "id for the new universe (generated if empty)")
	cmd.Flags().StringVar(&branch, "branch", "", "branch name for the new universe (defaults to its id)")
	cmd.Flags().StringVar(&reason, "reason", "", "why this universe is being forked")
	return cmd
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "/clear — clear the terminal screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print("\033[H\033[2J")
			return nil
		},
	}
}

func inventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "/inventory — reserved; does nothing",
		RunE:  func(cmd *cobra.Command, args []string) error { return nil },
	}
}

func questsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quests",
		Short: "/quests — reserved; does nothing",
		RunE:  func(cmd *cobra.Command, args []string) error { return nil },
	}
}

func abilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abilities",
		Short: "/abilities — reserved; does nothing",
		RunE:  func(cmd *cobra.Command, args []string) error { return nil },
	}
}

func useCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "use <ability-id>",
		Short: "/use — use an ability against a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := dispatch(router.IntentUseAbility, router.TurnInput{AbilityID: args[0], TargetID: target})
			return err
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "target entity id")
	return cmd
}

func talkCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "talk",
		Short: "/talk — speak to an NPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := dispatch(router.IntentTalk, router.TurnInput{TargetID: target})
			return err
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "target entity id")
	return cmd
}

func reputationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reputation",
		Short: "/reputation — reserved; does nothing",
		RunE:  func(cmd *cobra.Command, args []string) error { return nil },
	}
}

func settingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setting",
		Short: "/setting — reserved; does nothing",
		RunE:  func(cmd *cobra.Command, args []string) error { return nil },
	}
}
