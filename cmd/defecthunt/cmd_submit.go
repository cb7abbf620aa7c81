package main

import (
	"fmt"
	"io"
	"strings"

	"digital.vasic.defecthunt/pkg/challenge"
	"digital.vasic.defecthunt/pkg/evaluator"

	"github.com/spf13/cobra"
)

// checkView is the printed form of a stateless check.
type checkView struct {
	ChallengeID challenge.ID `json:"challenge_id"`
	Passed      bool         `json:"passed"`
	RewardToken *string      `json:"reward_token"`
}

// submitView is the printed form of a submission outcome.
type submitView struct {
	LearnerID      string       `json:"learner_id"`
	ChallengeID    challenge.ID `json:"challenge_id"`
	Passed         bool         `json:"passed"`
	RewardToken    *string      `json:"reward_token"`
	NewlyCompleted bool         `json:"newly_completed"`
	Badges         []string     `json:"badges"`
}

func tokenOrNil(r challenge.AttemptResult) *string {
	if !r.Passed {
		return nil
	}
	t := r.RewardToken
	return &t
}

// answerText joins the remaining arguments, or reads the answer
// from stdin when there are none.
func answerText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return string(data), nil
}

func newCheckCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <challenge-id> [answer...]",
		Short: "Judge an answer without recording anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			input, err := answerText(cmd, args[1:])
			if err != nil {
				return err
			}
			snap, err := a.openBank()
			if err != nil {
				return err
			}

			// Evaluation is pure, so no store is opened.
			res, err := evaluator.New(snap.Registry, evaluator.WithMetrics(a.metrics)).
				Evaluate(challenge.ID(args[0]), input)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), checkView{
				ChallengeID: res.ChallengeID,
				Passed:      res.Passed,
				RewardToken: tokenOrNil(res),
			})
		},
	}
}

func newSubmitCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <learner-id> <challenge-id> [answer...]",
		Short: "Submit a learner's answer and record any completion and badges",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			input, err := answerText(cmd, args[2:])
			if err != nil {
				return err
			}
			eng, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}

			out, err := eng.Submit(cmd.Context(), args[0], challenge.ID(args[1]), input)
			if err != nil && !out.NewlyCompleted {
				return err
			}

			view := submitView{
				LearnerID:      args[0],
				ChallengeID:    challenge.ID(args[1]),
				Passed:         out.Result.Passed,
				RewardToken:    tokenOrNil(out.Result),
				NewlyCompleted: out.NewlyCompleted,
				Badges:         []string{},
			}
			for _, aw := range out.Awards {
				view.Badges = append(view.Badges, aw.BadgeName)
			}
			if werr := writeJSON(cmd.OutOrStdout(), view); werr != nil {
				return werr
			}
			// The completion is stored; only badge evaluation failed.
			return err
		},
	}
}
