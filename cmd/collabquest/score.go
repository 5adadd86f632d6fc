// cmd/collabquest/score.go
package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"collabquest/internal/compatibility"
	"collabquest/internal/models"
)

var scoreCmd = &cobra.Command{
	Use:   "score <skills-a> <skills-b>",
	Short: "Score two skill sets offline",
	Long: "Each argument is either a JSON value (array of names or object keyed by skill) " +
		"or a comma-separated list, e.g. score 'Python,React' '[\"python\",\"SQL\"]'.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseSkillsArg(args[0])
		if err != nil {
			return err
		}
		b, err := parseSkillsArg(args[1])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(compatibility.Score(a, b))
	},
}

func parseSkillsArg(arg string) (interface{}, error) {
	trimmed := strings.TrimSpace(arg)
	if json.Valid([]byte(trimmed)) {
		return models.SkillSetFromJSON([]byte(trimmed)).Value()
	}

	names := []string{}
	for _, part := range strings.Split(trimmed, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return models.NewSkillList(names...).Value()
}
