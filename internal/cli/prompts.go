package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dyike/CortexHedge/internal/registry"
)

// PromptForAnalysts asks for a team and returns registry keys in order.
func PromptForAnalysts(reg *registry.Registry) ([]string, error) {
	order := reg.AnalystOrder()
	options := make([]string, len(order))
	byName := make(map[string]string, len(order))
	for i, o := range order {
		options[i] = o.DisplayName
		byName[o.DisplayName] = o.Key
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message:  "Select your analysts:",
		Options:  options,
		Help:     "Use space to select, enter to confirm.",
		PageSize: len(options),
		Description: func(value string, index int) string {
			if d, ok := reg.Get(order[index].Key); ok {
				return d.InvestingStyle
			}
			return ""
		},
	}
	err := survey.AskOne(prompt, &selected, survey.WithValidator(func(val interface{}) error {
		answers, ok := val.([]survey.OptionAnswer)
		if !ok {
			return fmt.Errorf("invalid selection type")
		}
		if len(answers) == 0 {
			return fmt.Errorf("you must select at least one analyst")
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	return selectedKeys(selected, byName), nil
}

func selectedKeys(names []string, byName map[string]string) []string {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		if k, ok := byName[n]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}
