package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/dmitrievaaxx/ml-tutor-bot/dialog"
	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var topicsYAML []byte

type topicEntry struct {
	ID       string   `yaml:"id"`
	Keywords []string `yaml:"keywords"`
	Related  []string `yaml:"related"`
}

type topicGraph struct {
	Topics   []topicEntry        `yaml:"topics"`
	Defaults map[string][]string `yaml:"defaults"`
}

// Suggester produces the fixed-size set of follow-up topics shown after each
// answer. Deterministic: same answer and level always yield the same triple.
type Suggester struct {
	graph topicGraph
}

func NewSuggester() (*Suggester, error) {
	var g topicGraph
	if err := yaml.Unmarshal(topicsYAML, &g); err != nil {
		return nil, fmt.Errorf("prompt: parse topic graph: %w", err)
	}
	if len(g.Topics) == 0 {
		return nil, fmt.Errorf("prompt: topic graph is empty")
	}
	return &Suggester{graph: g}, nil
}

// Suggest returns exactly three distinct, non-empty topic strings, or nil.
// It never returns a partial list.
func (s *Suggester) Suggest(answer string, level dialog.Level) []string {
	lower := strings.ToLower(answer)
	for _, topic := range s.graph.Topics {
		for _, kw := range topic.Keywords {
			if kw != "" && strings.Contains(lower, kw) {
				return validTriple(topic.Related)
			}
		}
	}
	return validTriple(s.graph.Defaults[string(level)])
}

func validTriple(items []string) []string {
	if len(items) != 3 {
		return nil
	}
	seen := make(map[string]bool, 3)
	out := make([]string, 0, 3)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			return nil
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
